package preview

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/mastercactapus/penplot/coord"
	"github.com/mastercactapus/penplot/gcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = []string{
	"M300 S50",
	"G0 X1 Y1",
	"M300 S30",
	"G1 X5 Y1 F3500",
	"; arc next",
	"G3 X5 Y5 I0 J2",
	"FOO",
	"M300 S50",
	"G1 X0 Y0",
}

func TestSegments(t *testing.T) {
	segs := Segments(sample, gcode.DefaultFormat)
	require.Len(t, segs, 2)

	assert.Equal(t, Segment{Line: 3, Points: []coord.Point{{X: 1, Y: 1}, {X: 5, Y: 1}}}, segs[0])

	arc := segs[1]
	assert.Equal(t, 5, arc.Line)
	assert.True(t, arc.Arc)
	require.Len(t, arc.Points, ArcSteps+1)
	assert.InDelta(t, 7, arc.Points[ArcSteps/2].X, 1e-9)
	assert.InDelta(t, 3, arc.Points[ArcSteps/2].Y, 1e-9)
	assert.InDelta(t, 5, arc.Points[ArcSteps].X, 1e-9)
	assert.InDelta(t, 5, arc.Points[ArcSteps].Y, 1e-9)
}

func TestArcPoints_Clockwise(t *testing.T) {
	pts := ArcPoints(coord.Point{X: 1}, coord.Point{Y: 1}, coord.Point{}, true, 2)
	require.Len(t, pts, 3)

	// the long way round, through the third quadrant
	assert.InDelta(t, -1/1.4142135623730951, pts[1].X, 1e-9)
	assert.InDelta(t, -1/1.4142135623730951, pts[1].Y, 1e-9)
}

func TestSegments_CompiledProgram(t *testing.T) {
	prog := gcode.CompileOptions{}.Compile(coord.Document{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}}})
	segs := Segments(prog.Lines(gcode.DefaultFormat), gcode.DefaultFormat)

	require.Len(t, segs, 2)
	b, ok := Bounds(segs)
	assert.True(t, ok)
	assert.Equal(t, coord.Bounds{Max: coord.Point{X: 2, Y: 2}}, b)
}

var square = []Segment{
	{Points: []coord.Point{{X: 0, Y: 0}, {X: 10, Y: 0}}},
	{Points: []coord.Point{{X: 10, Y: 0}, {X: 10, Y: 10}}},
	{Points: []coord.Point{{X: 10, Y: 10}, {X: 0, Y: 10}}},
	{Points: []coord.Point{{X: 0, Y: 10}, {X: 0, Y: 0}}},
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, square, Options{Size: 100, Margin: 10, StrokeWidth: 2}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())

	dark := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r < 0x8000
	}
	// bottom edge of the square, y up
	assert.True(t, dark(50, 90))
	assert.True(t, dark(10, 50))
	assert.False(t, dark(50, 50))
	assert.False(t, dark(2, 2))
}

func TestRasterize_MarginTooLarge(t *testing.T) {
	img := Rasterize(square, Options{Size: 10, Margin: 20, StrokeWidth: 2})

	dark := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r < 0x8000
	}
	// drawn edge to edge instead of mirrored off the image
	assert.True(t, dark(5, 9))
	assert.True(t, dark(0, 5))
	assert.True(t, dark(9, 5))
	assert.False(t, dark(5, 5))
}

func TestRasterize_Empty(t *testing.T) {
	img := Rasterize(nil, Options{Size: 10})
	r, g, b, _ := img.At(5, 5).RGBA()
	assert.Equal(t, []uint32{0xffff, 0xffff, 0xffff}, []uint32{r, g, b})
}

func TestMarkPenUp(t *testing.T) {
	lines := []string{"G0 X1 Y1", "G1 X2 Y2", "G1 X3 Y3"}
	res := MarkPenUp(lines, map[int]bool{1: true, 7: true}, gcode.DefaultFormat)

	assert.Equal(t, []string{
		"G0 X1 Y1",
		"M300 S50",
		"G1 X2 Y2",
		"M300 S30",
		"G1 X3 Y3",
	}, res)

	segs := Segments(append([]string{"M300 S30"}, res...), gcode.DefaultFormat)
	require.Len(t, segs, 2)
	assert.Equal(t, 1, segs[0].Line)
	assert.Equal(t, 5, segs[1].Line)
}
