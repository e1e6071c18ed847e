package gcode

import (
	"testing"

	"github.com/mastercactapus/penplot/coord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runAll(t *testing.T, vm *VM, data string) []Step {
	t.Helper()
	var steps []Step
	for _, b := range MustParse(data) {
		s, err := vm.Run(b)
		require.NoError(t, err, b.String())
		steps = append(steps, s)
	}
	return steps
}

func TestVM_Pen(t *testing.T) {
	vm := NewVM(DefaultFormat)
	assert.Equal(t, PenUnknown, vm.Pen())

	steps := runAll(t, vm, `
		M300 S50
		G0 X1 Y1
		M300 S30
		G4 P100
		G1 X2 Y1 F3500
		M300 S45
		G1 X3 Y1
	`)
	assert.Equal(t, PenRaised, steps[1].Pen)
	assert.True(t, steps[1].Moved())
	assert.False(t, steps[3].Moved())
	assert.Equal(t, PenLowered, steps[4].Pen)
	assert.Equal(t, coord.Point{X: 1, Y: 1}, steps[4].From)
	assert.Equal(t, coord.Point{X: 2, Y: 1}, steps[4].To)

	// unknown angles leave the pen alone
	assert.Equal(t, PenLowered, steps[6].Pen)
}

func TestVM_Modes(t *testing.T) {
	vm := NewVM(DefaultFormat)
	runAll(t, vm, `
		G91
		G0 X1 Y2
		G0 X1
		G90 G20
		G0 X1
	`)
	assert.Equal(t, coord.Point{X: 25.4, Y: 2}, vm.Pos())

	runAll(t, vm, "G28")
	assert.Equal(t, coord.Point{}, vm.Pos())
}

func TestVM_Arc(t *testing.T) {
	vm := NewVM(DefaultFormat)
	steps := runAll(t, vm, `
		G0 X10 Y0
		G2 X0 Y10 I-10 J0
		G0 X5
	`)
	assert.True(t, steps[1].Arc)
	assert.True(t, steps[1].Clockwise)
	assert.Equal(t, coord.Point{}, steps[1].Center)
	assert.False(t, steps[2].Arc)
}

func TestVM_Unsupported(t *testing.T) {
	vm := NewVM(DefaultFormat)
	_, err := vm.Run(Block{{W: 'G', Arg: 38.2}})
	assert.Error(t, err)

	_, err = vm.Run(Block{{W: 'G', Arg: 0}, {W: 'G', Arg: 1}})
	assert.Error(t, err)
}
