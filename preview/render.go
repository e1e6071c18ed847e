package preview

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"github.com/mastercactapus/penplot/coord"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// Options control rendering.
type Options struct {
	// Size is the width and height of the image in pixels.
	Size int

	// Margin is the blank border in pixels. It is ignored when it would
	// leave no room to draw.
	Margin int

	// StrokeWidth is the line width in pixels.
	StrokeWidth float64
}

var DefaultOptions = Options{Size: 800, Margin: 20, StrokeWidth: 2}

// Rasterize draws segs in black on a white square image, scaled to fit.
// The Y axis points up, as on the plotter.
func Rasterize(segs []Segment, opt Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, opt.Size, opt.Size))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)

	b, ok := Bounds(segs)
	if !ok {
		return img
	}

	margin := opt.Margin
	if margin < 0 || 2*margin >= opt.Size {
		margin = 0
	}

	avail := float64(opt.Size - 2*margin)
	scale := 1.0
	if ext := math.Max(b.Width(), b.Height()); ext > 0 {
		scale = avail / ext
	}
	px := func(p coord.Point) fixed.Point26_6 {
		return rasterx.ToFixedP(
			float64(margin)+(p.X-b.Min.X)*scale,
			float64(opt.Size-margin)-(p.Y-b.Min.Y)*scale,
		)
	}

	scanner := rasterx.NewScannerGV(opt.Size, opt.Size, img, img.Bounds())
	scanner.SetClip(img.Bounds())
	d := rasterx.NewDasher(opt.Size, opt.Size, scanner)
	d.SetStroke(fixed.Int26_6(opt.StrokeWidth*64), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.ArcClip, nil, 0)
	d.SetColor(color.Black)

	for _, s := range segs {
		if len(s.Points) < 2 {
			continue
		}
		d.Start(px(s.Points[0]))
		for _, p := range s.Points[1:] {
			d.Line(px(p))
		}
		d.Stop(false)
	}
	d.Draw()

	return img
}

// Render writes a PNG image of segs to w.
func Render(w io.Writer, segs []Segment, opt Options) error {
	return png.Encode(w, Rasterize(segs, opt))
}
