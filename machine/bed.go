package machine

import (
	"math"

	"github.com/mastercactapus/penplot/coord"
	"github.com/sirupsen/logrus"
)

// Bed describes the drawable area of a plotter, in millimeters.
//
// A Bed is a value; copies are independent.
type Bed struct {
	MaxX, MaxY float64

	// StepsPerMMX and StepsPerMMY convert fitted millimeters into machine
	// units. Zero is treated as 1.
	StepsPerMMX, StepsPerMMY float64

	FlipX, FlipY bool
}

// DefaultBed is a 16 x 14.4 drawing area with output in bed units.
var DefaultBed = Bed{MaxX: 16, MaxY: 14.4, StepsPerMMX: 1, StepsPerMMY: 1}

func unit(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// Scale returns the uniform scale that fits b into the bed.
//
// Degenerate bounds (zero width or height) use a scale of 1.
func (bed Bed) Scale(b coord.Bounds) float64 {
	w, h := b.Width(), b.Height()
	if w == 0 || h == 0 {
		logrus.WithFields(logrus.Fields{"width": w, "height": h}).Warn("machine: degenerate geometry, using unit scale")
		return 1
	}
	return math.Min(bed.MaxX/w, bed.MaxY/h)
}

// Transform returns the function mapping document points onto the bed
// for a document with the given bounds.
func (bed Bed) Transform(b coord.Bounds) func(coord.Point) coord.Point {
	scale := bed.Scale(b)
	offset := coord.Point{
		X: (bed.MaxX - b.Width()*scale) / 2,
		Y: (bed.MaxY - b.Height()*scale) / 2,
	}
	sx, sy := unit(bed.StepsPerMMX), unit(bed.StepsPerMMY)

	return func(p coord.Point) coord.Point {
		p = p.Sub(b.Min).Mul(scale).Add(offset)
		if bed.FlipX {
			p.X = bed.MaxX - p.X
		}
		if bed.FlipY {
			p.Y = bed.MaxY - p.Y
		}
		p.X *= sx
		p.Y *= sy
		return p
	}
}

// Fit will scale and center the document on the bed.
//
// A single scale and offset is applied to every polyline so relative
// layout is preserved. The input is not modified.
func (bed Bed) Fit(doc coord.Document) coord.Document {
	b, ok := doc.Bounds()
	if !ok {
		return doc
	}
	tf := bed.Transform(b)

	res := make(coord.Document, len(doc))
	for i, l := range doc {
		res[i] = make(coord.Polyline, len(l))
		for j, p := range l {
			res[i][j] = tf(p)
		}
	}
	return res
}
