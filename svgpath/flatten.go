package svgpath

import (
	"github.com/mastercactapus/penplot/coord"
)

// DefaultSteps is the number of samples taken along each cubic.
const DefaultSteps = 10

// Options configure flattening of path data.
type Options struct {
	// Steps is the number of samples per cubic Bezier; values below 1 use 1.
	Steps int

	// SplitSubpaths starts a new polyline at every move after the first point
	// instead of connecting subpaths with a drawn line.
	SplitSubpaths bool
}

// DefaultOptions returns the default flattening options.
func DefaultOptions() Options {
	return Options{Steps: DefaultSteps}
}

// Cubic will evaluate the cubic Bezier p0,p1,p2,p3 at t.
func Cubic(p0, p1, p2, p3 coord.Point, t float64) coord.Point {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return coord.Point{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}

// FlattenCubic samples the cubic at steps evenly spaced values of t in (0,1].
//
// The start point p0 is not included.
func FlattenCubic(p0, p1, p2, p3 coord.Point, steps int) []coord.Point {
	if steps < 1 {
		steps = 1
	}
	res := make([]coord.Point, 0, steps)
	for i := 1; i <= steps; i++ {
		if i == steps {
			// exact end point so the next command starts where this ends
			res = append(res, p3)
			continue
		}
		res = append(res, Cubic(p0, p1, p2, p3, float64(i)/float64(steps)))
	}
	return res
}

type flattener struct {
	opt Options
	cur coord.Point

	line coord.Polyline
	doc  coord.Document
}

func (f *flattener) emit(p coord.Point) {
	f.line = append(f.line, p)
	f.cur = p
}

func (f *flattener) abs(c Command, p coord.Point) coord.Point {
	if c.Relative {
		return f.cur.Add(p)
	}
	return p
}

func (f *flattener) run(cmds []Command) coord.Document {
	for _, c := range cmds {
		switch c.Kind {
		case MoveTo:
			p := f.abs(c, c.Points[0])
			if f.opt.SplitSubpaths && len(f.line) > 0 {
				f.doc = append(f.doc, f.line)
				f.line = nil
			}
			f.emit(p)
		case LineTo:
			f.emit(f.abs(c, c.Points[0]))
		case CubicTo:
			p0 := f.cur
			p1 := f.abs(c, c.Points[0])
			p2 := f.abs(c, c.Points[1])
			p3 := f.abs(c, c.Points[2])
			for _, p := range FlattenCubic(p0, p1, p2, p3, f.opt.Steps) {
				f.line = f.line.Append(p, coord.Epsilon)
			}
			f.cur = p3
		case ClosePath:
			if len(f.line) > 0 {
				f.emit(f.line[0])
			}
		}
	}
	if len(f.line) > 0 {
		f.doc = append(f.doc, f.line)
	}
	return f.doc
}

// Flatten will resolve commands into a single polyline.
//
// Cubic Beziers are sampled steps times, dropping samples within
// coord.Epsilon of the previous point.
func Flatten(cmds []Command, steps int) coord.Polyline {
	f := &flattener{opt: Options{Steps: steps}}
	doc := f.run(cmds)
	if len(doc) == 0 {
		return nil
	}
	return doc[0]
}

// FlattenDocument is like Flatten, but honors opt.SplitSubpaths.
func FlattenDocument(cmds []Command, opt Options) coord.Document {
	f := &flattener{opt: opt}
	return f.run(cmds)
}

// ParsePolyline will parse and flatten path data.
func ParsePolyline(d string, steps int) coord.Polyline {
	return Flatten(Parse(d), steps)
}
