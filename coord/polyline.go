package coord

import "math"

// A Polyline is an ordered set of points in drawing order.
type Polyline []Point

// A Document is a set of polylines in document order.
type Document []Polyline

// Append adds p to the polyline, unless it is within eps of the last point.
func (l Polyline) Append(p Point, eps float64) Polyline {
	if len(l) > 0 && l[len(l)-1].Near(p, eps) {
		return l
	}
	return append(l, p)
}

// Compact returns the document without empty polylines.
func (d Document) Compact() Document {
	res := make(Document, 0, len(d))
	for _, l := range d {
		if len(l) == 0 {
			continue
		}
		res = append(res, l)
	}
	return res
}

// Points returns the total number of points in the document.
func (d Document) Points() int {
	var n int
	for _, l := range d {
		n += len(l)
	}
	return n
}

// Bounds is an axis-aligned bounding box.
type Bounds struct{ Min, Max Point }

func (b Bounds) Width() float64  { return b.Max.X - b.Min.X }
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Bounds returns the bounding box of every point in the document.
//
// ok is false if the document has no points.
func (d Document) Bounds() (b Bounds, ok bool) {
	b.Min = Point{X: math.Inf(1), Y: math.Inf(1)}
	b.Max = Point{X: math.Inf(-1), Y: math.Inf(-1)}
	for _, l := range d {
		for _, p := range l {
			b.Min.X = math.Min(b.Min.X, p.X)
			b.Min.Y = math.Min(b.Min.Y, p.Y)
			b.Max.X = math.Max(b.Max.X, p.X)
			b.Max.Y = math.Max(b.Max.Y, p.Y)
			ok = true
		}
	}
	if !ok {
		return Bounds{}, false
	}
	return b, true
}
