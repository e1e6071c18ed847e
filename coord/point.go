package coord

import (
	"math"
)

// Epsilon is the distance below which two points are treated as the same.
const Epsilon = 1e-4

type Point struct{ X, Y float64 }

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y
}

// Near reports if b is within eps of p.
func (p Point) Near(b Point, eps float64) bool {
	return p.Distance(b) < eps
}

func (p Point) Mul(val float64) Point {
	p.X *= val
	p.Y *= val
	return p
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	return p
}

// Distance will return the 2D distance between p and b.
func (p Point) Distance(b Point) float64 {
	return math.Hypot(b.X-p.X, b.Y-p.Y)
}
