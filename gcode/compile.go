package gcode

import (
	"github.com/mastercactapus/penplot/coord"
)

// CompileOptions configure motion compilation.
type CompileOptions struct {
	// MinDisplacement is the smallest distance from the last emitted point
	// for a drawing move to be kept.
	MinDisplacement float64

	// SettleMS is the dwell after every pen state change. Zero disables it.
	SettleMS int
}

// DefaultCompileOptions gives the servo 100ms to settle.
var DefaultCompileOptions = CompileOptions{MinDisplacement: 0.01, SettleMS: 100}

type compiler struct {
	opt  CompileOptions
	pen  Pen
	prog Program
}

func (c *compiler) setPen(p Pen) {
	if c.pen == p {
		return
	}
	c.pen = p
	if p == PenLowered {
		c.prog = append(c.prog, Motion{Kind: PenDown})
	} else {
		c.prog = append(c.prog, Motion{Kind: PenUp})
	}
	if c.opt.SettleMS > 0 {
		c.prog = append(c.prog, Motion{Kind: Dwell, MS: c.opt.SettleMS})
	}
}

func (c *compiler) move(p coord.Point, rapid bool) {
	c.prog = append(c.prog, Motion{Kind: Move, X: p.X, Y: p.Y, Rapid: rapid})
}

// Compile will generate the motion program that draws every polyline of
// doc in order, then returns to the origin.
//
// The pen state is unknown when a program starts, so it always begins by
// raising the pen. That first raise has no settle dwell; after it pen
// changes are only emitted when needed.
func (opt CompileOptions) Compile(doc coord.Document) Program {
	c := &compiler{opt: opt, pen: PenRaised}
	c.prog = append(c.prog, Motion{Kind: PenUp})

	for _, l := range doc {
		if len(l) == 0 {
			continue
		}
		c.setPen(PenRaised)
		c.move(l[0], true)
		c.setPen(PenLowered)

		last := l[0]
		for _, p := range l[1:] {
			if p.Distance(last) <= opt.MinDisplacement {
				continue
			}
			c.move(p, false)
			last = p
		}
		c.setPen(PenRaised)
	}

	c.setPen(PenRaised)
	c.move(coord.Point{}, true)

	return c.prog
}
