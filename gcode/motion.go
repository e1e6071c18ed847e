package gcode

import (
	"io"
	"strconv"
)

// MotionKind identifies a motion command.
type MotionKind byte

const (
	PenUp MotionKind = iota
	PenDown
	Move
	Dwell
)

// Motion is a single machine-independent plotter command.
type Motion struct {
	Kind MotionKind

	// X and Y are the Move target.
	X, Y float64

	// Rapid marks a pen-up positioning Move.
	Rapid bool

	// MS is the Dwell time in milliseconds.
	MS int
}

func (m Motion) String() string {
	switch m.Kind {
	case PenUp:
		return "PenUp"
	case PenDown:
		return "PenDown"
	case Move:
		s := "MoveTo{x=" + formatFloat(m.X, 3) + " y=" + formatFloat(m.Y, 3)
		if m.Rapid {
			s += " rapid"
		}
		return s + "}"
	case Dwell:
		return "Dwell{ms=" + strconv.Itoa(m.MS) + "}"
	}
	return "Motion(" + strconv.Itoa(int(m.Kind)) + ")"
}

// Format controls how motions are written as commands.
type Format struct {
	PenUpAngle   float64
	PenDownAngle float64

	// FeedRate is added to every drawing move, if non-zero.
	FeedRate float64
}

// DefaultFormat suits servo pen lifters driven by M300.
var DefaultFormat = Format{PenUpAngle: 50, PenDownAngle: 30, FeedRate: 3500}

// Block returns the command for m.
func (f Format) Block(m Motion) Block {
	switch m.Kind {
	case PenUp:
		return Block{{W: 'M', Arg: 300}, {W: 'S', Arg: f.PenUpAngle}}
	case PenDown:
		return Block{{W: 'M', Arg: 300}, {W: 'S', Arg: f.PenDownAngle}}
	case Dwell:
		return Block{{W: 'G', Arg: 4}, {W: 'P', Arg: float64(m.MS)}}
	case Move:
		if m.Rapid {
			return Block{{W: 'G', Arg: 0}, {W: 'X', Arg: m.X}, {W: 'Y', Arg: m.Y}}
		}
		b := Block{{W: 'G', Arg: 1}, {W: 'X', Arg: m.X}, {W: 'Y', Arg: m.Y}}
		if f.FeedRate > 0 {
			b = append(b, Word{W: 'F', Arg: f.FeedRate})
		}
		return b
	}
	return nil
}

// Program is an ordered sequence of motions.
type Program []Motion

// Blocks formats every motion of the program.
func (p Program) Blocks(f Format) []Block {
	res := make([]Block, len(p))
	for i, m := range p {
		res[i] = f.Block(m)
	}
	return res
}

// Lines formats every motion as a line of text, without newlines.
func (p Program) Lines(f Format) []string {
	lines, _ := Lines(&BlocksReader{Blocks: p.Blocks(f)})
	return lines
}

// Write will write the program to w, one command per line.
func (p Program) Write(w io.Writer, f Format) (int64, error) {
	return io.Copy(w, NewBuffer(&BlocksReader{Blocks: p.Blocks(f)}))
}
