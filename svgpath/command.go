package svgpath

import (
	"strconv"

	"github.com/mastercactapus/penplot/coord"
)

// Kind identifies a path command.
type Kind byte

const (
	MoveTo Kind = iota
	LineTo
	CubicTo
	ClosePath
)

func (k Kind) String() string {
	switch k {
	case MoveTo:
		return "MoveTo"
	case LineTo:
		return "LineTo"
	case CubicTo:
		return "CubicTo"
	case ClosePath:
		return "ClosePath"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Command is a single parsed path command.
//
// MoveTo and LineTo carry one point, CubicTo carries the two control
// points followed by the end point, and ClosePath carries none. Points
// are stored as written; Relative points are offsets from the current point.
type Command struct {
	Kind     Kind
	Relative bool
	Points   []coord.Point
}

// CommandError describes a path command that was skipped.
type CommandError struct {
	Token  string
	Reason string
}

func (e *CommandError) Error() string {
	return "skip path command " + strconv.Quote(e.Token) + ": " + e.Reason
}
