package gcode

import (
	"errors"

	"github.com/mastercactapus/penplot/coord"
)

// Pen is the tracked state of the pen actuator.
type Pen byte

const (
	PenUnknown Pen = iota
	PenRaised
	PenLowered
)

// Step describes the effect of one block.
type Step struct {
	From, To coord.Point

	// Pen is the pen state while moving from From to To.
	Pen Pen

	// Arc is set for G2/G3 moves, with Center in absolute coordinates.
	Arc       bool
	Clockwise bool
	Center    coord.Point
}

// Moved reports if the step changed position.
func (s Step) Moved() bool { return !s.From.Equal(s.To) }

// VM will track state and interpret plotter commands.
type VM struct {
	pos coord.Point
	pen Pen

	modal [256]float64

	format Format
}

// NewVM constructs a new VM that recognizes the pen angles in f.
func NewVM(f Format) *VM {
	vm := &VM{format: f}

	vm.modal[ModalGroupMotion] = 0
	vm.modal[ModalGroupDistanceMode] = 90
	vm.modal[ModalGroupUnits] = 21

	return vm
}

func (vm VM) Inches() bool         { return vm.modal[ModalGroupUnits] == 20 }
func (vm VM) RelativeMotion() bool { return vm.modal[ModalGroupDistanceMode] == 91 }

func (vm VM) Pos() coord.Point { return vm.pos }
func (vm VM) Pen() Pen         { return vm.pen }

func isSupported(g Word) bool {
	if g.IsAxis() {
		return true
	}

	switch g.W {
	case 'G':
		switch g.Arg {
		case 0, 1, 2, 3, 4, 20, 21, 28, 90, 91:
			return true
		}
	case 'M':
		switch g.Arg {
		case 0, 1, 2, 30, 300:
			return true
		}
	case 'F', 'S', 'P', 'I', 'J':
		return true
	}

	return false
}

func applyBlock(p coord.Point, b Block, mul float64) coord.Point {
	for _, g := range b {
		switch g.W {
		case 'X':
			p.X = g.Arg * mul
		case 'Y':
			p.Y = g.Arg * mul
		}
	}

	return p
}

func (vm *VM) Run(b Block) (Step, error) {
	step := Step{From: vm.pos, To: vm.pos, Pen: vm.pen}

	err := b.Validate()
	if err != nil {
		return step, err
	}
	for _, g := range b {
		if !isSupported(g) {
			return step, errors.New("unsupported code: " + g.String())
		}
		mg := g.ModalGroup()
		if mg != ModalGroupNone && mg != ModalGroupNonModal {
			vm.modal[mg] = g.Arg
		}
	}

	if b.Has(Word{W: 'M', Arg: 300}) {
		if ok, s := b.Arg('S'); ok {
			switch s {
			case vm.format.PenDownAngle:
				vm.pen = PenLowered
			case vm.format.PenUpAngle:
				vm.pen = PenRaised
			}
		}
		return step, nil
	}
	if b.Has(Word{W: 'G', Arg: 4}) {
		return step, nil
	}
	if b.Has(Word{W: 'G', Arg: 28}) {
		vm.pos = coord.Point{}
		step.To = vm.pos
		return step, nil
	}

	var hasAxis bool
	for _, g := range b {
		hasAxis = hasAxis || g.IsAxis()
	}
	if !hasAxis {
		return step, nil
	}

	mul := 1.0
	if vm.Inches() {
		mul = 25.4
	}
	if vm.RelativeMotion() {
		vm.pos = vm.pos.Add(applyBlock(coord.Point{}, b, mul))
	} else {
		vm.pos = applyBlock(vm.pos, b, mul)
	}
	step.To = vm.pos

	switch vm.modal[ModalGroupMotion] {
	case 2, 3:
		_, i := b.Arg('I')
		_, j := b.Arg('J')
		step.Arc = true
		step.Clockwise = vm.modal[ModalGroupMotion] == 2
		step.Center = step.From.Add(coord.Point{X: i * mul, Y: j * mul})
	}

	return step, nil
}
