package gcode

import (
	"testing"

	"github.com/mastercactapus/penplot/coord"
	"github.com/stretchr/testify/assert"
)

var noSettle = CompileOptions{MinDisplacement: 0.01}

func TestCompile_Empty(t *testing.T) {
	home := Motion{Kind: Move, Rapid: true}

	assert.Equal(t, Program{{Kind: PenUp}, home}, noSettle.Compile(nil))
	assert.Equal(t, Program{{Kind: PenUp}, home}, noSettle.Compile(coord.Document{{}, {}}))

	assert.Equal(t, Program{{Kind: PenUp}, home}, DefaultCompileOptions.Compile(nil))
	assert.Equal(t, Program{{Kind: PenUp}, home}, DefaultCompileOptions.Compile(coord.Document{{}}))
}

func TestCompile_BelowThreshold(t *testing.T) {
	doc := coord.Document{{
		{X: 5, Y: 5},
		{X: 5.001, Y: 5},
		{X: 5.005, Y: 5.005},
		{X: 5, Y: 5.009},
	}}

	assert.Equal(t, Program{
		{Kind: PenUp},
		{Kind: Move, X: 5, Y: 5, Rapid: true},
		{Kind: PenDown},
		{Kind: PenUp},
		{Kind: Move, Rapid: true},
	}, noSettle.Compile(doc))
}

func TestCompile_Polylines(t *testing.T) {
	doc := coord.Document{
		{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2.005, Y: 1}, {X: 3, Y: 1}},
		{{X: 4, Y: 4}, {X: 5, Y: 5}},
	}

	assert.Equal(t, Program{
		{Kind: PenUp},
		{Kind: Move, X: 1, Y: 1, Rapid: true},
		{Kind: PenDown},
		{Kind: Move, X: 2, Y: 1},
		{Kind: Move, X: 3, Y: 1},
		{Kind: PenUp},
		{Kind: Move, X: 4, Y: 4, Rapid: true},
		{Kind: PenDown},
		{Kind: Move, X: 5, Y: 5},
		{Kind: PenUp},
		{Kind: Move, Rapid: true},
	}, noSettle.Compile(doc))
}

func TestCompile_Settle(t *testing.T) {
	prog := DefaultCompileOptions.Compile(coord.Document{{{X: 1, Y: 1}, {X: 2, Y: 2}}})

	assert.Equal(t, Program{
		{Kind: PenUp},
		{Kind: Move, X: 1, Y: 1, Rapid: true},
		{Kind: PenDown},
		{Kind: Dwell, MS: 100},
		{Kind: Move, X: 2, Y: 2},
		{Kind: PenUp},
		{Kind: Dwell, MS: 100},
		{Kind: Move, Rapid: true},
	}, prog)
}

func TestCompile_PenIdempotent(t *testing.T) {
	doc := coord.Document{
		{{X: 1, Y: 1}},
		{{X: 2, Y: 2}, {X: 3, Y: 3}},
		{},
		{{X: 9, Y: 9}, {X: 1, Y: 2}, {X: 1, Y: 2}},
	}
	prog := DefaultCompileOptions.Compile(doc)

	var last MotionKind = Dwell
	for i, m := range prog {
		if m.Kind != PenUp && m.Kind != PenDown {
			continue
		}
		if i > 0 {
			assert.NotEqual(t, last, m.Kind, "repeated pen command at %d", i)
		}
		last = m.Kind
	}
}
