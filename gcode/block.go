package gcode

import (
	"errors"
	"strings"
)

// Block is a single line of words.
type Block []Word

func (b Block) Arg(w byte) (bool, float64) {
	for _, g := range b {
		if g.W == w {
			return true, g.Arg
		}
	}
	return false, 0
}

// Has reports if the block contains the exact word.
func (b Block) Has(w Word) bool {
	for _, g := range b {
		if g == w {
			return true
		}
	}
	return false
}

func (b Block) Args() Block {
	res := make(Block, 0, len(b))
	for _, g := range b {
		if g.ModalGroup() == ModalGroupNone {
			res = append(res, g)
		}
	}
	return res
}

// String formats the block as a space separated line, without a newline.
func (b Block) String() string {
	s := make([]string, len(b))
	for i, w := range b {
		s[i] = w.String()
	}
	return strings.Join(s, " ")
}

func (b Block) Validate() error {
	var checkWord [256]bool
	var checkModal [256]bool

	var m ModalGroup
	for _, g := range b {
		if !g.IsValid() {
			return errors.New("invalid word in block")
		}
		if g.W != 'G' && g.W != 'M' && checkWord[g.W] {
			return errors.New("word was repeated in a block")
		}
		checkWord[g.W] = true
		m = g.ModalGroup()
		if m != ModalGroupNone && checkModal[m] {
			return errors.New("multiple words from same modal group")
		}
		checkModal[m] = true
	}

	return nil
}
