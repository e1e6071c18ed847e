package gcode

import "io"

type Reader interface {
	Read() (Block, error)
}

type BlocksReader struct {
	Blocks []Block
	n      int
}

func (b *BlocksReader) Read() (Block, error) {
	if b.n == len(b.Blocks) {
		return nil, io.EOF
	}

	b.n++
	return b.Blocks[b.n-1], nil
}

// Lines will read every block from r as a formatted line.
func Lines(r Reader) ([]string, error) {
	var res []string
	for {
		b, err := r.Read()
		if err == io.EOF {
			return res, nil
		}
		if err != nil {
			return nil, err
		}
		res = append(res, b.String())
	}
}
