package gcode

import (
	"io"
	"strings"
)

// Parse will parse every block in data.
func Parse(data string) ([]Block, error) {
	return ParseReader(strings.NewReader(data))
}

// ParseReader is like Parse, but reads from r.
func ParseReader(r io.Reader) ([]Block, error) {
	p := NewParser(r)
	var b []Block
	for {
		bl, err := p.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		b = append(b, bl)
	}
	return b, nil
}

func MustParse(data string) []Block {
	b, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return b
}
