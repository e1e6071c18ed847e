package gcode

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuffer_Read(t *testing.T) {
	blocks := []Block{
		{{W: 'G', Arg: 1}, {W: 'X', Arg: 2.5}},

		{{W: 'M', Arg: 300}, {W: 'S', Arg: 50}},
	}

	gr := &BlocksReader{Blocks: blocks}

	b := NewBuffer(gr)

	buf := make([]byte, 10)
	n, err := b.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, []byte("G1 X2.5\nM3"), buf[:n])

	n, err = b.Read(buf)
	assert.NoError(t, err)
	assert.Equal(t, []byte("00 S50\n"), buf[:n])

	n, err = b.Read(buf)
	assert.Error(t, err)
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, 0, n)
}
