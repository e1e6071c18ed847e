package stream

import (
	"bytes"
	"io"
	"strings"
)

// Conn reads and writes newline terminated lines.
//
// Reads never block waiting for a full line: ReadLine returns an empty
// string when no complete line is available yet.
type Conn struct {
	rw io.ReadWriter

	buf  []byte
	rbuf [256]byte
}

func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// WriteLine writes line followed by a newline.
func (c *Conn) WriteLine(line string) error {
	_, err := io.WriteString(c.rw, line+"\n")
	return err
}

func (c *Conn) next() (string, bool) {
	i := bytes.IndexByte(c.buf, '\n')
	if i < 0 {
		return "", false
	}
	line := string(c.buf[:i])
	c.buf = c.buf[i+1:]
	return strings.TrimSpace(line), true
}

// ReadLine returns the next line with surrounding whitespace removed.
//
// An empty result with a nil error means nothing was available: a read
// timeout, io.EOF or a blank line.
func (c *Conn) ReadLine() (string, error) {
	if line, ok := c.next(); ok {
		return line, nil
	}

	n, err := c.rw.Read(c.rbuf[:])
	c.buf = append(c.buf, c.rbuf[:n]...)
	if err != nil && err != io.EOF {
		return "", err
	}

	line, _ := c.next()
	return line, nil
}
