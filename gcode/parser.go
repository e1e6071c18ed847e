package gcode

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Parser reads blocks from line-oriented command text.
type Parser struct {
	br   *bufio.Reader
	line int
}

func NewParser(r io.Reader) *Parser {
	if br, ok := r.(*bufio.Reader); ok {
		return &Parser{br: br}
	}

	return &Parser{br: bufio.NewReader(r)}
}

var (
	rx        = regexp.MustCompile(`^([A-Z][-+]?[0-9.]+)+$`)
	rxSplit   = regexp.MustCompile(`[A-Z][-+]?[0-9.]+`)
	rxComment = regexp.MustCompile(`\([^)]*\)`)
)

// Line returns the 1-based line number of the last line read.
func (p *Parser) Line() int { return p.line }

func (p *Parser) Read() (ln Block, err error) {
	for {
		s, err := p.br.ReadString('\n')
		if err == io.EOF && s != "" {
			err = nil
		}
		if err != nil {
			return nil, err
		}
		p.line++

		s = strings.SplitN(s, ";", 2)[0]
		s = rxComment.ReplaceAllString(s, "")
		s = strings.Replace(s, " ", "", -1)
		s = strings.TrimSpace(s)
		s = strings.ToUpper(s)

		if s == "" {
			continue
		}

		if !rx.MatchString(s) {
			return nil, fmt.Errorf("line %d: invalid or unhandled line: %s", p.line, s)
		}

		codes := rxSplit.FindAllString(s, -1)
		res := make([]Word, len(codes))

		for i, c := range codes {
			_, err = fmt.Sscanf(c, "%c%f", &res[i].W, &res[i].Arg)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", p.line, err)
			}
		}

		return res, nil
	}
}
