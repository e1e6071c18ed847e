package svgpath

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mastercactapus/penplot/coord"
	"github.com/sirupsen/logrus"
)

var rxNumber = regexp.MustCompile(`[-+]?(?:[0-9]+\.?[0-9]*|\.[0-9]+)(?:[eE][-+]?[0-9]+)?`)

func isSep(r rune) bool { return r == ',' || unicode.IsSpace(r) }

// isCommandLetter reports if c starts a new token. The letters e and E
// only ever appear as exponents.
func isCommandLetter(c byte) bool {
	if c == 'e' || c == 'E' {
		return false
	}
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// tokenize splits path data at every command letter. Anything before the
// first letter is returned as junk.
func tokenize(d string) (tokens []string, junk string) {
	start := -1
	for i := 0; i < len(d); i++ {
		if !isCommandLetter(d[i]) {
			continue
		}
		if start == -1 {
			junk = d[:i]
		} else {
			tokens = append(tokens, d[start:i])
		}
		start = i
	}
	if start == -1 {
		return nil, d
	}
	return append(tokens, d[start:]), junk
}

func parseNumbers(s string) ([]float64, error) {
	if rest := rxNumber.ReplaceAllString(s, " "); strings.TrimFunc(rest, isSep) != "" {
		return nil, &CommandError{Reason: "invalid argument list"}
	}
	nums := rxNumber.FindAllString(s, -1)
	res := make([]float64, len(nums))
	var err error
	for i, n := range nums {
		res[i], err = strconv.ParseFloat(n, 64)
		if err != nil {
			return nil, &CommandError{Reason: err.Error()}
		}
	}
	return res, nil
}

func points(nums []float64) []coord.Point {
	res := make([]coord.Point, len(nums)/2)
	for i := range res {
		res[i] = coord.Point{X: nums[i*2], Y: nums[i*2+1]}
	}
	return res
}

func parseToken(tok string) ([]Command, error) {
	letter := tok[0]
	rel := letter >= 'a' && letter <= 'z'
	nums, err := parseNumbers(tok[1:])
	if err != nil {
		return nil, err
	}

	switch unicode.ToUpper(rune(letter)) {
	case 'M':
		if len(nums) < 2 {
			return nil, &CommandError{Reason: "move needs a coordinate pair"}
		}
		return []Command{{Kind: MoveTo, Relative: rel, Points: points(nums[:2])}}, nil
	case 'L':
		if len(nums) < 2 || len(nums)%2 != 0 {
			return nil, &CommandError{Reason: "line needs coordinate pairs"}
		}
		pts := points(nums)
		res := make([]Command, len(pts))
		for i, p := range pts {
			res[i] = Command{Kind: LineTo, Relative: rel, Points: []coord.Point{p}}
		}
		return res, nil
	case 'C':
		if len(nums) < 6 || len(nums)%6 != 0 {
			return nil, &CommandError{Reason: "cubic needs groups of 6 arguments"}
		}
		pts := points(nums)
		res := make([]Command, len(pts)/3)
		for i := range res {
			res[i] = Command{Kind: CubicTo, Relative: rel, Points: pts[i*3 : i*3+3]}
		}
		return res, nil
	case 'Z':
		return []Command{{Kind: ClosePath, Relative: rel}}, nil
	}

	return nil, &CommandError{Reason: "unsupported command"}
}

// Parse will tokenize path data into commands.
//
// Unknown or malformed commands are logged and skipped; parsing
// always continues with the next command.
func Parse(d string) []Command {
	tokens, junk := tokenize(d)
	if strings.TrimFunc(junk, isSep) != "" {
		logrus.WithField("data", junk).Warn("svgpath: ignoring data before first command")
	}

	var res []Command
	for _, tok := range tokens {
		cmds, err := parseToken(tok)
		if err != nil {
			if cerr, ok := err.(*CommandError); ok {
				cerr.Token = strings.TrimFunc(tok, isSep)
			}
			logrus.WithError(err).Warn("svgpath: skipped command")
			continue
		}
		res = append(res, cmds...)
	}

	return res
}
