package preview

import "github.com/mastercactapus/penplot/gcode"

// MarkPenUp returns a copy of lines where every line whose 0-based index is
// in marked is wrapped in pen up and pen down commands, so the move still
// happens but draws nothing.
func MarkPenUp(lines []string, marked map[int]bool, f gcode.Format) []string {
	up := f.Block(gcode.Motion{Kind: gcode.PenUp}).String()
	down := f.Block(gcode.Motion{Kind: gcode.PenDown}).String()

	res := make([]string, 0, len(lines)+2*len(marked))
	for i, line := range lines {
		if marked[i] {
			res = append(res, up, line, down)
			continue
		}
		res = append(res, line)
	}
	return res
}
