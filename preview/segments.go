// Package preview reconstructs what a command file will draw, renders it
// to an image and rewrites selected commands.
package preview

import (
	"math"

	"github.com/mastercactapus/penplot/coord"
	"github.com/mastercactapus/penplot/gcode"
	log "github.com/sirupsen/logrus"
)

// ArcSteps is the number of chords used to draw an arc.
const ArcSteps = 50

// Segment is the path traced by one command while the pen is down.
type Segment struct {
	// Line is the 0-based index of the command in the source lines.
	Line int

	Arc    bool
	Points []coord.Point
}

// ArcPoints samples the arc from start to end around center with num
// chords. Both endpoints are included.
func ArcPoints(start, end, center coord.Point, clockwise bool, num int) []coord.Point {
	if num < 1 {
		num = 1
	}
	r := start.Distance(center)
	a1 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a2 := math.Atan2(end.Y-center.Y, end.X-center.X)
	if clockwise {
		if a2 > a1 {
			a2 -= 2 * math.Pi
		}
	} else if a2 < a1 {
		a2 += 2 * math.Pi
	}

	pts := make([]coord.Point, num+1)
	for i := range pts {
		t := a1 + (a2-a1)*float64(i)/float64(num)
		pts[i] = coord.Point{X: center.X + r*math.Cos(t), Y: center.Y + r*math.Sin(t)}
	}
	return pts
}

// Segments interprets lines and returns every pen-down segment.
//
// Lines that can't be parsed or interpreted are logged and skipped.
func Segments(lines []string, f gcode.Format) []Segment {
	vm := gcode.NewVM(f)

	var segs []Segment
	for i, line := range lines {
		blocks, err := gcode.Parse(line)
		if err != nil {
			log.WithField("line", i+1).WithError(err).Warnln("preview: skip line")
			continue
		}
		for _, b := range blocks {
			s, err := vm.Run(b)
			if err != nil {
				log.WithField("line", i+1).WithError(err).Warnln("preview: skip block")
				continue
			}
			if s.Pen != gcode.PenLowered || !s.Moved() {
				continue
			}
			if s.Arc {
				segs = append(segs, Segment{Line: i, Arc: true, Points: ArcPoints(s.From, s.To, s.Center, s.Clockwise, ArcSteps)})
			} else {
				segs = append(segs, Segment{Line: i, Points: []coord.Point{s.From, s.To}})
			}
		}
	}

	return segs
}

// Bounds returns the extent of every segment.
func Bounds(segs []Segment) (coord.Bounds, bool) {
	var doc coord.Document
	for _, s := range segs {
		doc = append(doc, s.Points)
	}
	return doc.Bounds()
}
