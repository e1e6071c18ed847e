package svgpath

import (
	"encoding/xml"
	"io"

	"github.com/mastercactapus/penplot/coord"
	"github.com/sirupsen/logrus"
)

type svgRoot struct {
	XMLName xml.Name  `xml:"svg"`
	Paths   []svgPath `xml:"path"`
}

type svgPath struct {
	ID string `xml:"id,attr"`
	D  string `xml:"d,attr"`
}

// DocumentError is returned when the SVG document itself can't be read.
type DocumentError struct{ Err error }

func (e *DocumentError) Error() string { return "read svg document: " + e.Err.Error() }
func (e *DocumentError) Unwrap() error { return e.Err }

// ReadDocument will read every top-level <path> element of an SVG document
// and flatten it into polylines, in document order.
//
// Empty polylines are dropped. A malformed document returns a *DocumentError
// and no polylines.
func ReadDocument(r io.Reader, opt Options) (coord.Document, error) {
	var root svgRoot
	err := xml.NewDecoder(r).Decode(&root)
	if err != nil {
		return nil, &DocumentError{Err: err}
	}

	var doc coord.Document
	for i, p := range root.Paths {
		lines := FlattenDocument(Parse(p.D), opt).Compact()
		if len(lines) == 0 {
			logrus.WithFields(logrus.Fields{"index": i, "id": p.ID}).Debug("svgpath: empty path")
			continue
		}
		doc = append(doc, lines...)
	}

	return doc, nil
}
