package machine

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mastercactapus/penplot/gcode"
	"github.com/mastercactapus/penplot/machine/stream"
	"github.com/mastercactapus/penplot/svgpath"
)

// Profile collects everything needed to turn a drawing into commands for
// a particular plotter and to talk to it.
//
// Durations are in nanoseconds when loaded from JSON.
type Profile struct {
	Bed      Bed
	Path     svgpath.Options
	Compiler gcode.CompileOptions
	Format   gcode.Format

	Port   stream.PortConfig
	Stream stream.Config
}

// DefaultProfile is DefaultBed driven over /dev/ttyACM0.
func DefaultProfile() Profile {
	return Profile{
		Bed:      DefaultBed,
		Path:     svgpath.DefaultOptions(),
		Compiler: gcode.DefaultCompileOptions,
		Format:   gcode.DefaultFormat,
		Port:     stream.DefaultPortConfig,
		Stream:   stream.DefaultConfig(),
	}
}

// LoadProfile reads a JSON profile. Fields missing from the file keep
// their default values.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()

	fd, err := os.Open(path)
	if err != nil {
		return p, fmt.Errorf("load profile: %w", err)
	}
	defer fd.Close()

	dec := json.NewDecoder(fd)
	dec.DisallowUnknownFields()
	err = dec.Decode(&p)
	if err != nil {
		return DefaultProfile(), fmt.Errorf("load profile '%s': %w", path, err)
	}

	return p, nil
}

// Compile reads an SVG document and returns the program that draws it on
// the bed.
func (p Profile) Compile(r io.Reader) (gcode.Program, error) {
	doc, err := svgpath.ReadDocument(r, p.Path)
	if err != nil {
		return nil, err
	}

	return p.Compiler.Compile(p.Bed.Fit(doc)), nil
}

// CompileLines is like Compile but returns formatted command lines.
func (p Profile) CompileLines(r io.Reader) ([]string, error) {
	prog, err := p.Compile(r)
	if err != nil {
		return nil, err
	}
	return prog.Lines(p.Format), nil
}

// ParkLines returns the sequence that lifts the pen, returns to the
// origin and lowers the pen again.
func (p Profile) ParkLines() []string {
	return gcode.Program{
		{Kind: gcode.PenUp},
		{Kind: gcode.Move},
		{Kind: gcode.PenDown},
	}.Lines(p.Format)
}
