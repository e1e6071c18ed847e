package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mastercactapus/penplot/preview"
	log "github.com/sirupsen/logrus"
)

func previewCmd(args []string) error {
	var o options
	fs := newFlagSet("preview", &o, false)
	size := fs.Int("size", preview.DefaultOptions.Size, "Image width and height in pixels.")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return errors.New("preview: expected a command file and an output PNG file")
	}
	p, err := o.load()
	if err != nil {
		return err
	}
	lines, err := readLinesFile(fs.Arg(0))
	if err != nil {
		return err
	}

	opt := preview.DefaultOptions
	opt.Size = *size

	fd, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}
	err = preview.Render(fd, preview.Segments(lines, p.Format), opt)
	if err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}

// parseLineNumbers parses a comma separated list of 1-based line numbers
// into 0-based indexes.
func parseLineNumbers(s string) (map[int]bool, error) {
	res := make(map[int]bool)
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("invalid line number '%s'", f)
		}
		if n < 1 {
			return nil, fmt.Errorf("line numbers start at 1, got %d", n)
		}
		res[n-1] = true
	}
	return res, nil
}

func penupCmd(args []string) error {
	var o options
	fs := newFlagSet("penup", &o, false)
	sel := fs.String("lines", "", "Comma separated line numbers to lift the pen for.")
	list := fs.Bool("list", false, "List the drawing moves instead of rewriting.")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("penup: expected exactly one command file")
	}
	p, err := o.load()
	if err != nil {
		return err
	}
	name := fs.Arg(0)
	data, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	// keep blank lines so numbers match the file
	lines := strings.Split(strings.TrimSuffix(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n"), "\n")

	if *list {
		for _, s := range preview.Segments(lines, p.Format) {
			fmt.Printf("%d\t%s\n", s.Line+1, lines[s.Line])
		}
		return nil
	}

	marked, err := parseLineNumbers(*sel)
	if err != nil {
		return err
	}
	if len(marked) == 0 {
		return errors.New("penup: no lines selected")
	}

	bak, err := os.Create(name + ".bak")
	if err != nil {
		return err
	}
	err = writeLines(bak, lines)
	if err != nil {
		bak.Close()
		return err
	}
	err = bak.Close()
	if err != nil {
		return err
	}
	log.WithField("File", name+".bak").Infoln("Original backed up")

	fd, err := os.Create(name)
	if err != nil {
		return err
	}
	err = writeLines(fd, preview.MarkPenUp(lines, marked, p.Format))
	if err != nil {
		fd.Close()
		return err
	}
	return fd.Close()
}
