package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mastercactapus/penplot/machine"
	"github.com/mastercactapus/penplot/machine/stream"
	"github.com/mastercactapus/penplot/spjs"
	log "github.com/sirupsen/logrus"
)

type command struct {
	desc string
	run  func(args []string) error
}

var commands = map[string]command{
	"compile": {"Convert an SVG drawing into plotter commands.", compileCmd},
	"stream":  {"Send a command file to the plotter.", streamCmd},
	"park":    {"Lift the pen and return the plotter to the origin.", parkCmd},
	"preview": {"Render a command file to a PNG image.", previewCmd},
	"penup":   {"Turn selected drawing moves of a command file into pen-up moves.", penupCmd},
	"serve":   {"Run the HTTP API.", serveCmd},
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: penplot <command> [flags] [args]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %-8s %s\n", name, commands[name].desc)
	}
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[os.Args[1]]
	if !ok {
		usage()
		os.Exit(2)
	}

	err := cmd.run(os.Args[2:])
	if err != nil {
		log.Fatal(err)
	}
}

// options are the flags shared by every command.
type options struct {
	profile string
	verbose bool

	port     string
	baud     int
	spjsURL  string
	failFast bool
}

func newFlagSet(name string, o *options, device bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.StringVar(&o.profile, "profile", "", "JSON machine profile to load.")
	fs.BoolVar(&o.verbose, "v", false, "Enable debug logging.")
	if device {
		fs.StringVar(&o.port, "port", "", "Port path (or name if using SPJS). Defaults to the profile setting.")
		fs.IntVar(&o.baud, "baud", 0, "Baud rate. Defaults to the profile setting.")
		fs.StringVar(&o.spjsURL, "spjs", "", "Websocket URL of an SPJS server to connect through.")
		fs.BoolVar(&o.failFast, "fail-fast", false, "Stop at the first command rejected by the controller.")
	}
	return fs
}

// load returns the machine profile with flag overrides applied.
func (o *options) load() (machine.Profile, error) {
	if o.verbose {
		log.SetLevel(log.DebugLevel)
	}

	p := machine.DefaultProfile()
	if o.profile != "" {
		var err error
		p, err = machine.LoadProfile(o.profile)
		if err != nil {
			return p, err
		}
	}

	if o.port != "" {
		p.Port.Name = o.port
	}
	if o.baud != 0 {
		p.Port.Baud = o.baud
	}
	if o.failFast {
		p.Stream.Policy = stream.FailFast
	}
	return p, nil
}

func (o *options) opener(p machine.Profile) machine.Opener {
	if o.spjsURL == "" {
		return machine.SerialOpener(p.Port)
	}
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		return spjs.Dial(ctx, o.spjsURL, p.Port.Name, p.Port.Baud, p.Port.ReadTimeout)
	}
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, s.Err()
}

func readLinesFile(name string) ([]string, error) {
	fd, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer fd.Close()
	return readLines(fd)
}

func writeLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func logProgress(m *machine.Machine) func() {
	states, done := m.Subscribe()
	go func() {
		last := time.Now()
		for s := range states {
			if s.Status != machine.StatusRunning || time.Since(last) < time.Second {
				continue
			}
			last = time.Now()
			log.WithField("response", s.Response).Infof("Sent %d/%d", s.Sent, s.Total)
		}
	}()
	return done
}
