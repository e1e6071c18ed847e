package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/mastercactapus/penplot/machine"
	log "github.com/sirupsen/logrus"
)

func compileCmd(args []string) error {
	var o options
	fs := newFlagSet("compile", &o, false)
	steps := fs.Int("steps", 0, "Samples per cubic curve. Defaults to the profile setting.")
	split := fs.Bool("split", false, "Lift the pen between subpaths of a path.")
	out := fs.String("o", "", "Output file (default stdout).")
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("compile: expected exactly one SVG file")
	}

	p, err := o.load()
	if err != nil {
		return err
	}
	if *steps > 0 {
		p.Path.Steps = *steps
	}
	if *split {
		p.Path.SplitSubpaths = true
	}

	in, err := os.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer in.Close()

	prog, err := p.Compile(in)
	if err != nil {
		return err
	}

	if *out == "" {
		_, err = prog.Write(os.Stdout, p.Format)
		return err
	}

	fd, err := os.Create(*out)
	if err != nil {
		return err
	}
	_, err = prog.Write(fd, p.Format)
	if err != nil {
		fd.Close()
		return err
	}
	log.WithField("File", *out).Infoln("Wrote", len(prog), "commands")
	return fd.Close()
}

func runJob(o *options, job func(ctx context.Context, m *machine.Machine) error) error {
	p, err := o.load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	m := machine.NewMachine(p, o.opener(p))
	done := logProgress(m)
	defer done()

	return job(ctx, m)
}

func streamCmd(args []string) error {
	var o options
	fs := newFlagSet("stream", &o, true)
	fs.Parse(args)

	if fs.NArg() != 1 {
		return errors.New("stream: expected exactly one command file")
	}
	lines, err := readLinesFile(fs.Arg(0))
	if err != nil {
		return err
	}

	return runJob(&o, func(ctx context.Context, m *machine.Machine) error {
		err := m.Run(ctx, lines)
		if err != nil {
			return err
		}
		s := m.CurrentState()
		log.Infof("Done, sent %d/%d", s.Sent, s.Total)
		return nil
	})
}

func parkCmd(args []string) error {
	var o options
	fs := newFlagSet("park", &o, true)
	fs.Parse(args)

	return runJob(&o, func(ctx context.Context, m *machine.Machine) error {
		return m.Park(ctx)
	})
}
