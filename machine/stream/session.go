package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrAckTimeout is returned when the controller stays silent for longer
// than Config.MaxIdlePolls allows.
var ErrAckTimeout = errors.New("no acknowledgment from controller")

// ControllerError is returned under FailFast when a command is rejected.
type ControllerError struct {
	// Line is the 1-based program line that was rejected.
	Line     int
	Command  string
	Response string
}

func (e *ControllerError) Error() string {
	return fmt.Sprintf("line %d %q rejected: %s", e.Line, e.Command, e.Response)
}

// ErrorPolicy decides what happens when the controller rejects a command.
type ErrorPolicy byte

const (
	// BestEffort logs the rejection and continues with the next command.
	BestEffort ErrorPolicy = iota

	// FailFast stops streaming at the first rejection.
	FailFast
)

func (p ErrorPolicy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "best-effort"
}

// Set implements flag.Value.
func (p *ErrorPolicy) Set(s string) error {
	switch strings.ToLower(s) {
	case "best-effort", "besteffort":
		*p = BestEffort
	case "fail-fast", "failfast":
		*p = FailFast
	default:
		return fmt.Errorf("unknown error policy '%s'", s)
	}
	return nil
}

func (p ErrorPolicy) MarshalText() ([]byte, error) { return []byte(p.String()), nil }
func (p *ErrorPolicy) UnmarshalText(data []byte) error { return p.Set(string(data)) }

// Progress is reported after every acknowledged command.
type Progress struct {
	// Sent is the number of acknowledged commands so far.
	Sent  int
	Total int

	Command  string
	Response string
	Rejected bool
}

// Config tunes a Session.
type Config struct {
	// IdleInterval is the pause between empty reads.
	IdleInterval time.Duration `json:"idleInterval"`

	// CommandDelay is the pause after every acknowledgment.
	CommandDelay time.Duration `json:"commandDelay"`

	// MaxIdlePolls bounds the reads made while waiting for one
	// acknowledgment. Empty reads and diagnostic lines both count, so a
	// controller that only chatters still times out. Zero waits forever.
	MaxIdlePolls int `json:"maxIdlePolls"`

	Policy ErrorPolicy `json:"policy"`

	// Notify, if set, is called after every acknowledged command.
	Notify func(Progress) `json:"-"`
}

// DefaultConfig waits up to 30 seconds for each acknowledgment.
func DefaultConfig() Config {
	return Config{
		IdleInterval: 50 * time.Millisecond,
		CommandDelay: 100 * time.Millisecond,
		MaxIdlePolls: 600,
	}
}

// Session streams a program to a controller one line at a time, waiting
// for each line to be acknowledged before sending the next.
type Session struct {
	rw   io.ReadWriteCloser
	conn *Conn
	cfg  Config
	prog []string

	mx   sync.Mutex
	pc   int
	last string

	closeOnce sync.Once
	closeErr  error
}

// NewSession prepares a session. The session owns rw and closes it when
// Run returns.
func NewSession(rw io.ReadWriteCloser, program []string, cfg Config) *Session {
	return &Session{
		rw:   rw,
		conn: NewConn(rw),
		cfg:  cfg,
		prog: program,
	}
}

// PC returns the number of acknowledged commands.
func (s *Session) PC() int {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.pc
}

// LastResponse returns the most recent acknowledgment line.
func (s *Session) LastResponse() string {
	s.mx.Lock()
	defer s.mx.Unlock()
	return s.last
}

func (s *Session) close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.rw.Close()
	})
	return s.closeErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run sends every line of the program in order.
//
// The channel is closed on every return path, including cancellation of
// ctx, which also unblocks any pending read or write.
func (s *Session) Run(ctx context.Context) (err error) {
	stop := context.AfterFunc(ctx, func() { s.close() })
	defer func() {
		stop()
		cerr := s.close()
		if err == nil && cerr != nil {
			err = fmt.Errorf("close channel: %w", cerr)
		}
	}()

	for i, line := range s.prog {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.WithField("line", i+1).Debugln("stream: send", line)
		err := s.conn.WriteLine(line)
		if err != nil {
			return orCanceled(ctx, fmt.Errorf("write line %d: %w", i+1, err))
		}

		resp, text, err := s.await(ctx)
		if err != nil {
			return orCanceled(ctx, fmt.Errorf("line %d %q: %w", i+1, line, err))
		}

		s.mx.Lock()
		s.pc = i + 1
		s.last = text
		s.mx.Unlock()

		if resp == Nack {
			if s.cfg.Policy == FailFast {
				return &ControllerError{Line: i + 1, Command: line, Response: text}
			}
			log.WithFields(log.Fields{"line": i + 1, "command": line}).Warnln("stream: rejected:", text)
		}

		if s.cfg.Notify != nil {
			s.cfg.Notify(Progress{
				Sent:     i + 1,
				Total:    len(s.prog),
				Command:  line,
				Response: text,
				Rejected: resp == Nack,
			})
		}

		err = sleep(ctx, s.cfg.CommandDelay)
		if err != nil {
			return err
		}
	}

	return nil
}

func orCanceled(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// await polls until an Ack or Nack arrives.
func (s *Session) await(ctx context.Context) (Response, string, error) {
	var polls int
	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			return Unrecognized, "", fmt.Errorf("read response: %w", err)
		}

		resp := Decode(line)
		if resp != Unrecognized {
			return resp, line, nil
		}

		polls++
		if s.cfg.MaxIdlePolls > 0 && polls >= s.cfg.MaxIdlePolls {
			return Unrecognized, "", ErrAckTimeout
		}

		if line == "" {
			err = sleep(ctx, s.cfg.IdleInterval)
			if err != nil {
				return Unrecognized, "", err
			}
			continue
		}
		log.Infoln("stream: controller:", line)
	}
}
