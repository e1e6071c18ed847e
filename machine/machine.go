package machine

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mastercactapus/penplot/machine/stream"
	log "github.com/sirupsen/logrus"
)

// ErrBusy is returned when a job is started while another is running.
var ErrBusy = errors.New("machine is busy")

// Opener opens a new channel to the controller.
type Opener func(ctx context.Context) (io.ReadWriteCloser, error)

// SerialOpener opens the serial port described by cfg.
func SerialOpener(cfg stream.PortConfig) Opener {
	return func(ctx context.Context) (io.ReadWriteCloser, error) {
		return stream.OpenSerial(ctx, cfg)
	}
}

// State is a snapshot of the machine's job.
type State struct {
	Status string `json:"status"`
	Sent   int    `json:"sent"`
	Total  int    `json:"total"`

	Command  string `json:"command,omitempty"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

const (
	StatusIdle    = "Idle"
	StatusRunning = "Running"
)

// Machine runs jobs against a single plotter, one at a time.
type Machine struct {
	prof Profile
	open Opener

	job sync.Mutex

	mx     sync.Mutex
	cur    State
	subs   map[chan State]struct{}
	cancel context.CancelFunc
}

func NewMachine(p Profile, open Opener) *Machine {
	return &Machine{
		prof: p,
		open: open,
		cur:  State{Status: StatusIdle},
		subs: make(map[chan State]struct{}),
	}
}

func (m *Machine) Profile() Profile { return m.prof }

// CurrentState returns the latest state.
func (m *Machine) CurrentState() State {
	m.mx.Lock()
	defer m.mx.Unlock()
	return m.cur
}

// Subscribe returns a channel receiving every state change. Slow
// subscribers miss updates rather than stalling the job. The returned func
// releases and closes the channel.
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 16)

	m.mx.Lock()
	m.subs[ch] = struct{}{}
	m.mx.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mx.Lock()
			delete(m.subs, ch)
			close(ch)
			m.mx.Unlock()
		})
	}
}

func (m *Machine) setState(s State) {
	m.mx.Lock()
	defer m.mx.Unlock()
	m.cur = s
	for ch := range m.subs {
		select {
		case ch <- s:
		default:
		}
	}
}

// Run streams lines to the plotter and blocks until the job ends.
func (m *Machine) Run(ctx context.Context, lines []string) error {
	if !m.job.TryLock() {
		return ErrBusy
	}
	defer m.job.Unlock()

	ctx, cancel := m.begin(ctx, len(lines))
	return m.finish(cancel, m.run(ctx, lines))
}

// Start is like Run but returns as soon as the job is started. The job
// result is delivered on the returned channel.
//
// The job can be canceled with Stop as soon as Start returns.
func (m *Machine) Start(ctx context.Context, lines []string) (<-chan error, error) {
	if !m.job.TryLock() {
		return nil, ErrBusy
	}
	ctx, cancel := m.begin(ctx, len(lines))

	ch := make(chan error, 1)
	go func() {
		defer m.job.Unlock()
		ch <- m.finish(cancel, m.run(ctx, lines))
	}()
	return ch, nil
}

// Stop cancels the running job, if any.
func (m *Machine) Stop() {
	m.mx.Lock()
	defer m.mx.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
}

// begin must be called with the job lock held.
func (m *Machine) begin(ctx context.Context, total int) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	m.mx.Lock()
	m.cancel = cancel
	m.mx.Unlock()
	m.setState(State{Status: StatusRunning, Total: total})

	return ctx, cancel
}

func (m *Machine) finish(cancel context.CancelFunc, err error) error {
	cancel()

	m.mx.Lock()
	m.cancel = nil
	m.mx.Unlock()

	end := m.CurrentState()
	end.Status = StatusIdle
	if err != nil {
		end.Error = err.Error()
		log.WithError(err).Errorln("machine: job failed")
	}
	m.setState(end)

	return err
}

func (m *Machine) run(ctx context.Context, lines []string) error {
	rw, err := m.open(ctx)
	if err != nil {
		return err
	}

	cfg := m.prof.Stream
	cfg.Notify = func(p stream.Progress) {
		m.setState(State{
			Status:   StatusRunning,
			Sent:     p.Sent,
			Total:    p.Total,
			Command:  p.Command,
			Response: p.Response,
		})
	}

	s := stream.NewSession(rw, lines, cfg)
	err = s.Run(ctx)
	log.WithField("sent", s.PC()).Infoln("machine: job finished")
	return err
}

// Park lifts the pen, returns to the origin and lowers the pen.
func (m *Machine) Park(ctx context.Context) error {
	return m.Run(ctx, m.prof.ParkLines())
}
