package machine

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/mastercactapus/penplot/machine/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type okPort struct {
	mx      sync.Mutex
	written []string
	pending bytes.Buffer
	block   chan struct{}
}

func (p *okPort) Write(b []byte) (int, error) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.written = append(p.written, strings.TrimSpace(string(b)))
	p.pending.WriteString("ok\n")
	return len(b), nil
}

func (p *okPort) Read(b []byte) (int, error) {
	if p.block != nil {
		<-p.block
	}
	p.mx.Lock()
	defer p.mx.Unlock()
	if p.pending.Len() == 0 {
		return 0, io.EOF
	}
	return p.pending.Read(b)
}

func (p *okPort) Close() error { return nil }

func fastProfile() Profile {
	p := DefaultProfile()
	p.Stream = stream.Config{}
	return p
}

func TestMachine_Park(t *testing.T) {
	port := &okPort{}
	m := NewMachine(fastProfile(), func(context.Context) (io.ReadWriteCloser, error) { return port, nil })

	states, done := m.Subscribe()
	defer done()

	require.NoError(t, m.Park(context.Background()))
	assert.Equal(t, []string{"M300 S50", "G1 X0 Y0 F3500", "M300 S30"}, port.written)

	s := m.CurrentState()
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 3, s.Sent)
	assert.Equal(t, 3, s.Total)
	assert.Empty(t, s.Error)

	first := <-states
	assert.Equal(t, State{Status: StatusRunning, Total: 3}, first)
}

func TestMachine_OpenError(t *testing.T) {
	openErr := errors.New("no such port")
	m := NewMachine(fastProfile(), func(context.Context) (io.ReadWriteCloser, error) { return nil, openErr })

	err := m.Run(context.Background(), []string{"G0 X0 Y0"})
	assert.ErrorIs(t, err, openErr)
	assert.Equal(t, "no such port", m.CurrentState().Error)
}

func TestMachine_Busy(t *testing.T) {
	port := &okPort{block: make(chan struct{})}
	opened := make(chan struct{})
	m := NewMachine(fastProfile(), func(context.Context) (io.ReadWriteCloser, error) {
		close(opened)
		return port, nil
	})

	errCh := make(chan error)
	go func() { errCh <- m.Run(context.Background(), []string{"G0 X1 Y1"}) }()

	<-opened
	assert.ErrorIs(t, m.Run(context.Background(), nil), ErrBusy)

	close(port.block)
	assert.NoError(t, <-errCh)
}

func TestMachine_StartStop(t *testing.T) {
	port := &okPort{}
	opened := make(chan struct{})
	m := NewMachine(fastProfile(), func(ctx context.Context) (io.ReadWriteCloser, error) {
		close(opened)
		<-ctx.Done()
		return nil, ctx.Err()
	})

	done, err := m.Start(context.Background(), []string{"G0 X1 Y1"})
	require.NoError(t, err)

	<-opened
	_, err = m.Start(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBusy)

	m.Stop()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, StatusIdle, m.CurrentState().Status)
	assert.Empty(t, port.written)

	// nothing to cancel
	m.Stop()
}

func TestMachine_StopRightAfterStart(t *testing.T) {
	lines := make([]string, 50)
	for i := range lines {
		lines[i] = "G1 X1 Y1"
	}

	for i := 0; i < 20; i++ {
		port := &okPort{}
		m := NewMachine(fastProfile(), func(context.Context) (io.ReadWriteCloser, error) { return port, nil })

		done, err := m.Start(context.Background(), lines)
		require.NoError(t, err)
		assert.Equal(t, StatusRunning, m.CurrentState().Status)

		m.Stop()
		assert.ErrorIs(t, <-done, context.Canceled)
		assert.Empty(t, port.written)
		assert.Equal(t, 0, m.CurrentState().Sent)
	}
}

func TestMachine_SubscribeRelease(t *testing.T) {
	m := NewMachine(fastProfile(), nil)
	states, done := m.Subscribe()
	m.setState(State{Status: StatusRunning, Total: 1})

	done()
	done()

	// buffered states are still delivered before the close
	s, ok := <-states
	assert.True(t, ok)
	assert.Equal(t, StatusRunning, s.Status)
	_, ok = <-states
	assert.False(t, ok)

	// no longer published to
	m.setState(State{Status: StatusRunning})
}
