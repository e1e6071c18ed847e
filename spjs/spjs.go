// Package spjs reaches a controller through a Serial Port JSON Server,
// which exposes local serial ports over a websocket.
package spjs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/penplot/machine/stream"
	log "github.com/sirupsen/logrus"
)

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	Data       []string `json:"D"`
	ID         string   `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name     string
	Friendly string
	IsOpen   bool
	Baud     int
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

func parseMessage(data []byte) (val interface{}, err error) {
	var msg map[string]json.RawMessage
	err = json.Unmarshal(data, &msg)
	if err != nil {
		return nil, err
	}

	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Cmd", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}

// Port is one serial port opened through the server. It is an
// io.ReadWriteCloser with the same read timeout behavior as a local serial
// port: Read returns io.EOF when nothing arrives in time.
type Port struct {
	ws      *websocket.Conn
	name    string
	timeout time.Duration

	wmx sync.Mutex
	id  int

	data chan string
	done chan struct{}
	buf  []byte

	closeOnce sync.Once
}

// Dial connects to the server at url and opens the named port.
func Dial(ctx context.Context, url, name string, baud int, timeout time.Duration) (*Port, error) {
	log.Println("Connecting to", url)
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, &stream.OpenError{Port: url, Err: err}
	}

	p := &Port{
		ws:      ws,
		name:    name,
		timeout: timeout,
		data:    make(chan string, 100),
		done:    make(chan struct{}),
	}
	go p.readLoop()

	err = p.writeMessage([]byte("open " + name + " " + strconv.Itoa(baud)))
	if err != nil {
		p.Close()
		return nil, &stream.OpenError{Port: name, Err: err}
	}
	log.WithField("Port", name).Println("Connected via", url)

	return p, nil
}

func (p *Port) readLoop() {
	defer p.closeOnce.Do(func() { close(p.done) })
	for {
		_, data, err := p.ws.ReadMessage()
		if err != nil {
			select {
			case <-p.done:
			default:
				log.Println("ERROR: read:", err)
			}
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		val, err := parseMessage(data)
		if err != nil {
			log.Println("ERROR: parse:", err)
			continue
		}

		switch m := val.(type) {
		case *ErrorMessage:
			log.WithField("Port", p.name).Warnln("spjs:", m.Error)
		case *DataFrame:
			if m.Port != p.name {
				continue
			}
			select {
			case p.data <- m.Data:
			case <-p.done:
				return
			}
		}
	}
}

func (p *Port) writeMessage(data []byte) error {
	p.wmx.Lock()
	defer p.wmx.Unlock()
	return p.ws.WriteMessage(websocket.TextMessage, data)
}

// Write sends every line of b to the port.
func (p *Port) Write(b []byte) (int, error) {
	select {
	case <-p.done:
		return 0, net.ErrClosed
	default:
	}

	msg := JSON{Port: p.name}
	for _, line := range strings.SplitAfter(string(b), "\n") {
		if line == "" {
			continue
		}
		p.id++
		msg.Data = append(msg.Data, Data{Data: line, ID: "penplot" + strconv.Itoa(p.id)})
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return 0, err
	}
	err = p.writeMessage(append([]byte("sendjson "), data...))
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// Read returns buffered port data, waiting at most the read timeout.
func (p *Port) Read(b []byte) (int, error) {
	if len(p.buf) == 0 {
		t := time.NewTimer(p.timeout)
		defer t.Stop()
		select {
		case s := <-p.data:
			p.buf = append(p.buf, s...)
		case <-p.done:
			return 0, net.ErrClosed
		case <-t.C:
			return 0, io.EOF
		}
	}

	n := copy(b, p.buf)
	p.buf = p.buf[n:]
	return n, nil
}

// Close closes the port and the connection to the server.
func (p *Port) Close() error {
	p.writeMessage([]byte("close " + p.name))
	p.closeOnce.Do(func() { close(p.done) })
	return p.ws.Close()
}
