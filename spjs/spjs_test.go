package spjs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mastercactapus/penplot/machine/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer acknowledges every line sent to port ttyFake.
func fakeServer(t *testing.T, received chan<- string) *httptest.Server {
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ws, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			t.Error(err)
			return
		}
		defer ws.Close()

		send := func(v interface{}) {
			data, _ := json.Marshal(v)
			ws.WriteMessage(websocket.TextMessage, data)
		}

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			msg := string(data)
			received <- msg

			// servers echo commands back before answering
			ws.WriteMessage(websocket.TextMessage, data)

			if !strings.HasPrefix(msg, "sendjson ") {
				continue
			}
			var req JSON
			if err := json.Unmarshal(data[len("sendjson "):], &req); err != nil {
				t.Error(err)
				return
			}
			send(CmdStatus{Cmd: "Queued", QueueCount: len(req.Data)})
			send(DataFrame{Port: "ttyOther", Data: "error:1\n"})
			for range req.Data {
				send(DataFrame{Port: req.Port, Data: "o"})
				send(DataFrame{Port: req.Port, Data: "k\r\n"})
			}
		}
	}))
}

func wsURL(s *httptest.Server) string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func TestParseMessage(t *testing.T) {
	val, err := parseMessage([]byte(`{"P":"ttyACM0","D":"ok\n"}`))
	require.NoError(t, err)
	assert.Equal(t, &DataFrame{Port: "ttyACM0", Data: "ok\n"}, val)

	val, err = parseMessage([]byte(`{"Error":"port busy"}`))
	require.NoError(t, err)
	assert.Equal(t, &ErrorMessage{Error: "port busy"}, val)

	_, err = parseMessage([]byte(`{"Foo":1}`))
	assert.Error(t, err)
}

func TestPort_Stream(t *testing.T) {
	received := make(chan string, 100)
	srv := fakeServer(t, received)
	defer srv.Close()

	ctx := context.Background()
	p, err := Dial(ctx, wsURL(srv), "ttyFake", 9600, time.Second)
	require.NoError(t, err)
	assert.Equal(t, "open ttyFake 9600", <-received)

	lines := []string{"M300 S50", "G0 X1 Y2"}
	s := stream.NewSession(p, lines, stream.Config{MaxIdlePolls: 5})
	require.NoError(t, s.Run(ctx))
	assert.Equal(t, 2, s.PC())
	assert.Equal(t, "ok", s.LastResponse())

	var req JSON
	msg := <-received
	require.True(t, strings.HasPrefix(msg, "sendjson "), msg)
	require.NoError(t, json.Unmarshal([]byte(msg[len("sendjson "):]), &req))
	assert.Equal(t, JSON{Port: "ttyFake", Data: []Data{{Data: "M300 S50\n", ID: "penplot1"}}}, req)
}

func TestPort_ReadTimeout(t *testing.T) {
	received := make(chan string, 100)
	srv := fakeServer(t, received)
	defer srv.Close()

	p, err := Dial(context.Background(), wsURL(srv), "ttyFake", 115200, 10*time.Millisecond)
	require.NoError(t, err)

	n, err := p.Read(make([]byte, 10))
	assert.Equal(t, 0, n)
	assert.Equal(t, io.EOF, err)

	require.NoError(t, p.Close())
	_, err = p.Read(make([]byte, 10))
	assert.Error(t, err)
	assert.NotEqual(t, io.EOF, err)
}

func TestDial_Error(t *testing.T) {
	_, err := Dial(context.Background(), "ws://127.0.0.1:1/ws", "ttyFake", 9600, time.Second)
	var oerr *stream.OpenError
	assert.True(t, errors.As(err, &oerr), "got %v", err)
}
