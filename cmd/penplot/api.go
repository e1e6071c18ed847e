package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/mastercactapus/penplot/machine"
	"github.com/mastercactapus/penplot/preview"
	"github.com/mastercactapus/penplot/svgpath"
	log "github.com/sirupsen/logrus"
)

type api struct {
	http.Handler
	m       *machine.Machine
	dataDir string
	sse     *sse.Server

	release func()
}

func newAPI(m *machine.Machine, dir string) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		m:       m,
		dataDir: dir,
		sse: sse.NewServer(&sse.Options{
			Logger: stdlog.New(io.Discard, "", 0),
		}),
	}

	fs := http.StripPrefix("/data", http.FileServer(http.Dir(dir)))
	r.PathPrefix("/data/").Methods("GET", "HEAD").Handler(fs)
	r.PathPrefix("/data/").Methods("PUT").HandlerFunc(a.putFile)
	r.PathPrefix("/data/").Methods("DELETE").HandlerFunc(a.deleteFile)

	r.HandleFunc("/api/compile", a.compile).Methods("POST")
	r.HandleFunc("/api/run", a.run).Methods("POST")
	r.HandleFunc("/api/park", a.park).Methods("POST")
	r.HandleFunc("/api/stop", a.stop).Methods("POST")
	r.HandleFunc("/api/preview", a.preview).Methods("GET")
	r.PathPrefix("/events/").Methods("GET").Handler(a.sse)

	states, release := m.Subscribe()
	a.release = release
	go func() {
		for state := range states {
			data, err := json.Marshal(state)
			if err != nil {
				log.Errorf("marshal json: %+v", err)
				continue
			}
			a.sse.SendMessage("/events/state", sse.SimpleMessage(string(data)))
		}
	}()

	return a
}

// Close stops publishing machine state and disconnects event clients.
func (a *api) Close() {
	a.release()
	a.sse.Shutdown()
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		log.Warnln("invalid path '" + name + "'")
		return false, ""
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func dataName(req *http.Request) string {
	return strings.TrimPrefix(req.URL.Path, "/data")
}

func (a *api) readLines(w http.ResponseWriter, req *http.Request) ([]string, bool) {
	file := req.FormValue("file")
	if file == "" {
		lines, err := readLines(req.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return nil, false
		}
		return lines, true
	}

	ok, name := safePath(a.dataDir, file)
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return nil, false
	}
	lines, err := readLinesFile(name)
	if errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, req)
		return nil, false
	}
	if err != nil {
		log.Errorf("read '%s': %+v", name, err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil, false
	}
	return lines, true
}

func (a *api) compile(w http.ResponseWriter, req *http.Request) {
	prog, err := a.m.Profile().Compile(req.Body)
	var derr *svgpath.DocumentError
	if errors.As(err, &derr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Errorf("compile: %+v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	_, err = prog.Write(&buf, a.m.Profile().Format)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if save := req.FormValue("save"); save != "" {
		ok, name := safePath(a.dataDir, save)
		if !ok {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		os.MkdirAll(filepath.Dir(name), 0755)
		err = os.WriteFile(name, buf.Bytes(), 0644)
		if err != nil {
			log.Errorf("write '%s': %+v", name, err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.Copy(w, &buf)
}

func (a *api) start(w http.ResponseWriter, lines []string) {
	_, err := a.m.Start(context.Background(), lines)
	if errors.Is(err, machine.ErrBusy) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *api) run(w http.ResponseWriter, req *http.Request) {
	lines, ok := a.readLines(w, req)
	if !ok {
		return
	}
	a.start(w, lines)
}

func (a *api) park(w http.ResponseWriter, req *http.Request) {
	a.start(w, a.m.Profile().ParkLines())
}

func (a *api) stop(w http.ResponseWriter, req *http.Request) {
	a.m.Stop()
}

func (a *api) preview(w http.ResponseWriter, req *http.Request) {
	lines, ok := a.readLines(w, req)
	if !ok {
		return
	}

	opt := preview.DefaultOptions
	if s := req.FormValue("size"); s != "" {
		size, err := strconv.Atoi(s)
		if err != nil || size <= 2*opt.Margin || size > 8192 {
			http.Error(w, "invalid size", http.StatusBadRequest)
			return
		}
		opt.Size = size
	}

	w.Header().Set("Content-Type", "image/png")
	err := preview.Render(w, preview.Segments(lines, a.m.Profile().Format), opt)
	if err != nil {
		log.Errorf("render preview: %+v", err)
	}
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, dataName(req))
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	os.MkdirAll(filepath.Dir(name), 0755)
	f, err := os.Create(name)
	if err != nil {
		log.Errorf("create '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
	defer f.Close()
	_, err = io.Copy(f, req.Body)
	if err != nil {
		log.Errorf("write '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	ok, name := safePath(a.dataDir, dataName(req))
	if !ok {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	err := os.Remove(name)
	if errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, req)
		return
	}
	if err != nil {
		log.Errorf("delete '%s': %+v", name, err)
		http.Error(w, err.Error(), 500)
		return
	}
}
