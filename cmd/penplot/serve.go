package main

import (
	"net/http"

	"github.com/mastercactapus/penplot/machine"
	log "github.com/sirupsen/logrus"
)

func serveCmd(args []string) error {
	var o options
	fs := newFlagSet("serve", &o, true)
	addr := fs.String("addr", ":9091", "Address to bind the server to.")
	dir := fs.String("dir", "./data", "Data directory to use.")
	fs.Parse(args)

	p, err := o.load()
	if err != nil {
		return err
	}

	m := machine.NewMachine(p, o.opener(p))
	api := newAPI(m, *dir)
	defer api.Close()

	log.Infoln("Listening on", *addr)
	return http.ListenAndServe(*addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		log.Debugf("%s %s - %s", req.Method, req.URL.Path, req.RemoteAddr)
		api.ServeHTTP(w, req)
	}))
}
