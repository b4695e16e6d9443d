// replaysrv serves a folder of recorded FITS frames and measures them on
// demand, so photometry can be replayed against archived data without the
// camera that produced it.
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"goji.io"
	"goji.io/pat"

	"github.com/nasa-jpl/apphot/aperture"
	"github.com/nasa-jpl/apphot/imgio"
	"github.com/nasa-jpl/apphot/server"
)

const helpBlurb = `
Usage: replaysrv FOLDER [ADDR]
Example:
replaysrv /data/2026-08-12-run :8089

Serves the FITS frames in FOLDER:
  GET  /frames                list of frame names
  GET  /frames/:name          the frame file
  POST /frames/:name/measure  photometry of the frame

The measure body is JSON:
  {"apertures": [{"type": "circle", "x": 20, "y": 20, "r": 10}],
   "method": "exact"}
`

type srv struct {
	folder string
}

// frames lists the FITS files in the folder, sorted by name.
func (s srv) frames(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.folder)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".fits", ".fit", ".fts":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(names)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s srv) fetch(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(pat.Param(r, "name"))
	server.ReplyWithFile(w, r, name, s.folder)
}

type measureRequest struct {
	Apertures []aperture.Spec `json:"apertures"`
	Method    string          `json:"method"`
}

type row struct {
	ID  int     `json:"id"`
	X   float64 `json:"xcenter"`
	Y   float64 `json:"ycenter"`
	Sum float64 `json:"aperture_sum"`
}

func (s srv) measure(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(pat.Param(r, "name"))
	var req measureRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, err := aperture.ParseMethod(req.Method)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	aps, err := aperture.BuildAll(req.Apertures)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := imgio.ReadFile(filepath.Join(s.folder, name))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	t, err := aperture.Photometry(aps, g, nil, m)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows := make([]row, len(t.Rows))
	for i, res := range t.Rows {
		rows[i] = row{ID: i + 1, X: res.X, Y: res.Y, Sum: res.Sum}
	}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(rows)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 || args[0] == "help" {
		fmt.Print(helpBlurb, "\n")
		return
	}
	s := srv{folder: args[0]}
	addr := ":8089"
	if len(args) > 1 {
		addr = args[1]
	}
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/frames"), s.frames)
	mux.HandleFunc(pat.Get("/frames/:name"), s.fetch)
	mux.HandleFunc(pat.Post("/frames/:name/measure"), s.measure)
	log.Printf("replaysrv serving %s on %s", s.folder, addr)
	log.Fatal(http.ListenAndServe(addr, mux))
}
