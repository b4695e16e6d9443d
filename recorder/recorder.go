// Package recorder contains a measurement recorder used to automatically save photometry tables to disk.
package recorder

import (
	"encoding/json"
	"fmt"
	"go/types"
	"io/ioutil"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/nasa-jpl/apphot/server"
)

// Recorder records measurement tables with incrementing filenames in yyyy-mm-dd subfolders.  It is not thread safe.
type Recorder struct {
	// counter is the internally incrementing counter
	counter int

	// Root is the root path
	Root string

	// Prefix is the prefix for the filenames
	Prefix string

	// timeFldr is the subfolder with yyyy-mm-dd format.
	timeFldr string

	// Enabled is a flag unused by this struct that allows consumers to disable its use in their code
	Enabled bool
}

// updateFolder checks the current time and updates the folder as needed
func (r *Recorder) updateFolder() {
	now := time.Now()
	y, m, d := now.Year(), now.Month(), now.Day()
	r.timeFldr = fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

// mkDir makes the folder and returns it
func (r *Recorder) mkDir() (string, error) {
	fldr := path.Join(r.Root, r.timeFldr)
	err := os.MkdirAll(fldr, 0777)
	return fldr, err
}

// Path returns the file the next Write lands in
func (r *Recorder) Path() string {
	r.updateFolder()
	return path.Join(r.Root, r.timeFldr, r.filename())
}

func (r *Recorder) filename() string {
	return fmt.Sprintf("%s%06d.csv", r.Prefix, r.counter)
}

// Write implements io.Writer and writes the contents of a csv table to disk
func (r *Recorder) Write(p []byte) (n int, err error) {
	// make sure the folder exists
	r.updateFolder()
	fldr, err := r.mkDir()
	if err != nil {
		return 0, err
	}

	// now open the file and write to it
	fn := path.Join(fldr, r.filename())
	var fid *os.File
	fid, err = os.OpenFile(fn, os.O_APPEND|os.O_WRONLY, 0666)
	if err != nil && os.IsNotExist(err) {
		fid, err = os.Create(fn)
		if err != nil {
			return 0, err
		}
	}
	defer fid.Close()
	if err != nil {
		return 0, err
	}
	return fid.Write(p)
}

// Incr updates the filename counter; it scans the folder to do so.  If there is an error, the counter is not incremented
func (r *Recorder) Incr() {
	dn, _ := r.mkDir()
	files, err := ioutil.ReadDir(dn)
	if err != nil {
		return
	}
	count := 0
	for _, file := range files {
		// skip directories, non-csv, and wrong prefix
		if file.IsDir() {
			continue
		}
		fn := file.Name()
		if !strings.HasSuffix(fn, ".csv") || !strings.HasPrefix(fn, r.Prefix) {
			continue
		}
		bit := strings.TrimSuffix(strings.TrimPrefix(fn, r.Prefix), ".csv")
		n, err := strconv.Atoi(bit)
		if err != nil {
			continue
		}
		if count < n {
			count = n
		}
	}
	r.counter = count + 1
}

// HTTPWrapper is an HTTP wrapper around a recorder that allows the folder and prefix to be changed on the fly
//
// it does not implement server.HTTPer, offering an Inject method allowing it to be injected
// into another HTTPer
type HTTPWrapper struct {
	*Recorder
}

// NewHTTPWrapper returns an HTTP wrapper around a recorder
func NewHTTPWrapper(r *Recorder) HTTPWrapper {
	return HTTPWrapper{r}
}

// SetRoot updates the root folder of the recorder
func (h HTTPWrapper) SetRoot(w http.ResponseWriter, r *http.Request) {
	str := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	rec := h.Recorder
	rec.Root = str.Str
	rec.updateFolder()
	_, err = rec.mkDir()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// GetRoot gets the recorder's root folder and sends it back as JSON
func (h HTTPWrapper) GetRoot(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.String, String: h.Recorder.Root}
	hp.EncodeAndRespond(w, r)
}

// SetPrefix updates the filename prefix of the recorder and rewinds its counter
func (h HTTPWrapper) SetPrefix(w http.ResponseWriter, r *http.Request) {
	str := server.StrT{}
	err := json.NewDecoder(r.Body).Decode(&str)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Recorder.Prefix = str.Str
	h.Recorder.counter = 0
	w.WriteHeader(http.StatusOK)
}

// GetPrefix gets the recorder's prefix and sends it back as JSON
func (h HTTPWrapper) GetPrefix(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.String, String: h.Recorder.Prefix}
	hp.EncodeAndRespond(w, r)
}

// GetEnabled returns the Recorder's Enabled field
func (h HTTPWrapper) GetEnabled(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Bool, Bool: h.Recorder.Enabled}
	hp.EncodeAndRespond(w, r)
}

// SetEnabled sets the recorder's Enabled field
func (h HTTPWrapper) SetEnabled(w http.ResponseWriter, r *http.Request) {
	bT := server.BoolT{}
	err := json.NewDecoder(r.Body).Decode(&bT)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.Recorder.Enabled = bT.Bool
	w.WriteHeader(http.StatusOK)
}

// Inject adds GET and POST routes for /record/root, /record/prefix, and
// /record/enabled to the HTTPer which manipulate this wrapper's recorder
func (h HTTPWrapper) Inject(other server.HTTPer) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodPost, Path: "/record/root"}] = h.SetRoot
	rt[server.MethodPath{Method: http.MethodGet, Path: "/record/root"}] = h.GetRoot
	rt[server.MethodPath{Method: http.MethodPost, Path: "/record/prefix"}] = h.SetPrefix
	rt[server.MethodPath{Method: http.MethodGet, Path: "/record/prefix"}] = h.GetPrefix
	rt[server.MethodPath{Method: http.MethodPost, Path: "/record/enabled"}] = h.SetEnabled
	rt[server.MethodPath{Method: http.MethodGet, Path: "/record/enabled"}] = h.GetEnabled
}
