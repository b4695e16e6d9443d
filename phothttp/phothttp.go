/*Package phothttp exposes the photometry engine over HTTP.

The HTTPPhotometer yields a route table with the following endpoints:

	POST /measure       JSON image + apertures + method -> measurement table
	POST /measure-fits  multipart FITS + apertures + method -> measurement table
	POST /background    JSON image + estimator -> scalar estimate
	GET  /recent        recent measurement timings
	GET  /methods       the overlap methods the server knows
	GET  /version       the server version
	GET  /endpoints     the route list

Replies to /measure are memoised keyed on the CRC64 of the request body,
so repeated measurements of the same scene are served from cache.
*/
package phothttp

import (
	"encoding/json"
	"go/types"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/brandondube/ringo"
	"github.com/nasa-jpl/apphot/aperture"
	"github.com/nasa-jpl/apphot/background"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/recorder"
	"github.com/nasa-jpl/apphot/server"
)

// Version is reported by the /version route.  Binaries may overwrite it.
var Version = "dev"

// imageJSON carries a row-major pixel block
type imageJSON struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Data   []float64 `json:"data"`
}

func (ij imageJSON) grid() (*grid.Grid, error) {
	return grid.FromData(ij.Width, ij.Height, ij.Data)
}

// measureRequest is the JSON body of POST /measure
type measureRequest struct {
	Image     imageJSON       `json:"image"`
	Error     *imageJSON      `json:"error,omitempty"`
	Apertures []aperture.Spec `json:"apertures"`
	Method    string          `json:"method"`
}

// rowJSON is one measurement in a reply table
type rowJSON struct {
	ID  int      `json:"id"`
	X   float64  `json:"xcenter"`
	Y   float64  `json:"ycenter"`
	Sum float64  `json:"aperture_sum"`
	Err *float64 `json:"aperture_sum_err,omitempty"`
}

type tableJSON struct {
	Rows []rowJSON `json:"rows"`
}

func tableToJSON(t aperture.Table) tableJSON {
	out := tableJSON{Rows: make([]rowJSON, len(t.Rows))}
	for i, row := range t.Rows {
		out.Rows[i] = rowJSON{ID: i + 1, X: row.X, Y: row.Y, Sum: row.Sum}
		if t.HasErr {
			e := row.Err
			out.Rows[i].Err = &e
		}
	}
	return out
}

// backgroundRequest is the JSON body of POST /background
type backgroundRequest struct {
	Image     imageJSON `json:"image"`
	Estimator string    `json:"estimator"`
	Clip      *clipJSON `json:"clip,omitempty"`
}

type clipJSON struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// recentJSON is the reply of GET /recent
type recentJSON struct {
	Durations *[]float64   `json:"duration_ms"`
	Time      *[]time.Time `json:"timestamp"`
}

// HTTPPhotometer is an HTTP wrapper around the photometry engine
type HTTPPhotometer struct {
	mu        sync.Mutex
	memo      *memo
	durations ringo.CircleF64
	stamps    ringo.CircleTime
	rec       *recorder.Recorder
	rt        server.RouteTable
}

// New returns an HTTPPhotometer which caches up to memoCapacity replies
// and retains recentCapacity measurement timings.  rec may be nil to
// disable recording.
func New(memoCapacity, recentCapacity int, rec *recorder.Recorder) *HTTPPhotometer {
	h := &HTTPPhotometer{memo: newMemo(memoCapacity), rec: rec}
	h.durations.Init(recentCapacity)
	h.stamps.Init(recentCapacity)
	rt := server.RouteTable{
		{Method: http.MethodPost, Path: "/measure"}:      h.Measure,
		{Method: http.MethodPost, Path: "/measure-fits"}: h.MeasureFits,
		{Method: http.MethodPost, Path: "/background"}:   h.Background,
		{Method: http.MethodGet, Path: "/recent"}:        h.Recent,
		{Method: http.MethodGet, Path: "/methods"}:       h.Methods,
		{Method: http.MethodGet, Path: "/version"}:       h.GetVersion,
	}
	rt[server.MethodPath{Method: http.MethodGet, Path: "/endpoints"}] = server.ListEndpoints(rt)
	h.rt = rt
	return h
}

// RT satisfies server.HTTPer
func (h *HTTPPhotometer) RT() server.RouteTable {
	return h.rt
}

// Measure runs photometry described by a JSON request body and replies
// with the measurement table.  Identical request bodies are served from
// the memo cache without recomputation.
func (h *HTTPPhotometer) Measure(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	key := crcTable.CalculateCRC(body)
	h.mu.Lock()
	cached, hit := h.memo.get(key)
	h.mu.Unlock()
	if hit {
		w.Header().Set("Content-Type", "application/json")
		w.Write(cached)
		return
	}

	req := measureRequest{}
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	tab, err := measure(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reply, err := json.Marshal(tableToJSON(tab))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	reply = append(reply, '\n')
	h.finish(start, key, reply, tab)
	w.Header().Set("Content-Type", "application/json")
	w.Write(reply)
}

// measure converts a request to engine types and runs it
func measure(req measureRequest) (aperture.Table, error) {
	img, err := req.Image.grid()
	if err != nil {
		return aperture.Table{}, err
	}
	var errmap *grid.Grid
	if req.Error != nil {
		errmap, err = req.Error.grid()
		if err != nil {
			return aperture.Table{}, err
		}
	}
	aps, err := aperture.BuildAll(req.Apertures)
	if err != nil {
		return aperture.Table{}, err
	}
	m, err := aperture.ParseMethod(req.Method)
	if err != nil {
		return aperture.Table{}, err
	}
	return aperture.Photometry(aps, img, errmap, m)
}

// finish memoises a reply, appends its timing to the recent rings, and
// records the table if a recorder is attached.  key 0 skips the memo.
func (h *HTTPPhotometer) finish(start time.Time, key uint64, reply []byte, tab aperture.Table) {
	elapsed := time.Since(start)
	h.mu.Lock()
	defer h.mu.Unlock()
	if key != 0 {
		h.memo.put(key, reply)
	}
	h.durations.Append(elapsed.Seconds() * 1e3)
	h.stamps.Append(start)
	if h.rec == nil || !h.rec.Enabled {
		return
	}
	if err := tab.WriteCSV(h.rec); err != nil {
		log.Printf("error recording measurement, %q\n", err)
		return
	}
	h.rec.Incr()
}

// Background estimates the scalar sky level of a JSON image
func (h *HTTPPhotometer) Background(w http.ResponseWriter, r *http.Request) {
	req := backgroundRequest{}
	err := json.NewDecoder(r.Body).Decode(&req)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	g, err := req.Image.grid()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	est, err := background.ParseEstimator(req.Estimator)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var v float64
	if req.Clip != nil {
		v, err = background.EstimateClipped(g, est, req.Clip.Low, req.Clip.High)
	} else {
		v, err = background.Estimate(g, est)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	hp := server.HumanPayload{T: types.Float64, Float: v}
	hp.EncodeAndRespond(w, r)
}

// Recent returns an object over HTTP which contains arrays of recent
// measurement durations in milliseconds and their timestamps
func (h *HTTPPhotometer) Recent(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	bufD := h.durations.Contiguous()
	bufT := h.stamps.Contiguous()
	h.mu.Unlock()
	s := recentJSON{Durations: &bufD, Time: &bufT}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	err := json.NewEncoder(w).Encode(s)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Methods lists the overlap methods the server accepts
func (h *HTTPPhotometer) Methods(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode([]string{"center", "exact", "subpixel(n)"})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// GetVersion returns the server version as JSON
func (h *HTTPPhotometer) GetVersion(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.String, String: Version}
	hp.EncodeAndRespond(w, r)
}
