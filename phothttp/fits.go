package phothttp

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nasa-jpl/apphot/aperture"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/imgio"
)

// maxUpload bounds in-memory parsing of multipart frames
const maxUpload = 256 << 20

// MeasureFits runs photometry on an uploaded FITS frame.  The multipart
// form carries the frame in "image", optionally a matching FITS error map
// in "error", an aperture list as JSON in "apertures", and the overlap
// method in "method".  Replies are not memoised.
func (h *HTTPPhotometer) MeasureFits(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, _, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image file missing from form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer f.Close()
	img, err := imgio.ReadFits(f)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var errmap *grid.Grid
	if ef, _, ferr := r.FormFile("error"); ferr == nil {
		defer ef.Close()
		errmap, err = imgio.ReadFits(ef)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}
	var specs []aperture.Spec
	if err := json.Unmarshal([]byte(r.FormValue("apertures")), &specs); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	aps, err := aperture.BuildAll(specs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	m, err := aperture.ParseMethod(r.FormValue("method"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	start := time.Now()
	tab, err := aperture.Photometry(aps, img, errmap, m)
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
	h.finish(start, 0, nil, tab)
	w.Header().Set("Content-Type", "application/json")
	w.Write(reply)
}
