package phothttp_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/nasa-jpl/apphot/phothttp"
	"github.com/nasa-jpl/apphot/recorder"
)

type wireImage struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Data   []float64 `json:"data"`
}

type wireRow struct {
	ID  int      `json:"id"`
	X   float64  `json:"xcenter"`
	Y   float64  `json:"ycenter"`
	Sum float64  `json:"aperture_sum"`
	Err *float64 `json:"aperture_sum_err"`
}

type wireTable struct {
	Rows []wireRow `json:"rows"`
}

func ones(w, h int) wireImage {
	data := make([]float64, w*h)
	for i := range data {
		data[i] = 1
	}
	return wireImage{Width: w, Height: h, Data: data}
}

func newServer(t *testing.T, rec *recorder.Recorder) *httptest.Server {
	t.Helper()
	h := phothttp.New(32, 16, rec)
	mux := chi.NewRouter()
	h.RT().Bind(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func measureBody(img wireImage, withErr bool, method string) map[string]interface{} {
	body := map[string]interface{}{
		"image":     img,
		"apertures": []map[string]interface{}{{"type": "circle", "x": 10, "y": 10, "r": 2}},
		"method":    method,
	}
	if withErr {
		body["error"] = img
	}
	return body
}

func TestMeasureCenterExactCounts(t *testing.T) {
	srv := newServer(t, nil)
	resp := postJSON(t, srv.URL+"/measure", measureBody(ones(21, 21), false, "center"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	tab := wireTable{}
	if err := json.NewDecoder(resp.Body).Decode(&tab); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if len(tab.Rows) != 1 {
		t.Fatalf("expected 1 row got %d", len(tab.Rows))
	}
	row := tab.Rows[0]
	if row.ID != 1 || row.X != 10 || row.Y != 10 {
		t.Errorf("expected id 1 at (10,10), got id %d at (%v,%v)", row.ID, row.X, row.Y)
	}
	// pixel centers strictly inside r=2 about an integer center: 9
	if row.Sum != 9 {
		t.Errorf("expected sum 9 got %v", row.Sum)
	}
	if row.Err != nil {
		t.Errorf("expected no error column without an error map, got %v", *row.Err)
	}
}

func TestMeasureErrorColumn(t *testing.T) {
	srv := newServer(t, nil)
	resp := postJSON(t, srv.URL+"/measure", measureBody(ones(21, 21), true, "center"))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	tab := wireTable{}
	if err := json.NewDecoder(resp.Body).Decode(&tab); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	row := tab.Rows[0]
	if row.Err == nil {
		t.Fatal("expected an error column with a unit error map")
	}
	// sqrt of the 9 contributing unit variances
	if *row.Err != 3 {
		t.Errorf("expected err 3 got %v", *row.Err)
	}
}

func TestMeasureMemoised(t *testing.T) {
	srv := newServer(t, nil)
	body := measureBody(ones(21, 21), false, "exact")
	first := postJSON(t, srv.URL+"/measure", body)
	b1 := new(bytes.Buffer)
	b1.ReadFrom(first.Body)
	first.Body.Close()

	second := postJSON(t, srv.URL+"/measure", body)
	b2 := new(bytes.Buffer)
	b2.ReadFrom(second.Body)
	second.Body.Close()

	if b1.String() != b2.String() {
		t.Errorf("expected identical replies for identical bodies, got %q and %q", b1, b2)
	}

	// the memo hit must not add a second timing
	resp, err := http.Get(srv.URL + "/recent")
	if err != nil {
		t.Fatalf("GET /recent: %v", err)
	}
	defer resp.Body.Close()
	recent := struct {
		Durations []float64   `json:"duration_ms"`
		Time      []time.Time `json:"timestamp"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&recent); err != nil {
		t.Fatalf("decode /recent: %v", err)
	}
	if len(recent.Durations) != 1 {
		t.Errorf("expected 1 recorded timing after a memo hit, got %d", len(recent.Durations))
	}
	if len(recent.Time) != len(recent.Durations) {
		t.Errorf("expected aligned rings, got %d durations and %d stamps", len(recent.Durations), len(recent.Time))
	}
}

func TestMeasureBadRequests(t *testing.T) {
	srv := newServer(t, nil)
	img := ones(9, 9)
	cases := []struct {
		name string
		body interface{}
	}{
		{"unknown aperture", map[string]interface{}{
			"image":     img,
			"apertures": []map[string]interface{}{{"type": "hexagon", "x": 4, "y": 4, "r": 1}},
			"method":    "exact",
		}},
		{"bad method", map[string]interface{}{
			"image":     img,
			"apertures": []map[string]interface{}{{"type": "circle", "x": 4, "y": 4, "r": 1}},
			"method":    "subpixel(zero)",
		}},
		{"mismatched error map", map[string]interface{}{
			"image":     img,
			"error":     ones(8, 9),
			"apertures": []map[string]interface{}{{"type": "circle", "x": 4, "y": 4, "r": 1}},
			"method":    "exact",
		}},
		{"short pixel block", map[string]interface{}{
			"image":     wireImage{Width: 4, Height: 4, Data: []float64{1, 2, 3}},
			"apertures": []map[string]interface{}{{"type": "circle", "x": 2, "y": 2, "r": 1}},
			"method":    "exact",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := postJSON(t, srv.URL+"/measure", tc.body)
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("expected 400 got %d", resp.StatusCode)
			}
		})
	}

	resp, err := http.Post(srv.URL+"/measure", "application/json", strings.NewReader("not json"))
	if err != nil {
		t.Fatalf("POST junk: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for junk body, got %d", resp.StatusCode)
	}
}

func TestBackground(t *testing.T) {
	srv := newServer(t, nil)
	resp := postJSON(t, srv.URL+"/background", map[string]interface{}{
		"image":     wireImage{Width: 4, Height: 4, Data: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}},
		"estimator": "median",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	out := struct {
		F64 float64 `json:"f64"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if out.F64 != 8.5 {
		t.Errorf("expected median 8.5 got %v", out.F64)
	}
}

func TestBackgroundClipped(t *testing.T) {
	srv := newServer(t, nil)
	resp := postJSON(t, srv.URL+"/background", map[string]interface{}{
		"image":     wireImage{Width: 5, Height: 1, Data: []float64{0, 0, 0, 0, 100}},
		"estimator": "mean",
		"clip":      map[string]float64{"low": 1, "high": 1},
	})
	defer resp.Body.Close()
	out := struct {
		F64 float64 `json:"f64"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	// median 0, population std 40: 100 clamps to 40, mean becomes 8
	if out.F64 != 8 {
		t.Errorf("expected clipped mean 8 got %v", out.F64)
	}
}

func TestBackgroundBadEstimator(t *testing.T) {
	srv := newServer(t, nil)
	resp := postJSON(t, srv.URL+"/background", map[string]interface{}{
		"image":     ones(3, 3),
		"estimator": "harmonic",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown estimator, got %d", resp.StatusCode)
	}
}

func TestMethodsVersionEndpoints(t *testing.T) {
	srv := newServer(t, nil)

	resp, err := http.Get(srv.URL + "/methods")
	if err != nil {
		t.Fatalf("GET /methods: %v", err)
	}
	var methods []string
	json.NewDecoder(resp.Body).Decode(&methods)
	resp.Body.Close()
	found := false
	for _, m := range methods {
		if m == "exact" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected exact among methods, got %v", methods)
	}

	resp, err = http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version: %v", err)
	}
	ver := struct {
		Str string `json:"str"`
	}{}
	json.NewDecoder(resp.Body).Decode(&ver)
	resp.Body.Close()
	if ver.Str == "" {
		t.Error("expected a nonempty version string")
	}

	resp, err = http.Get(srv.URL + "/endpoints")
	if err != nil {
		t.Fatalf("GET /endpoints: %v", err)
	}
	var eps []string
	json.NewDecoder(resp.Body).Decode(&eps)
	resp.Body.Close()
	found = false
	for _, ep := range eps {
		if ep == "POST /measure" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected POST /measure among endpoints, got %v", eps)
	}
}

func TestMeasureRecords(t *testing.T) {
	rec := &recorder.Recorder{Root: t.TempDir(), Prefix: "srv", Enabled: true}
	srv := newServer(t, rec)
	resp := postJSON(t, srv.URL+"/measure", measureBody(ones(21, 21), false, "center"))
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.StatusCode)
	}
	now := time.Now()
	fn := path.Join(rec.Root, fmt.Sprintf("%04d-%02d-%02d", now.Year(), now.Month(), now.Day()), "srv000000.csv")
	payload, err := os.ReadFile(fn)
	if err != nil {
		t.Fatalf("expected recorded csv at %s: %v", fn, err)
	}
	if !strings.Contains(string(payload), "aperture_sum") {
		t.Errorf("expected csv header in recording, got %q", payload)
	}
	if !strings.Contains(string(payload), ",9") {
		t.Errorf("expected recorded sum 9, got %q", payload)
	}
}
