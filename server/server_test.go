package server_test

import (
	"go/types"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/go-chi/chi"
	"github.com/nasa-jpl/apphot/server"
)

func TestRouteTableBind(t *testing.T) {
	rt := server.RouteTable{
		{Method: http.MethodGet, Path: "/version"}: func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, "ok")
		},
		{Method: http.MethodPost, Path: "/measure"}: func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
		},
	}
	mux := chi.NewRouter()
	rt.Bind(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/version")
	if err != nil {
		t.Fatalf("GET /version: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Errorf("expected 200 ok, got %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/measure")
	if err != nil {
		t.Fatalf("GET /measure: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for GET on a POST route, got %d", resp.StatusCode)
	}
}

func TestRouteTableEndpoints(t *testing.T) {
	rt := server.RouteTable{
		{Method: http.MethodPost, Path: "/measure"}: nil,
		{Method: http.MethodGet, Path: "/version"}:  nil,
		{Method: http.MethodGet, Path: "/methods"}:  nil,
	}
	got := rt.Endpoints()
	want := []string{"GET /methods", "GET /version", "POST /measure"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v got %v", want, got)
	}
}

func TestListEndpoints(t *testing.T) {
	rt := server.RouteTable{
		{Method: http.MethodGet, Path: "/recent"}: nil,
	}
	rec := httptest.NewRecorder()
	server.ListEndpoints(rt)(rec, httptest.NewRequest(http.MethodGet, "/endpoints", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `["GET /recent"]` {
		t.Errorf(`expected ["GET /recent"] got %s`, got)
	}
}

func TestHumanPayloadEncodeAndRespond(t *testing.T) {
	cases := []struct {
		name string
		hp   server.HumanPayload
		want string
	}{
		{"float", server.HumanPayload{T: types.Float64, Float: 3.5}, `{"f64":3.5}`},
		{"int", server.HumanPayload{T: types.Int, Int: 42}, `{"int":42}`},
		{"string", server.HumanPayload{T: types.String, String: "exact"}, `{"str":"exact"}`},
		{"bool", server.HumanPayload{T: types.Bool, Bool: true}, `{"bool":true}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.hp.EncodeAndRespond(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200 got %d", rec.Code)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tc.want {
				t.Errorf("expected %s got %s", tc.want, got)
			}
		})
	}
}

func TestHumanPayloadUnknownType(t *testing.T) {
	rec := httptest.NewRecorder()
	hp := server.HumanPayload{T: types.Complex128}
	hp.EncodeAndRespond(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 for unknown payload type, got %d", rec.Code)
	}
}

func TestReplyWithFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "frame.fits"), []byte("payload"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	rec := httptest.NewRecorder()
	server.ReplyWithFile(rec, httptest.NewRequest(http.MethodGet, "/frame.fits", nil), "frame.fits", dir)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Body.String() != "payload" {
		t.Errorf("expected file payload, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	server.ReplyWithFile(rec, httptest.NewRequest(http.MethodGet, "/gone.fits", nil), "gone.fits", dir)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for a missing file, got %d", rec.Code)
	}
}

func TestSubMuxSanitize(t *testing.T) {
	cases := []struct {
		in  string
		out string
	}{
		{"", "/"},
		{"/", "/"},
		{"phot", "/phot"},
		{"/phot", "/phot"},
		{"/phot/", "/phot"},
		{"phot//", "/phot"},
	}
	for _, tc := range cases {
		if got := server.SubMuxSanitize(tc.in); got != tc.out {
			t.Errorf("SubMuxSanitize(%q) = %q, expected %q", tc.in, got, tc.out)
		}
	}
}
