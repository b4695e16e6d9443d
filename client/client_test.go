package client_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/nasa-jpl/apphot/client"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/imgio"
	"github.com/nasa-jpl/apphot/server"
)

func fastBackoff() backoff.BackOff {
	return &backoff.ExponentialBackOff{
		InitialInterval:     time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         5 * time.Millisecond,
		MaxElapsedTime:      50 * time.Millisecond,
		Clock:               backoff.SystemClock}
}

func frameHandler(t *testing.T, g *grid.Grid) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/image.fits" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/fits")
		if err := imgio.WriteFits(w, g); err != nil {
			t.Errorf("serve frame: %v", err)
		}
	}
}

func TestFrame(t *testing.T) {
	want := grid.Uniform(12, 8, 2.5)
	srv := httptest.NewServer(frameHandler(t, want))
	defer srv.Close()

	c := client.New(srv.URL + "/")
	g, err := c.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame: expected nil error, got %v", err)
	}
	if g.Width != 12 || g.Height != 8 || g.Data[0] != 2.5 {
		t.Errorf("expected 12x8 grid of 2.5, got %dx%d with first pixel %v", g.Width, g.Height, g.Data[0])
	}
}

func TestFrameRetriesTransientFailures(t *testing.T) {
	want := grid.Uniform(4, 4, 1)
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			http.Error(w, "exposure in progress", http.StatusServiceUnavailable)
			return
		}
		frameHandler(t, want)(w, r)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	c.Backoff = fastBackoff()
	g, err := c.Frame(context.Background())
	if err != nil {
		t.Fatalf("Frame: expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if g.Data[0] != 1 {
		t.Errorf("expected first pixel 1 got %v", g.Data[0])
	}
}

func TestFrameTooManyRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	c.Backoff = fastBackoff()
	_, err := c.Frame(context.Background())
	if !errors.Is(err, server.ErrTooManyRequests) {
		t.Errorf("expected ErrTooManyRequests, got %v", err)
	}
}

func TestFrameBadPayloadStopsRetrying(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		io.WriteString(w, "not a FITS stream")
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	c.Backoff = fastBackoff()
	_, err := c.Frame(context.Background())
	if err == nil {
		t.Fatal("expected an error for a malformed frame")
	}
	if attempts != 1 {
		t.Errorf("expected a malformed payload to stop the retry, got %d attempts", attempts)
	}
}

func TestFrameContextCancel(t *testing.T) {
	srv := httptest.NewServer(frameHandler(t, grid.Uniform(2, 2, 0)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := client.New(srv.URL)
	c.Backoff = fastBackoff()
	_, err := c.Frame(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
