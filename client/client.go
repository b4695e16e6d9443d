// Package client provides access to photometry frame servers over HTTP.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/nasa-jpl/apphot/grid"
	"github.com/nasa-jpl/apphot/imgio"
	"github.com/nasa-jpl/apphot/server"
)

// Client fetches frames from a camera or replay server.
type Client struct {
	// Addr is the base URL of the server, e.g. http://localhost:8000/replay
	Addr string

	// HTTP is the underlying client; nil uses http.DefaultClient
	HTTP *http.Client

	// Backoff overrides the retry schedule; nil retries with an
	// exponential schedule for up to three seconds
	Backoff backoff.BackOff
}

// New returns a Client for the server at addr
func New(addr string) Client {
	return Client{Addr: strings.TrimRight(addr, "/")}
}

func (c Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c Client) backoff() backoff.BackOff {
	if c.Backoff != nil {
		return c.Backoff
	}
	// servers serving live camera frames block while exposures complete,
	// so the first try regularly loses the race
	return &backoff.ExponentialBackOff{
		InitialInterval:     25 * time.Millisecond,
		RandomizationFactor: 0.,
		Multiplier:          2.,
		MaxInterval:         1 * time.Second,
		MaxElapsedTime:      3 * time.Second,
		Clock:               backoff.SystemClock}
}

// Frame GETs <addr>/image.fits and decodes it into a Grid.  Transient
// failures are retried on the client's backoff schedule; malformed payloads
// and context cancellation end the retry immediately.
func (c Client) Frame(ctx context.Context) (*grid.Grid, error) {
	var g *grid.Grid
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.Addr+"/image.fits", nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := c.httpClient().Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return server.ErrTooManyRequests
		case resp.StatusCode != http.StatusOK:
			body, _ := io.ReadAll(resp.Body)
			return fmt.Errorf("client: %s replied %d: %s", c.Addr, resp.StatusCode, strings.TrimSpace(string(body)))
		}
		g, err = imgio.ReadFits(resp.Body)
		if err != nil {
			return backoff.Permanent(err)
		}
		return nil
	}
	if err := backoff.Retry(op, c.backoff()); err != nil {
		return nil, err
	}
	return g, nil
}
