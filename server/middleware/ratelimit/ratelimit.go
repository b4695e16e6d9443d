// Package ratelimit provides an HTTP middleware which bounds the rate of
// requests through a server, returning 429 (too many requests) beyond it
package ratelimit

import (
	"encoding/json"
	"go/types"
	"net/http"

	"github.com/nasa-jpl/apphot/server"
	"golang.org/x/time/rate"
)

// Inject adds rate-limit routes to a server.HTTPer which are used to
// inspect and change the limit at runtime
func Inject(other server.HTTPer, l *Limiter) {
	rt := other.RT()
	rt[server.MethodPath{Method: http.MethodGet, Path: "/rate-limit"}] = l.HTTPGet
	rt[server.MethodPath{Method: http.MethodPost, Path: "/rate-limit"}] = l.HTTPSet
}

// Limiter bounds the rate of requests flowing through its Check middleware
type Limiter struct {
	lim *rate.Limiter
}

// New returns a Limiter which admits rps requests per second in bursts
// of up to burst
func New(rps float64, burst int) *Limiter {
	return &Limiter{lim: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Check is an HTTP middleware that returns http.StatusTooManyRequests when
// the request budget is spent, otherwise passes down the line
func (l *Limiter) Check(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.lim.Allow() {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// HTTPGet returns the current limit in requests per second as JSON
func (l *Limiter) HTTPGet(w http.ResponseWriter, r *http.Request) {
	hp := server.HumanPayload{T: types.Float64, Float: float64(l.lim.Limit())}
	hp.EncodeAndRespond(w, r)
}

// HTTPSet changes the limit from json:f64 on the request body
func (l *Limiter) HTTPSet(w http.ResponseWriter, r *http.Request) {
	f := server.FloatT{}
	err := json.NewDecoder(r.Body).Decode(&f)
	defer r.Body.Close()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	l.lim.SetLimit(rate.Limit(f.F64))
	w.WriteHeader(http.StatusOK)
}
