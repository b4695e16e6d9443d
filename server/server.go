// Package server contains the HTTP plumbing shared by the photometry
// services: route tables, human-readable payloads, and file replies.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-chi/chi"
)

// ErrTooManyRequests mirrors a 429 reply from a rate limited server.
var ErrTooManyRequests = errors.New("server: too many requests")

// HTTPer is a type which exposes its HTTP route table.
type HTTPer interface {
	RT() RouteTable
}

// MethodPath is an HTTP method and URL path pair, the key of a RouteTable.
type MethodPath struct {
	Method string
	Path   string
}

// RouteTable maps method-path pairs to their handlers.
type RouteTable map[MethodPath]http.HandlerFunc

// Bind attaches every route in the table to a chi router.
func (rt RouteTable) Bind(r chi.Router) {
	for mp, handler := range rt {
		r.Method(mp.Method, mp.Path, handler)
	}
}

// Endpoints returns the routes in the table as "METHOD /path" strings,
// sorted for stable output.
func (rt RouteTable) Endpoints() []string {
	routes := make([]string, 0, len(rt))
	for mp := range rt {
		routes = append(routes, mp.Method+" "+mp.Path)
	}
	sort.Strings(routes)
	return routes
}

// ListEndpoints returns a handler which serves the route table's
// endpoints as a JSON array of strings.
func ListEndpoints(rt RouteTable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(w).Encode(rt.Endpoints())
		if err != nil {
			fstr := fmt.Sprintf("error encoding route list to json %q", err)
			log.Println(fstr)
			http.Error(w, fstr, http.StatusInternalServerError)
		}
	}
}

// SubMuxSanitize conditions a string to be a valid mount point for a chi
// submux.  A leading slash is added if missing and any trailing slashes are
// removed.  The root path passes through unchanged.
func SubMuxSanitize(str string) string {
	if str == "" || str == "/" {
		return "/"
	}
	if !strings.HasPrefix(str, "/") {
		str = "/" + str
	}
	return strings.TrimRight(str, "/")
}

// ReplyWithFile replies to the client request by serving the given file
// name from the given folder.
func ReplyWithFile(w http.ResponseWriter, r *http.Request, fn string, fldr string) {
	filePath, err := filepath.Abs(filepath.Join(fldr, fn))
	if err != nil {
		fstr := fmt.Sprintf("unable to compute abspath of file %s %s %s", fldr, fn, err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusInternalServerError)
		return
	}

	f, err := os.Open(filePath)
	if err != nil {
		fstr := fmt.Sprintf("source file missing %s", filePath)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		fstr := fmt.Sprintf("error retrieving source file stats %s", err)
		log.Println(fstr)
		http.Error(w, fstr, http.StatusNotFound)
		return
	}
	http.ServeContent(w, r, fn, stat.ModTime(), f)
}
