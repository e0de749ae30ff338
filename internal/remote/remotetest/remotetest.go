// Package remotetest provides a scripted stand-in for the remote REST API.
package remotetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/diewo77/sp-admin/internal/remote"
)

// Prefix is the API mount point of the fake server.
const Prefix = "/api"

type Response struct {
	Status int
	Body   string
}

// Request is one recorded call, path relative to Prefix.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// API answers scripted routes and records every request. Unscripted routes
// answer 404.
type API struct {
	t      testing.TB
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string]Response
	requests []Request
}

func New(t testing.TB) *API {
	t.Helper()
	a := &API{t: t, routes: map[string]Response{}}
	a.server = httptest.NewServer(http.HandlerFunc(a.serve))
	t.Cleanup(a.server.Close)
	return a
}

func key(method, path string) string { return method + " " + path }

func (a *API) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	path := strings.TrimPrefix(r.URL.Path, Prefix)

	a.mu.Lock()
	a.requests = append(a.requests, Request{Method: r.Method, Path: path, Body: body})
	resp, ok := a.routes[key(r.Method, path)]
	a.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	io.WriteString(w, resp.Body)
}

// Handle scripts a raw response.
func (a *API) Handle(method, path string, status int, body string) {
	a.mu.Lock()
	a.routes[key(method, path)] = Response{Status: status, Body: body}
	a.mu.Unlock()
}

// JSON scripts a 200 response encoding v.
func (a *API) JSON(method, path string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		a.t.Fatalf("remotetest: marshal %s %s: %v", method, path, err)
	}
	a.Handle(method, path, http.StatusOK, string(b))
}

// Requests returns the recorded calls matching method and path.
func (a *API) Requests(method, path string) []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []Request
	for _, r := range a.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (a *API) Count(method, path string) int { return len(a.Requests(method, path)) }

// URL is the API base URL to configure a client with.
func (a *API) URL() string { return a.server.URL + Prefix }

func (a *API) Client(opts ...remote.Option) *remote.Client {
	return remote.NewClient(a.URL(), opts...)
}
