// Package portainertest provides an in-process fake Portainer API for tests.
package portainertest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ilhasoft/portainer-cli/pkg/portainer"
)

// Server is a fake Portainer API. Handlers are registered per method and
// path (without the /api prefix or query string); unmatched requests get a
// 404. Every request is recorded in arrival order.
type Server struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
	mu       sync.RWMutex
	requests []*RecordedRequest
}

// RecordedRequest stores details of a received request.
type RecordedRequest struct {
	Method  string
	Path    string
	Query   string
	Headers http.Header
	Body    []byte
}

// Key returns "METHOD path", the form used by On.
func (r *RecordedRequest) Key() string {
	return r.Method + " " + r.Path
}

// DecodeBody unmarshals the recorded body into out.
func (r *RecordedRequest) DecodeBody(t testing.TB, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Body, out); err != nil {
		t.Fatalf("decoding body of %s: %v (body: %s)", r.Key(), err, r.Body)
	}
}

// NewServer starts a fake API and registers its shutdown with t.
func NewServer(t testing.TB) *Server {
	s := &Server{
		handlers: make(map[string]http.HandlerFunc),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)
	s.server = httptest.NewServer(mux)
	t.Cleanup(s.server.Close)
	return s
}

// URL returns the base URL to configure clients with.
func (s *Server) URL() string {
	return s.server.URL + "/"
}

// Client returns an API client pointed at the server using token.
func (s *Server) Client(t testing.TB, token string) *portainer.Client {
	t.Helper()
	c, err := portainer.New(portainer.Options{BaseURL: s.URL(), Token: token})
	if err != nil {
		t.Fatalf("creating client: %v", err)
	}
	return c
}

// On registers a handler for method and an API path such as "stacks/3".
func (s *Server) On(method, path string, handler http.HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[fmt.Sprintf("%s /api/%s", method, path)] = handler
}

// OnJSON registers a handler replying with status and the JSON encoding
// of data.
func (s *Server) OnJSON(method, path string, status int, data interface{}) {
	s.On(method, path, JSONResponse(status, data))
}

func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.requests = append(s.requests, &RecordedRequest{
		Method:  r.Method,
		Path:    strings.TrimPrefix(r.URL.Path, "/api/"),
		Query:   r.URL.RawQuery,
		Headers: r.Header.Clone(),
		Body:    body,
	})
	handler, ok := s.handlers[r.Method+" "+r.URL.Path]
	s.mu.Unlock()

	if !ok {
		ErrorResponse(http.StatusNotFound, "Object not found inside the database")(w, r)
		return
	}
	handler(w, r)
}

// Requests returns all recorded requests.
func (s *Server) Requests() []*RecordedRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*RecordedRequest{}, s.requests...)
}

// Keys returns "METHOD path" for every recorded request, in order.
func (s *Server) Keys() []string {
	reqs := s.Requests()
	keys := make([]string, len(reqs))
	for i, r := range reqs {
		keys[i] = r.Key()
	}
	return keys
}

// Find returns the recorded requests matching method and path.
func (s *Server) Find(method, path string) []*RecordedRequest {
	var out []*RecordedRequest
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Last returns the most recent request, or nil.
func (s *Server) Last() *RecordedRequest {
	reqs := s.Requests()
	if len(reqs) == 0 {
		return nil
	}
	return reqs[len(reqs)-1]
}

// JSONResponse creates a JSON response handler.
func JSONResponse(status int, data interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if data != nil {
			_ = json.NewEncoder(w).Encode(data)
		}
	}
}

// ErrorResponse replies the way Portainer reports failures.
func ErrorResponse(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"message": message,
			"details": message,
		})
	}
}
