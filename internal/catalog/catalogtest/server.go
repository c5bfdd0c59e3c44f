// Package catalogtest provides a scripted stand-in for the data-catalog
// service, for use in tests.
package catalogtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

const (
	HealthPath  = "/healthz"
	ReadyPath   = "/readyz"
	SearchPath  = "/search/"
	LineagePath = "/lineage/graph"
)

// Request is one request the server received.
type Request struct {
	Path      string
	RawQuery  string
	Query     url.Values
	RequestID string
}

// Response is a scripted reply. When Gate is set the handler blocks until
// it is closed, which lets tests control the order responses land in.
type Response struct {
	Status int
	Body   string
	Gate   <-chan struct{}
}

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
	scripts  map[string][]Response
}

// NewServer starts a server that is closed when the test ends. Paths with
// no scripted response answer 404.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{scripts: make(map[string][]Response)}

	r := gin.New()
	r.GET(HealthPath, s.handle)
	r.GET(ReadyPath, s.handle)
	r.GET(SearchPath, s.handle)
	r.GET(LineagePath, s.handle)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Respond makes every request to path answer with status and body.
func (s *Server) Respond(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[path] = []Response{{Status: status, Body: body}}
}

// RespondJSON is Respond with v marshalled as the body.
func (s *Server) RespondJSON(t testing.TB, path string, status int, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	s.Respond(path, status, string(data))
}

// Enqueue appends responses for path. They are served in order; the last
// one keeps answering once the queue is drained.
func (s *Server) Enqueue(path string, responses ...Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[path] = append(s.scripts[path], responses...)
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

func (s *Server) RequestsTo(path string) []Request {
	var out []Request
	for _, r := range s.Requests() {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func (s *Server) handle(c *gin.Context) {
	path := c.Request.URL.Path

	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Path:      path,
		RawQuery:  c.Request.URL.RawQuery,
		Query:     c.Request.URL.Query(),
		RequestID: c.GetHeader("X-Request-ID"),
	})
	resp, ok := s.next(path)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
		return
	}
	if resp.Gate != nil {
		<-resp.Gate
	}
	c.Data(resp.Status, "application/json", []byte(resp.Body))
}

func (s *Server) next(path string) (Response, bool) {
	queue := s.scripts[path]
	if len(queue) == 0 {
		return Response{}, false
	}
	resp := queue[0]
	if len(queue) > 1 {
		s.scripts[path] = queue[1:]
	}
	return resp, true
}
