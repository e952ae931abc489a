package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// RecordedRequest is what a test server saw.
type RecordedRequest struct {
	Method      string
	EscapedPath string
	RawQuery    string
	Header      http.Header
	Body        string
}

// Recorder collects requests received by a test server.
type Recorder struct {
	mu       sync.Mutex
	requests []RecordedRequest
}

// Requests returns a copy of the recorded requests.
func (r *Recorder) Requests() []RecordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedRequest(nil), r.requests...)
}

// Last returns the most recent request, failing the test if there is none.
func (r *Recorder) Last(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := r.Requests()
	if len(reqs) == 0 {
		t.Fatal("no requests recorded")
	}
	return reqs[len(reqs)-1]
}

func (r *Recorder) record(req *http.Request) {
	body, _ := io.ReadAll(req.Body)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, RecordedRequest{
		Method:      req.Method,
		EscapedPath: req.URL.EscapedPath(),
		RawQuery:    req.URL.RawQuery,
		Header:      req.Header.Clone(),
		Body:        string(body),
	})
}

// NewRecordingServer answers every request with status and body and records
// what it received. The server is closed with the test.
func NewRecordingServer(t *testing.T, status int, body string) (*httptest.Server, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

// NewAPITestServer serves spec at /openapi.json and records every other
// request, answering 200 with body.
func NewAPITestServer(t *testing.T, spec, body string) (*httptest.Server, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/openapi.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(spec))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		rec.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, rec
}
