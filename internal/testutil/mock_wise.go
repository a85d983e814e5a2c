// Package testutil provides testing utilities for the Wise API client.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// Header names used by the Wise SCA flow.
const (
	HeaderApprovalResult = "X-2fa-Approval-Result"
	HeaderApproval       = "X-2fa-Approval"
	HeaderSignature      = "X-Signature"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a snapshot of one request received by the mock.
type RecordedRequest struct {
	Method string
	Host   string // host the client originally addressed
	Path   string
	Query  url.Values
	Header http.Header
}

// MockWise is a configurable mock Wise API server for testing.
type MockWise struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewMockWise creates a new mock Wise server.
func NewMockWise() *MockWise {
	mock := &MockWise{
		handlers: make(map[string]http.HandlerFunc),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host := r.Header.Get("X-Original-Host")
		r.Header.Del("X-Original-Host")

		mock.mu.Lock()
		mock.requests = append(mock.requests, RecordedRequest{
			Method: r.Method,
			Host:   host,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"error":"no handler for %s"}`, r.URL.Path)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockWise) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockWise) Close() {
	m.server.Close()
}

// Client returns an *http.Client that sends every request to the mock
// regardless of the addressed host. The addressed host is kept in
// RecordedRequest.Host so tests can assert base URL selection.
func (m *MockWise) Client() *http.Client {
	target, _ := url.Parse(m.server.URL)
	return &http.Client{
		Timeout:   5 * time.Second,
		Transport: &redirectTransport{target: target, next: m.server.Client().Transport},
	}
}

type redirectTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Set("X-Original-Host", req.URL.Scheme+"://"+req.URL.Host)
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return t.next.RoundTrip(out)
}

// Reset clears recorded requests.
func (m *MockWise) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockWise) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockWise) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, resp.write)
}

// SetSequence answers successive requests to path with resps in order.
// Once exhausted the last response is repeated.
func (m *MockWise) SetSequence(path string, resps ...MockResponse) {
	var mu sync.Mutex
	next := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := resps[next]
		if next < len(resps)-1 {
			next++
		}
		mu.Unlock()
		resp.write(w, r)
	})
}

// SetCursorPages serves cursor-paginated pages on path. pages is keyed by
// the nextCursor query value; the first page uses the empty key.
func (m *MockWise) SetCursorPages(path string, pages map[string]string) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Query().Get("nextCursor")]
		if !ok {
			NewErrorResponse(http.StatusBadRequest, "unknown cursor").write(w, r)
			return
		}
		NewJSONResponse(body).write(w, r)
	})
}

// Requests returns a copy of the recorded requests.
func (m *MockWise) Requests() []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockWise) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.requests)
}

func (resp MockResponse) write(w http.ResponseWriter, _ *http.Request) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewJSONResponse creates a 200 OK response carrying data.
func NewJSONResponse(data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewSCAChallengeResponse creates the 403 Wise returns when a request needs
// a signed one-time token.
func NewSCAChallengeResponse(token string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusForbidden,
		Body:       `{"error":"sca required"}`,
		Headers: map[string]string{
			"Content-Type":       "application/json",
			HeaderApprovalResult: "REJECTED",
			HeaderApproval:       token,
		},
	}
}

// NewErrorResponse creates a JSON error response with the given status.
func NewErrorResponse(status int, message string) MockResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return MockResponse{
		StatusCode: status,
		Body:       string(body),
		Headers: map[string]string{
			"Content-Type": "application/json",
		},
	}
}

// NewRawResponse creates a 200 OK response with an arbitrary content type,
// e.g. statement PDFs and CSVs.
func NewRawResponse(contentType, data string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       data,
		Headers: map[string]string{
			"Content-Type": contentType,
		},
	}
}
