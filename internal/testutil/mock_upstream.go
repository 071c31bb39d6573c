// Package testutil provides testing utilities for the breeds proxy.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// MockResponse defines the behavior for one mock upstream response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable mock breed API for testing.
//
// Responses queued with Enqueue are served in order; once the queue is empty
// the fallback response (SetResponse) is served for every request.
type MockUpstream struct {
	server *httptest.Server

	mu       sync.Mutex
	queue    []MockResponse
	fallback MockResponse

	// Tracking
	requestCount      int
	lastRequestHeader http.Header
	lastRequestPath   string
}

// NewMockUpstream creates a new mock upstream serving an empty catalog.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		fallback: NewCatalogResponse(`[]`),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.handle))
	return mock
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears tracking counters and queued responses.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.lastRequestHeader = nil
	m.lastRequestPath = ""
	m.queue = nil
}

// SetResponse configures the response served when the queue is empty.
func (m *MockUpstream) SetResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = resp
}

// SetCatalog serves body as a successful catalog response.
func (m *MockUpstream) SetCatalog(body string) {
	m.SetResponse(NewCatalogResponse(body))
}

// Enqueue appends one-shot responses served before the fallback.
func (m *MockUpstream) Enqueue(resps ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, resps...)
}

// RequestCount returns the number of requests made to the server.
func (m *MockUpstream) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockUpstream) LastRequestHeader() http.Header {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestHeader
}

// LastRequestPath returns the path of the most recent request.
func (m *MockUpstream) LastRequestPath() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequestPath
}

func (m *MockUpstream) handle(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requestCount++
	m.lastRequestHeader = r.Header.Clone()
	m.lastRequestPath = r.URL.Path

	resp := m.fallback
	if len(m.queue) > 0 {
		resp = m.queue[0]
		m.queue = m.queue[1:]
	}
	m.mu.Unlock()

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewCatalogResponse creates a 200 OK response carrying a JSON breed list.
func NewCatalogResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUnauthorizedResponse creates a 401 response, as sent for a bad API key.
func NewUnauthorizedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusUnauthorized,
		Body:       `{"message": "Invalid API key"}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewSlowResponse creates a catalog response delayed by d.
func NewSlowResponse(body string, d time.Duration) MockResponse {
	resp := NewCatalogResponse(body)
	resp.Delay = d
	return resp
}

// SampleCatalog is a small upstream catalog covering present and missing fields.
const SampleCatalog = `[
	{"id": 1, "name": "Affenpinscher", "origin": "Germany, France", "height": {"imperial": "9 - 11.5", "metric": "23 - 29"}, "life_span": "10 - 12 years", "temperament": "Stubborn, Curious, Playful", "image": {"id": "BJa4kxc4X", "url": "https://cdn2.thedogapi.com/images/BJa4kxc4X.jpg"}},
	{"id": 2, "name": "Afghan Hound", "country_code": "AG", "height": {"imperial": "25 - 27", "metric": "64 - 69"}, "life_span": "10 - 13 years", "reference_image_id": "hMyT4CDXR"},
	{"id": 3, "name": "African Hunting Dog"},
	{"id": 4, "name": "Beagle", "image": {"url": "beagle.jpg"}},
	{"id": 5, "name": "Bulldog", "image": {"url": "bulldog.jpg"}}
]`
