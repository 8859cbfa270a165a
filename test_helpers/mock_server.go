package test_helpers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockServer provides a configurable mock Reddit server for testing. It serves
// canned responses per path and records every request it receives.
type MockServer struct {
	server     *httptest.Server
	handler    *MockHandler
	requestLog []RequestEntry
	logMutex   sync.Mutex
}

// RequestEntry logs incoming requests for assertions
type RequestEntry struct {
	Method    string
	Path      string
	Query     url.Values
	Form      url.Values
	Headers   http.Header
	Body      string
	Timestamp time.Time

	// BasicUser and BasicPass are set when the request carried Basic credentials
	BasicUser string
	BasicPass string
	HasBasic  bool

	ResponseCode int
}

// MockHandler handles mock API responses
type MockHandler struct {
	responses   map[string]*MockResponse
	defaultResp *MockResponse
	delay       time.Duration
	callCount   map[string]int
	mutex       sync.RWMutex
	record      func(RequestEntry)
}

// MockResponse defines a mock API response
type MockResponse struct {
	Status  int
	Body    string
	Headers map[string]string
	Delay   time.Duration
}

// NewMockServer creates a new mock server instance
func NewMockServer() *MockServer {
	ms := &MockServer{requestLog: make([]RequestEntry, 0)}
	ms.handler = &MockHandler{
		responses: make(map[string]*MockResponse),
		callCount: make(map[string]int),
		defaultResp: &MockResponse{
			Status: http.StatusNotFound,
			Body:   `{"message": "Not Found", "error": 404}`,
		},
		record: ms.record,
	}
	ms.server = httptest.NewServer(ms.handler)
	return ms
}

// URL returns the base URL of the mock server
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the mock server
func (ms *MockServer) Close() {
	ms.server.Close()
}

// SetResponse configures a response for a specific path
func (ms *MockServer) SetResponse(path string, response *MockResponse) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.responses[path] = response
}

// SetJSON is shorthand for a 200 response with a JSON body.
func (ms *MockServer) SetJSON(path, body string) {
	ms.SetResponse(path, &MockResponse{
		Status:  http.StatusOK,
		Body:    body,
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// SetDefaultResponse configures the response for paths with no configured response
func (ms *MockServer) SetDefaultResponse(response *MockResponse) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.defaultResp = response
}

// SetDelay adds delay to all responses
func (ms *MockServer) SetDelay(delay time.Duration) {
	ms.handler.mutex.Lock()
	defer ms.handler.mutex.Unlock()
	ms.handler.delay = delay
}

// SetupError configures error responses for every path without its own response
func (ms *MockServer) SetupError(statusCode int, message string) {
	ms.SetDefaultResponse(&MockResponse{
		Status:  statusCode,
		Body:    fmt.Sprintf(`{"message": %q, "error": %d}`, message, statusCode),
		Headers: map[string]string{"Content-Type": "application/json"},
	})
}

// GetRequestLog returns a copy of the request log
func (ms *MockServer) GetRequestLog() []RequestEntry {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	return append([]RequestEntry{}, ms.requestLog...)
}

// GetCallCount returns the call count for a path
func (ms *MockServer) GetCallCount(path string) int {
	ms.handler.mutex.RLock()
	defer ms.handler.mutex.RUnlock()
	return ms.handler.callCount[path]
}

// ClearLog clears the request log and call counts
func (ms *MockServer) ClearLog() {
	ms.logMutex.Lock()
	ms.requestLog = ms.requestLog[:0]
	ms.logMutex.Unlock()

	ms.handler.mutex.Lock()
	ms.handler.callCount = make(map[string]int)
	ms.handler.mutex.Unlock()
}

// GetLastRequest returns the last request made to a specific path
func (ms *MockServer) GetLastRequest(path string) (*RequestEntry, error) {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()

	for i := len(ms.requestLog) - 1; i >= 0; i-- {
		if ms.requestLog[i].Path == path {
			entry := ms.requestLog[i]
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("no requests found for path: %s", path)
}

// AssertRequestCount asserts that a specific number of requests were made to a path
func (ms *MockServer) AssertRequestCount(path string, expectedCount int) error {
	actualCount := ms.GetCallCount(path)
	if actualCount != expectedCount {
		return fmt.Errorf("expected %d requests to %s, got %d", expectedCount, path, actualCount)
	}
	return nil
}

// WaitForRequests waits until count requests have arrived, including ones
// still being served
func (ms *MockServer) WaitForRequests(count int, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for %d requests", count)
		case <-ticker.C:
			total := 0
			ms.handler.mutex.RLock()
			for _, c := range ms.handler.callCount {
				total += c
			}
			ms.handler.mutex.RUnlock()

			if total >= count {
				return nil
			}
		}
	}
}

func (ms *MockServer) record(entry RequestEntry) {
	ms.logMutex.Lock()
	defer ms.logMutex.Unlock()
	ms.requestLog = append(ms.requestLog, entry)
}

// ServeHTTP implements http.Handler
func (h *MockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	entry := RequestEntry{
		Method:    r.Method,
		Path:      r.URL.Path,
		Query:     r.URL.Query(),
		Headers:   r.Header.Clone(),
		Timestamp: time.Now(),
	}
	entry.BasicUser, entry.BasicPass, entry.HasBasic = r.BasicAuth()

	if r.Body != nil {
		body, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		entry.Body = string(body)
		entry.Form, _ = url.ParseQuery(entry.Body)
	}

	h.mutex.Lock()
	h.callCount[r.URL.Path]++
	response, exists := h.responses[r.URL.Path]
	if !exists {
		response = h.defaultResp
	}
	delay := h.delay + response.Delay
	h.mutex.Unlock()

	defer func() { h.record(entry) }()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range response.Headers {
		w.Header().Set(key, value)
	}

	w.WriteHeader(response.Status)
	w.Write([]byte(response.Body))
	entry.ResponseCode = response.Status
}

// RedditMockServer is a MockServer preloaded with the auth and account endpoints.
type RedditMockServer struct {
	*MockServer
}

// NewRedditMockServer creates a mock server pre-configured for Reddit API responses
func NewRedditMockServer() *RedditMockServer {
	server := &RedditMockServer{MockServer: NewMockServer()}
	server.setupDefaultResponses()
	return server
}

func (rms *RedditMockServer) setupDefaultResponses() {
	rms.SetJSON("/api/v1/access_token",
		`{"access_token":"mock_token","token_type":"bearer","expires_in":3600,"scope":"*"}`)
	rms.SetJSON("/api/v1/me", `{"name":"mock_user","id":"abc123","link_karma":1}`)
}
