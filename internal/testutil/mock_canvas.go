// Package testutil provides testing utilities for the Canvas client stack.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MockPage defines one page of a paginated mock endpoint.
type MockPage struct {
	StatusCode int
	Body       string
	Delay      time.Duration
}

// RecordedRequest is what the mock saw for one request.
type RecordedRequest struct {
	Path          string
	Query         url.Values
	Authorization string
}

// MockCanvas is a configurable mock Canvas API server for testing.
type MockCanvas struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	RequestCount int
	Requests     []RecordedRequest
}

// NewMockCanvas creates a new mock Canvas server.
func NewMockCanvas() *MockCanvas {
	mock := &MockCanvas{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.RequestCount++
		mock.Requests = append(mock.Requests, RecordedRequest{
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
		})
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		w.Header().Set("X-Rate-Limit-Remaining", "700.0")
		w.Header().Set("X-Request-Cost", "1.0")

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockCanvas) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockCanvas) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockCanvas) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestCount = 0
	m.Requests = nil
}

// SetHandler sets a custom handler for a specific path.
func (m *MockCanvas) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetPages serves path as a paginated endpoint. Page n (1-based) is selected with
// the "page" query parameter; every page but the last carries a Link header with
// rel="next", the way Canvas paginates.
func (m *MockCanvas) SetPages(path string, pages ...MockPage) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		n := 1
		if p := r.URL.Query().Get("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil {
				n = v
			}
		}
		if n < 1 || n > len(pages) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		page := pages[n-1]

		if page.Delay > 0 {
			time.Sleep(page.Delay)
		}

		links := []string{fmt.Sprintf(`<%s>; rel="current"`, m.pageURL(path, n))}
		if n < len(pages) {
			links = append(links, fmt.Sprintf(`<%s>; rel="next"`, m.pageURL(path, n+1)))
		}
		links = append(links,
			fmt.Sprintf(`<%s>; rel="first"`, m.pageURL(path, 1)),
			fmt.Sprintf(`<%s>; rel="last"`, m.pageURL(path, len(pages))))
		w.Header().Set("Link", strings.Join(links, ","))

		status := page.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		w.Write([]byte(page.Body))
	})
}

// SetJSON serves v as a single-page JSON response.
func (m *MockCanvas) SetJSON(path string, v any) {
	m.SetPages(path, JSONPage(v))
}

// SetStatus makes path answer with a bare status code.
func (m *MockCanvas) SetStatus(path string, status int) {
	m.SetPages(path, MockPage{StatusCode: status, Body: canvasError(http.StatusText(status))})
}

// GetRequestCount returns the number of requests made to the server.
func (m *MockCanvas) GetRequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.RequestCount
}

// RequestsFor returns the recorded requests for path, in arrival order.
func (m *MockCanvas) RequestsFor(path string) []RecordedRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []RecordedRequest
	for _, r := range m.Requests {
		if r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// Authorizations returns every Authorization header seen, in arrival order.
func (m *MockCanvas) Authorizations() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, len(m.Requests))
	for i, r := range m.Requests {
		out[i] = r.Authorization
	}
	return out
}

func (m *MockCanvas) pageURL(path string, n int) string {
	return fmt.Sprintf("%s%s?page=%d&per_page=100", m.server.URL, path, n)
}

// defaultHandler answers like Canvas does for unknown resources.
func (m *MockCanvas) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(canvasError("The specified resource does not exist.")))
}

// JSONPage creates a 200 page whose body is v encoded as JSON.
func JSONPage(v any) MockPage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal page: %v", err))
	}
	return MockPage{StatusCode: http.StatusOK, Body: string(data)}
}

// ErrorPage creates a page answering with status.
func ErrorPage(status int) MockPage {
	return MockPage{StatusCode: status, Body: canvasError(http.StatusText(status))}
}

func canvasError(msg string) string {
	data, _ := json.Marshal(map[string]any{
		"errors": []map[string]string{{"message": msg}},
	})
	return string(data)
}

// Course builds a Canvas course object as returned by users/self/courses.
func Course(id int, name, state, term string) map[string]any {
	c := map[string]any{
		"id":             id,
		"name":           name,
		"workflow_state": state,
	}
	if term != "" {
		c["term"] = map[string]any{"name": term}
	}
	return c
}

// Assignment builds a Canvas assignment object. dueAt nil encodes JSON null.
func Assignment(id int, name string, dueAt *string) map[string]any {
	return map[string]any{
		"id":     id,
		"name":   name,
		"due_at": dueAt,
	}
}

// Module builds a Canvas module object.
func Module(id int, name string, itemsCount int) map[string]any {
	return map[string]any{
		"id":          id,
		"name":        name,
		"items_count": itemsCount,
	}
}

// Items builds a slice of n generic objects with sequential ids starting at start.
func Items(start, n int) []map[string]any {
	out := make([]map[string]any, n)
	for i := range out {
		out[i] = map[string]any{"id": start + i}
	}
	return out
}
