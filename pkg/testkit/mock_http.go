// Package testkit holds test doubles shared by the bookstore packages: a
// programmable HTTP transport standing in for the backend, and a store that
// fails on demand.
package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// Step is one canned backend reply. Method "" matches any method; Path is a
// prefix matched against the request path.
type Step struct {
	Method string
	Path   string
	Status int
	Body   string
	Header http.Header

	// Err makes the round trip fail as if the network were down.
	Err error

	// Once retires the step after its first match.
	Once bool
}

// Call is a recorded request with its body read out.
type Call struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// MockTransport implements http.RoundTripper. Steps are matched in order;
// unmatched requests fail the round trip.
//
//	mt := testkit.NewMockTransport(
//		testkit.Step{Method: "POST", Path: "/api/auth/login", Body: `{"user":{...}}`},
//	)
//	c := api.New(baseURL, api.WithTransport(mt))
//	defer mt.AssertAllCalled(t)
type MockTransport struct {
	mu    sync.Mutex
	steps []*entry
	calls []Call
}

type entry struct {
	step      Step
	callCount int
}

func NewMockTransport(steps ...Step) *MockTransport {
	mt := &MockTransport{}
	mt.On(steps...)
	return mt
}

// On appends more steps.
func (mt *MockTransport) On(steps ...Step) *MockTransport {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	for _, s := range steps {
		mt.steps = append(mt.steps, &entry{step: s})
	}
	return mt
}

// RoundTrip intercepts the outgoing request and returns a synthetic response.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.calls = append(mt.calls, Call{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   body,
	})

	for _, e := range mt.steps {
		if e.step.Once && e.callCount > 0 {
			continue
		}
		if e.step.Method != "" && e.step.Method != req.Method {
			continue
		}
		if !strings.HasPrefix(req.URL.Path, e.step.Path) {
			continue
		}

		e.callCount++
		if e.step.Err != nil {
			return nil, e.step.Err
		}
		return buildHTTPResponse(req, e.step), nil
	}

	return nil, fmt.Errorf("testkit: unexpected outgoing HTTP call %s %s: no matching step", req.Method, req.URL)
}

// Calls returns every request seen so far.
func (mt *MockTransport) Calls() []Call {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	out := make([]Call, len(mt.calls))
	copy(out, mt.calls)
	return out
}

// CallsTo returns the recorded requests whose path has the given prefix.
func (mt *MockTransport) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range mt.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, path) {
			out = append(out, c)
		}
	}
	return out
}

// AssertAllCalled fails t for every step that never matched.
func (mt *MockTransport) AssertAllCalled(t *testing.T) {
	t.Helper()
	mt.mu.Lock()
	defer mt.mu.Unlock()

	for _, e := range mt.steps {
		assert.NotZero(t, e.callCount, "testkit: step %s %s was never called", e.step.Method, e.step.Path)
	}
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func buildHTTPResponse(req *http.Request, s Step) *http.Response {
	code := s.Status
	if code == 0 {
		code = http.StatusOK
	}

	header := make(http.Header)
	for k, v := range s.Header {
		header[k] = v
	}
	if header.Get("Content-Type") == "" {
		header.Set("Content-Type", "application/json")
	}

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     header,
		Body:       io.NopCloser(bytes.NewReader([]byte(s.Body))),
		Request:    req,
	}
}
