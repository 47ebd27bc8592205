package testkit

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// ─── MockTransport ────────────────────────────────────────────────────────────

// MockTransport implements http.RoundTripper for the backend API client.
// It answers outgoing requests from a scenario's BackendMock steps instead of
// making network calls.
//
// The runner installs it on the shared client:
//
//	mt := testkit.NewMockTransport(scenario)
//	fbhttp.DefaultClient.Transport = mt
//	defer fbhttp.ResetTransport()
type MockTransport struct {
	mu       sync.Mutex
	steps    []httpMockEntry
	require  bool
	requests []RecordedRequest
}

type httpMockEntry struct {
	step      MockStep
	callCount int
}

// RecordedRequest is an outgoing call as the backend would have seen it.
type RecordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

func NewMockTransport(s *Scenario) *MockTransport {
	mt := &MockTransport{require: s.IsMockRequired}
	for _, step := range s.BackendMock {
		mt.steps = append(mt.steps, httpMockEntry{step: step})
	}
	return mt
}

// RoundTrip records the request and returns the first matching mock.
func (mt *MockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	mt.mu.Lock()
	defer mt.mu.Unlock()

	mt.requests = append(mt.requests, RecordedRequest{
		Method: req.Method,
		Path:   req.URL.Path,
		Auth:   req.Header.Get("Authorization"),
		Body:   body,
	})

	for i := range mt.steps {
		entry := &mt.steps[i]
		if !entry.step.IsMock || !stepMatches(entry.step, req) {
			continue
		}
		entry.callCount++
		return buildHTTPResponse(req, entry.step.ReturnData), nil
	}

	if mt.require {
		return nil, fmt.Errorf("testkit: unexpected backend call %s %s: no matching mock step", req.Method, req.URL.Path)
	}

	return &http.Response{
		StatusCode: http.StatusNotFound,
		Status:     "404 Not Found",
		Body:       io.NopCloser(strings.NewReader(`{"message":"no mock configured"}`)),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Request:    req,
	}, nil
}

// Requests returns every outgoing call seen so far, in order.
func (mt *MockTransport) Requests() []RecordedRequest {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	return append([]RecordedRequest(nil), mt.requests...)
}

// AssertAllCalled reports every isMock=true step called fewer than its
// MinCalls times.
func (mt *MockTransport) AssertAllCalled() []error {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	var errs []error
	for _, e := range mt.steps {
		want := e.step.MinCalls
		if want == 0 {
			want = 1
		}
		if e.step.IsMock && e.callCount < want {
			errs = append(errs, fmt.Errorf(
				"testkit: mock %s %q called %d times, want at least %d",
				e.step.Method, e.step.MatchPath, e.callCount, want,
			))
		}
	}
	return errs
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func stepMatches(step MockStep, req *http.Request) bool {
	if step.Method != "" && !strings.EqualFold(step.Method, req.Method) {
		return false
	}
	return strings.HasSuffix(req.URL.Path, step.MatchPath)
}

func buildHTTPResponse(req *http.Request, rd MockReturnData) *http.Response {
	code := rd.StatusCode
	if code == 0 {
		code = http.StatusOK
	}

	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(bytes.NewReader(rd.Body)),
		Request:    req,
	}
}
