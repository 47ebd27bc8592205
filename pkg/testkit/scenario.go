// Package testkit drives storefront flows from JSON scenario files.
//
// A scenario is a browser session: an ordered list of steps fired against
// the full application handler with one cookie jar, so the session, cart and
// login carry from step to step. Calls the storefront makes to the backend
// API are answered by mock steps instead of the network.
//
// Scenario files live next to your *_test.go files:
//
//	testdata/
//	  checkout.json
//	  admin_products.json
//
// Example _test.go:
//
//	func TestFlows(t *testing.T) {
//	    testkit.RunDir(t, buildTarget, "testdata")
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ─── Schema ───────────────────────────────────────────────────────────────────

// Scenario describes one visitor session loaded from a JSON file.
type Scenario struct {
	Name        string `json:"name"`
	Description string `json:"description"`

	// Config overrides applied with config.Set for the duration of the
	// scenario (e.g. {"AUTH_MODE": "demo"}).
	Config map[string]string `json:"config"`

	// Steps run in order against one handler and one cookie jar.
	Steps []Step `json:"steps"`

	// IsMockRequired fails any backend call that no mock step matches.
	// Otherwise unmatched calls get a 404.
	IsMockRequired bool `json:"isMockRequired"`

	// BackendMock answers outgoing API calls. The first matching step wins.
	BackendMock []MockStep `json:"backendMock"`

	// ExpectEvents lists event names that must fire at least once.
	ExpectEvents []string `json:"expectEvents"`

	dir string
}

// Step is one browser request.
type Step struct {
	Name    string            `json:"name"`
	Method  string            `json:"method"` // default GET
	URL     string            `json:"url"`
	Form    map[string]string `json:"form"` // sent url-encoded when set
	Headers map[string]string `json:"headers"`

	ExpectedCode     int      `json:"expectedCode"`
	ExpectedLocation string   `json:"expectedLocation"` // exact Location header
	BodyContains     []string `json:"bodyContains"`
	BodyNotContains  []string `json:"bodyNotContains"`

	// ResponseFileName holds expected JSON, relative to the scenario file.
	ResponseFileName string `json:"responseFileName"`

	// Capture maps a variable name to a regexp whose first group is taken
	// from the response body. Later steps use it as {{name}} in url and form
	// values (e.g. the checkout token from the cart page).
	Capture map[string]string `json:"capture"`
}

// MockStep answers one kind of backend call.
type MockStep struct {
	// Method is the HTTP method to match; "" matches any.
	Method string `json:"method"`

	// MatchPath is matched against the end of the request path, so scenarios
	// do not depend on API_URL (e.g. "/products", "/orders/o1/status").
	MatchPath string `json:"matchPath"`

	// IsMock false documents a call without answering it; such steps are
	// skipped when matching.
	IsMock bool `json:"isMock"`

	// MinCalls is the number of calls AssertAllCalled requires. 0 means 1.
	MinCalls int `json:"minCalls"`

	ReturnData MockReturnData `json:"returnData"`
}

// MockReturnData is the synthetic response for a mock step.
type MockReturnData struct {
	StatusCode int             `json:"statusCode"` // default 200
	Body       json.RawMessage `json:"body"`       // raw JSON, returned as-is
}

// ─── Loading ──────────────────────────────────────────────────────────────────

// LoadScenario reads and validates a scenario from a JSON file.
func LoadScenario(path string) (*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}

	s.dir = filepath.Dir(abs)
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("testkit: invalid scenario %q: %w", abs, err)
	}
	return &s, nil
}

// LoadScenarioArray reads a file holding a JSON array of scenarios.
func LoadScenarioArray(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve scenario array path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read scenario array %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse scenario array %q: %w", abs, err)
	}

	dir := filepath.Dir(abs)
	for _, s := range scenarios {
		s.dir = dir
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: invalid scenario in %q: %w", abs, err)
		}
	}
	return scenarios, nil
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("%s: at least one step is required", s.Name)
	}
	for i := range s.Steps {
		st := &s.Steps[i]
		if st.URL == "" {
			return fmt.Errorf("%s: steps[%d].url is required", s.Name, i)
		}
		if st.ExpectedCode == 0 {
			return fmt.Errorf("%s: steps[%d].expectedCode is required", s.Name, i)
		}
		st.Method = strings.ToUpper(st.Method)
		if st.Method == "" {
			st.Method = "GET"
		}
		if st.Name == "" {
			st.Name = fmt.Sprintf("%02d %s %s", i+1, st.Method, st.URL)
		}
	}
	for i, st := range s.Steps {
		for name, expr := range st.Capture {
			if _, err := regexp.Compile(expr); err != nil {
				return fmt.Errorf("%s: steps[%d].capture[%s]: %w", s.Name, i, name, err)
			}
		}
	}
	for i, m := range s.BackendMock {
		if m.MatchPath == "" {
			return fmt.Errorf("%s: backendMock[%d].matchPath is required", s.Name, i)
		}
	}
	return nil
}

// ResponseBodyPath resolves st.ResponseFileName against the scenario's
// directory. Returns "" when unset.
func (s *Scenario) ResponseBodyPath(st Step) string {
	if st.ResponseFileName == "" {
		return ""
	}
	if filepath.IsAbs(st.ResponseFileName) {
		return st.ResponseFileName
	}
	return filepath.Join(s.dir, st.ResponseFileName)
}
