package testkit

// Run executes a single scenario file against a freshly built target.
// RunDir discovers all *.json files in a directory and runs them as subtests.

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jhonlemus05/FastBite-Delivery/config"
	"github.com/jhonlemus05/FastBite-Delivery/pkg/event"
	fbhttp "github.com/jhonlemus05/FastBite-Delivery/pkg/http"
)

// Target is what a scenario runs against.
type Target struct {
	Handler http.Handler
	Events  *event.Bus // optional; required when a scenario has ExpectEvents
}

// Factory builds a fresh target for each scenario, after config overrides and
// the mock transport are in place.
type Factory func(t *testing.T) Target

// ─── Public API ───────────────────────────────────────────────────────────────

// Run executes the scenario in scenarioPath.
//
// Lifecycle per scenario:
//  1. Apply config overrides.
//  2. Install the mock transport on the backend API client.
//  3. Build the target and subscribe to the expected events.
//  4. Fire each step through one cookie jar, without following redirects.
//  5. Assert status, Location, body fragments and JSON per step.
//  6. Verify every mock step was called and every expected event fired.
//  7. Restore the transport and config.
func Run(t *testing.T, build Factory, scenarioPath string) {
	t.Helper()

	s, err := LoadScenario(scenarioPath)
	if err != nil {
		t.Fatalf("testkit: load scenario %q: %v", scenarioPath, err)
	}

	t.Run(s.Name, func(t *testing.T) {
		runScenario(t, build, s)
	})
}

// RunDir runs every *.json scenario in dir as a subtest. Files that fail to
// parse are reported as test failures (not fatal).
func RunDir(t *testing.T, build Factory, dir string) {
	t.Helper()

	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil || len(entries) == 0 {
		t.Fatalf("testkit: no scenario files found in %q", dir)
	}

	for _, path := range entries {
		s, err := LoadScenario(path)
		if err != nil {
			t.Errorf("testkit: load %q: %v", path, err)
			continue
		}

		t.Run(s.Name, func(t *testing.T) {
			runScenario(t, build, s)
		})
	}
}

// ─── Internal execution ───────────────────────────────────────────────────────

func runScenario(t *testing.T, build Factory, s *Scenario) {
	t.Helper()

	for k, v := range s.Config {
		prev := config.Get(k, "")
		config.Set(k, v)
		t.Cleanup(func() { config.Set(k, prev) })
	}

	mt := NewMockTransport(s)
	original := fbhttp.DefaultClient.Transport
	fbhttp.DefaultClient.Transport = mt
	t.Cleanup(func() { fbhttp.DefaultClient.Transport = original })

	target := build(t)

	var rec *EventRecorder
	if len(s.ExpectEvents) > 0 {
		require.NotNil(t, target.Events, "[%s] expectEvents needs Target.Events", s.Name)
		rec = NewEventRecorder(target.Events, s.ExpectEvents...)
	}

	srv := httptest.NewServer(target.Handler)
	defer srv.Close()

	browser := NewBrowser(t)
	vars := map[string]string{}
	for _, step := range s.Steps {
		resp := browser.Do(t, srv.URL, expand(step, vars))
		checkStep(t, s, step, resp)
		capture(t, step, resp.Body, vars)
	}

	AssertMocksCalled(t, s, mt)
	if rec != nil {
		AssertEventsFired(t, s, rec)
	}
}

// Response is a fully read step response.
type Response struct {
	Code     int
	Location string
	Body     []byte
}

// Browser is an HTTP client with a cookie jar that never follows redirects,
// so each redirect is asserted by the step that caused it.
type Browser struct {
	client *http.Client
}

func NewBrowser(t *testing.T) *Browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &Browser{client: &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}}
}

// Do fires step against baseURL.
func (b *Browser) Do(t *testing.T, baseURL string, step Step) Response {
	t.Helper()

	var body io.Reader
	if step.Form != nil {
		form := url.Values{}
		for k, v := range step.Form {
			form.Set(k, v)
		}
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequest(step.Method, baseURL+step.URL, body)
	require.NoError(t, err)
	if step.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range step.Headers {
		req.Header.Set(k, v)
	}
	return b.Send(t, req)
}

// Send fires a prepared request (e.g. a multipart upload) through the jar.
func (b *Browser) Send(t *testing.T, req *http.Request) Response {
	t.Helper()

	resp, err := b.client.Do(req)
	require.NoError(t, err, "%s %s", req.Method, req.URL.Path)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return Response{Code: resp.StatusCode, Location: resp.Header.Get("Location"), Body: data}
}

// Cookie returns the value of the named cookie the jar holds for baseURL.
func (b *Browser) Cookie(t *testing.T, baseURL, name string) string {
	t.Helper()
	u, err := url.Parse(baseURL)
	require.NoError(t, err)
	for _, c := range b.client.Jar.Cookies(u) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// expand substitutes {{name}} placeholders in the step's url and form values.
func expand(step Step, vars map[string]string) Step {
	if len(vars) == 0 {
		return step
	}
	pairs := make([]string, 0, 2*len(vars))
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	r := strings.NewReplacer(pairs...)

	step.URL = r.Replace(step.URL)
	if step.Form != nil {
		form := make(map[string]string, len(step.Form))
		for k, v := range step.Form {
			form[k] = r.Replace(v)
		}
		step.Form = form
	}
	return step
}

func capture(t *testing.T, step Step, body []byte, vars map[string]string) {
	t.Helper()
	for name, expr := range step.Capture {
		m := regexp.MustCompile(expr).FindSubmatch(body)
		if len(m) < 2 {
			t.Errorf("[%s] capture %q: no match for %s", step.Name, name, expr)
			continue
		}
		vars[name] = string(m[1])
	}
}

func checkStep(t *testing.T, s *Scenario, step Step, resp Response) {
	t.Helper()

	AssertStatusCode(t, step, resp.Code)
	if step.ExpectedLocation != "" {
		AssertLocation(t, step, resp.Location)
	}
	AssertBody(t, step, resp.Body)

	if p := s.ResponseBodyPath(step); p != "" {
		expected, err := os.ReadFile(p)
		if err != nil {
			t.Errorf("[%s] read response file %q: %v", step.Name, p, err)
			return
		}
		AssertJSONBody(t, step, expected, resp.Body)
	}
}
