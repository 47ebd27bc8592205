package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertStatusCode checks the response code with testify.
func AssertStatusCode(t *testing.T, step Step, got int) {
	t.Helper()
	assert.Equal(t, step.ExpectedCode, got, "[%s] HTTP status code mismatch", step.Name)
}

// AssertLocation checks the redirect target.
func AssertLocation(t *testing.T, step Step, got string) {
	t.Helper()
	assert.Equal(t, step.ExpectedLocation, got, "[%s] redirect location mismatch", step.Name)
}

// AssertBody checks the bodyContains and bodyNotContains fragments against
// the rendered page.
func AssertBody(t *testing.T, step Step, body []byte) {
	t.Helper()
	page := string(body)
	for _, frag := range step.BodyContains {
		assert.Contains(t, page, frag, "[%s] body is missing %q", step.Name, frag)
	}
	for _, frag := range step.BodyNotContains {
		assert.NotContains(t, page, frag, "[%s] body must not contain %q", step.Name, frag)
	}
}

// AssertJSONBody deep-compares actual response bytes against the expected file
// contents after normalising both through JSON unmarshal, so key order and
// whitespace never matter.
func AssertJSONBody(t *testing.T, step Step, expected, actual []byte) {
	t.Helper()
	if len(expected) == 0 {
		return
	}

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(expected, &expVal),
		"[%s] expected response file is not valid JSON", step.Name)

	if !assert.NoError(t, json.Unmarshal(actual, &actVal),
		"[%s] actual response is not valid JSON\nbody: %s", step.Name, string(actual)) {
		return
	}

	assert.Equal(t, expVal, actVal, "[%s] response body mismatch", step.Name)
}

// AssertMocksCalled fails the test if any backend mock was under-used.
func AssertMocksCalled(t *testing.T, s *Scenario, mt *MockTransport) {
	t.Helper()
	for _, err := range mt.AssertAllCalled() {
		assert.NoError(t, err, "[%s]", s.Name)
	}
}

// AssertEventsFired fails the test for each expected event that never fired.
func AssertEventsFired(t *testing.T, s *Scenario, rec *EventRecorder) {
	t.Helper()
	for _, err := range rec.Missing(s.ExpectEvents...) {
		assert.NoError(t, err, "[%s]", s.Name)
	}
}
