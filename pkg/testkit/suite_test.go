package testkit_test

import (
	"path/filepath"
	"testing"

	"github.com/jhonlemus05/FastBite-Delivery/pkg/testkit"
)

func TestRunSuite(t *testing.T) {
	dir := t.TempDir()
	master := writeFile(t, dir, "test_scenarios.json", `[
		{"serviceName": "Counter", "filePath": "counter", "scenariosFileName": "scenarios.json"}
	]`)

	area := filepath.Join(dir, "counter")
	mkdir(t, area)
	writeFile(t, area, "scenarios.json", `[
		{"name": "fresh visitor", "steps": [{"url": "/count", "expectedCode": 200, "bodyContains": ["visits="]}]},
		{"name": "one visit", "steps": [
			{"method": "POST", "url": "/visit", "expectedCode": 303},
			{"url": "/count", "expectedCode": 200, "bodyContains": ["visits=1"]}
		]}
	]`)

	testkit.RunSuite(t, master, counterTarget)
}
