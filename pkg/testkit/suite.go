package testkit

// Suite orchestration: one master file lists scenario files grouped by area.

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// ConfigEntry is one area in the master test_scenarios.json.
type ConfigEntry struct {
	ServiceName       string `json:"serviceName"`
	FilePath          string `json:"filePath"`          // directory, relative to the master file
	ScenariosFileName string `json:"scenariosFileName"` // JSON array of scenarios
}

// RunSuite runs every area listed in masterConfigPath as a subtest, and every
// scenario of the area as a nested subtest. Each scenario gets a fresh target.
func RunSuite(t *testing.T, masterConfigPath string, build Factory) {
	t.Helper()

	absMasterPath, err := filepath.Abs(masterConfigPath)
	if err != nil {
		t.Fatalf("testkit: resolve master config path %q: %v", masterConfigPath, err)
	}

	data, err := os.ReadFile(absMasterPath)
	if err != nil {
		t.Fatalf("testkit: read master config %q: %v", absMasterPath, err)
	}

	var entries []ConfigEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("testkit: parse master config %q: %v", absMasterPath, err)
	}

	baseDir := filepath.Dir(absMasterPath)

	for _, entry := range entries {
		t.Run(entry.ServiceName, func(t *testing.T) {
			scenarioPath := filepath.Join(baseDir, entry.FilePath, entry.ScenariosFileName)
			scenarios, err := LoadScenarioArray(scenarioPath)
			if err != nil {
				t.Fatalf("testkit: load scenario array %q: %v", scenarioPath, err)
			}

			for _, s := range scenarios {
				t.Run(s.Name, func(t *testing.T) {
					runScenario(t, build, s)
				})
			}
		})
	}
}
