package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one retargeting test case: a fragment source, a target
// type, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario exercises.
	Description string `yaml:"description"`

	// Target is the target type name ("Float16", "Float32", "Float64",
	// "BigFloat").
	Target string `yaml:"target"`

	// Source is the fragment text to parse, rewrite, and evaluate.
	Source string `yaml:"source"`

	// Want is the expected formatted result value. Optional when the
	// scenario only checks the rewritten form via golden files.
	Want string `yaml:"want,omitempty"`

	// WantRewrite is the expected canonical form of the rewritten tree.
	// Optional.
	WantRewrite string `yaml:"want_rewrite,omitempty"`

	// WantError is a substring the scenario expects in the error.
	// Mutually exclusive with Want.
	WantError string `yaml:"want_error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as load errors rather than silently skipped
// checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&sc); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &sc, nil
}

// LoadScenarios loads every *.yaml scenario under dir, sorted by file name
// for stable test ordering.
func LoadScenarios(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, sc)
	}
	return scenarios, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Target == "" {
		return fmt.Errorf("target is required")
	}
	if s.Source == "" {
		return fmt.Errorf("source is required")
	}
	if s.Want != "" && s.WantError != "" {
		return fmt.Errorf("want and want_error are mutually exclusive")
	}
	return nil
}
