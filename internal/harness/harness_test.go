package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, sc))
		})
	}
}

func writeScenario(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(writeScenario(t, `
name: simple
target: Float32
source: "1/3"
want: f32(0.33333334)
`))
	require.NoError(t, err)
	assert.Equal(t, "simple", sc.Name)
	assert.Equal(t, "Float32", sc.Target)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	_, err := LoadScenario(writeScenario(t, `
name: typo
target: Float32
source: "1"
wnat: oops
`))
	assert.Error(t, err)
}

func TestLoadScenarioValidates(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing name", "target: Float32\nsource: \"1\"\n"},
		{"missing target", "name: x\nsource: \"1\"\n"},
		{"missing source", "name: x\ntarget: Float32\n"},
		{"want conflict", "name: x\ntarget: Float32\nsource: \"1\"\nwant: \"1\"\nwant_error: boom\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.src))
			assert.Error(t, err)
		})
	}
}

func TestRunChecksExpectations(t *testing.T) {
	// A correct expectation passes.
	_, err := Run(&Scenario{Name: "ok", Target: "Float32", Source: "1/3", WantRewrite: "/(@float32, 1, 3)"})
	assert.NoError(t, err)

	// A wrong expected value is reported.
	_, err = Run(&Scenario{Name: "bad", Target: "Float32", Source: "1 + 1", Want: "3"})
	assert.ErrorContains(t, err, "result mismatch")

	// An anticipated error is consumed.
	_, err = Run(&Scenario{Name: "err", Target: "Float32", Source: "nosuch", WantError: "undefined name"})
	assert.NoError(t, err)

	// An anticipated error that does not happen is itself an error.
	_, err = Run(&Scenario{Name: "noerr", Target: "Float32", Source: "1 + 1", WantError: "boom"})
	assert.ErrorContains(t, err, "expected error")
}

func TestExecuteInvalidTarget(t *testing.T) {
	res := Execute(&Scenario{Name: "t", Target: "", Source: "1"})
	require.Error(t, res.Err)
	assert.ErrorContains(t, res.Err, "target")
}
