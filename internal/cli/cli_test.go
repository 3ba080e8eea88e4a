package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI with the given stdin and args, capturing stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRewriteFromStdin(t *testing.T) {
	out, err := execute(t, "sqrt(2)", "rewrite", "--target", "Float32")
	require.NoError(t, err)
	assert.Equal(t, "sqrt(@float32, 2)\n", out)
}

func TestRewriteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fragment.txt")
	require.NoError(t, os.WriteFile(path, []byte("1/3"), 0o644))

	out, err := execute(t, "", "rewrite", "--target", "Float16", path)
	require.NoError(t, err)
	assert.Equal(t, "/(@float16, 1, 3)\n", out)
}

func TestRewriteToOutputFile(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "rewritten.txt")
	out, err := execute(t, "sqrt(2)", "rewrite", "--target", "Float32", "-o", dest)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "sqrt(@float32, 2)\n", string(data))
}

func TestRewriteJSON(t *testing.T) {
	out, err := execute(t, "0.5 + sqrt(2)", "rewrite", "--target", "Float32", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Target    string `json:"target"`
			Rewritten string `json:"rewritten"`
			Decisions []struct {
				Rule string `json:"Rule"`
			} `json:"decisions"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "float32", resp.Data.Target)
	assert.Equal(t, "+(@float32, f32(0.5), sqrt(@float32, 2))", resp.Data.Rewritten)
	assert.Len(t, resp.Data.Decisions, 3)
}

func TestRewriteParseError(t *testing.T) {
	out, err := execute(t, "sqrt(", "rewrite")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_PARSE]")
}

func TestRewriteInvalidTarget(t *testing.T) {
	_, err := execute(t, "1", "rewrite", "--target", "")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestInvalidFormatRejected(t *testing.T) {
	_, err := execute(t, "1", "rewrite", "--format", "xml")
	assert.ErrorContains(t, err, "invalid format")
}

func TestRunEvaluates(t *testing.T) {
	out, err := execute(t, "1/4", "run", "--target", "Float16")
	require.NoError(t, err)
	assert.Equal(t, "f16(0.25)\n", out)
}

func TestRunEvalError(t *testing.T) {
	out, err := execute(t, "nosuch + 1", "run")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E_EVAL]")
}

func TestRunPersistsAndTraceReads(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")

	out, err := execute(t, "0.5 + sqrt(2)", "run", "--target", "Float32",
		"--trace-db", db, "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			Result string `json:"result"`
			RunID  string `json:"run_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotEmpty(t, resp.Data.RunID)

	// Listing shows the run.
	out, err = execute(t, "", "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, resp.Data.RunID)
	assert.Contains(t, out, resp.Data.Result)

	// Showing it includes the source and the decisions.
	out, err = execute(t, "", "trace", "--db", db, resp.Data.RunID)
	require.NoError(t, err)
	assert.Contains(t, out, "source:   0.5 + sqrt(2)")
	assert.Contains(t, out, "float-literal")
	assert.Contains(t, out, "tracked-call")
}

func TestTraceUnknownRun(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	_, err := execute(t, "1", "run", "--trace-db", db)
	require.NoError(t, err)

	_, err = execute(t, "", "trace", "--db", db, "no-such-id")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTraceEmptyDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "trace.db")
	out, err := execute(t, "", "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}

func TestTraceRequiresDatabase(t *testing.T) {
	_, err := execute(t, "", "trace")
	assert.Error(t, err)
}

func TestOpsListsOperations(t *testing.T) {
	out, err := execute(t, "", "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "sqrt")
	assert.Contains(t, out, "elementary")
	assert.Contains(t, out, "include")
}

func TestOpsFamilyFilter(t *testing.T) {
	out, err := execute(t, "", "ops", "--family", "random")
	require.NoError(t, err)
	assert.Contains(t, out, "rand")
	assert.Contains(t, out, "randn")
	assert.NotContains(t, out, "sqrt")
}

func TestOpsUnknownFamily(t *testing.T) {
	_, err := execute(t, "", "ops", "--family", "bogus")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestOpsJSON(t *testing.T) {
	out, err := execute(t, "", "ops", "--family", "division", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   []struct {
			Name   string `json:"name"`
			Family string `json:"family"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 3)
	for _, e := range resp.Data {
		assert.Equal(t, "division", e.Family)
	}
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitCommandError, GetExitCode(WrapExitError(ExitCommandError, "boom", nil)))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))

	wrapped := WrapExitError(ExitCommandError, "outer", errors.New("inner"))
	assert.EqualError(t, wrapped, "outer: inner")
	assert.Equal(t, "inner", errors.Unwrap(wrapped).Error())
}
