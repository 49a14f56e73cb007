package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"qastats/app"
	"qastats/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const qaCSV = "Line,Weight,Note\nL1,2,ok\nL1,\"1,0\",ok\nL1,3,\nL1,4,late\nL2,6,ok\nL2,5,\nL2,7,ok\nL2,9,ok\n"

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qa.csv")
	require.NoError(t, os.WriteFile(path, []byte(qaCSV), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestBrowseCommands(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "sheets", path)
	require.NoError(t, err)
	assert.Equal(t, "Sheet1\n", out)

	out, err = run(t, "columns", path)
	require.NoError(t, err)
	assert.Equal(t, "Line\nWeight\nNote\n", out)

	out, err = run(t, "groups", path, "--by", "Line")
	require.NoError(t, err)
	assert.Equal(t, "L1\nL2\n", out)

	_, err = run(t, "columns", path, "--sheet", "Other")
	assert.ErrorIs(t, err, core.ErrSheetNotFound)
}

func TestTestCommands(t *testing.T) {
	path := writeCSV(t)
	groupArgs := []string{path, "--by", "Line", "--a", "L1", "--b", "L2", "--target", "Weight"}

	out, err := run(t, append([]string{"ttest"}, groupArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "[T-Test]\nMeans are statistically different.\np-value: 0.0074\n", out)

	out, err = run(t, append([]string{"welch"}, groupArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "[Welch Test]\nMeans are statistically different (Welch).\np-value: 0.0085\n", out)

	out, err = run(t, append([]string{"ci", "--level", "95"}, groupArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "[Confidence Interval — 95%]\n"+
		"Method: Student (equal variances)\n"+
		"Difference in means: -4.25\n"+
		"95% Confidence Interval: [-6.87, -1.63]\n"+
		"Degrees of freedom (df): 6.00\n", out)
}

func TestJSONOutput(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "ci", path, "--by", "Line", "--a", "L1", "--b", "L2", "--target", "Weight", "--level", "90", "--json")
	require.NoError(t, err)

	var report app.Report
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotNil(t, report.Interval)
	assert.InDelta(t, 0.10, report.Interval.Alpha, 1e-12)
	assert.Equal(t, 4, report.SummaryA.N)
}

func TestSweepCommand(t *testing.T) {
	path := writeCSV(t)

	out, err := run(t, "sweep", path, "--by", "Line", "--a", "L1", "--b", "L2", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "COLUMN")
	assert.Contains(t, out, "Weight")
	assert.Contains(t, out, "Skipped (no numeric data in a group): Note")
}

func TestCommandErrors(t *testing.T) {
	path := writeCSV(t)

	_, err := run(t, "levene", path, "--by", "Line", "--a", "L1", "--b", "L2")
	assert.Error(t, err)

	_, err = run(t, "levene", path, "--by", "Line", "--a", "L1", "--b", "L1", "--target", "Weight")
	assert.ErrorIs(t, err, core.ErrSameGroup)

	_, err = run(t, "pooled", path, "--by", "Line", "--a", "L1", "--b", "L2", "--target", "Note")
	assert.ErrorIs(t, err, core.ErrEmptyGroup)

	_, err = run(t, "sheets", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
