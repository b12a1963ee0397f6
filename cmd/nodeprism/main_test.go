package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptShanks/nodeprism/internal/report"
)

const firstModel = `{"graph": [{"nodes": [
  {"nodeid": "a", "name": "A", "nodegroup_id": "g1"},
  {"nodeid": "b", "name": "B", "nodegroup_id": "g1", "datatype": "string"}
]}]}`

const secondModel = `{"graph": [{"nodes": [
  {"nodeid": "b", "name": "B", "nodegroup_id": "g1", "datatype": "number"},
  {"nodeid": "c", "name": "C", "nodegroup_id": "g2"}
]}]}`

// setup isolates HOME and the working directory and writes both models
func setup(t *testing.T) (home, dir string) {
	t.Helper()
	home = t.TempDir()
	dir = t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NODEPRISM_SKIP_UPDATE_CHECK", "true")
	t.Setenv("NODEPRISM_THEME", "dark")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	require.NoError(t, os.WriteFile(filepath.Join(dir, "first.json"), []byte(firstModel), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.json"), []byte(secondModel), 0644))
	return home, dir
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

func runCLIWithInput(t *testing.T, input string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(input), &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestCompareWritesDefaultOutput(t *testing.T) {
	home, dir := setup(t)

	code, stdout, stderr := runCLI(t, "first.json", "second.json", "--details")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Results written to compare_first_vs_second_results.txt\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "compare_first_vs_second_results.txt"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Nodes only in first file:\n------------------------\nNode ID - a - Node name - A - [NODE_GROUP_ID: g1]")
	assert.Contains(t, text, "Node ID - c - Node name - C - [NODE_GROUP_ID: g2]")
	assert.Contains(t, text, `datatype: "string" -> "number"`)

	entries, err := filepath.Glob(filepath.Join(home, ".nodeprism", "*_first-vs-second_compare_differs.json"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCompareJSONFromOutputExtension(t *testing.T) {
	_, dir := setup(t)

	code, stdout, stderr := runCLI(t, "first.json", "second.json", "-o", "out.json", "--no-history")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Results written to out.json\n", stdout)

	f, err := os.Open(filepath.Join(dir, "out.json"))
	require.NoError(t, err)
	defer f.Close()
	res, err := report.ReadJSON(f)
	require.NoError(t, err)

	s := res.Summary
	assert.Equal(t, []int{2, 2, 1, 1, 1, 1},
		[]int{s.TotalFirst, s.TotalSecond, s.OnlyFirst, s.OnlySecond, s.Common, s.WithDifference})
}

func TestCompareNoHistory(t *testing.T) {
	home, _ := setup(t)

	code, _, stderr := runCLI(t, "first.json", "second.json", "result.txt", "--no-history")
	require.Equal(t, 0, code, stderr)

	_, err := os.Stat(filepath.Join(home, ".nodeprism"))
	assert.True(t, os.IsNotExist(err), "history directory should not exist")
}

func TestCompareErrors(t *testing.T) {
	setup(t)

	code, stdout, stderr := runCLI(t, "first.json", "missing.json")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.True(t, strings.HasPrefix(stderr, "Error: failed to read missing.json"), stderr)

	code, _, stderr = runCLI(t, "first.json")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: expected two model files to compare")
	assert.Contains(t, stderr, "Usage:")

	code, _, stderr = runCLI(t, "first.json", "second.json", "out.txt", "-o", "other.txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "both as an argument and with --output")

	code, _, stderr = runCLI(t, "first.json", "second.json", "--format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "output format must be")
}

func TestCompareReadsStdin(t *testing.T) {
	_, dir := setup(t)

	code, stdout, stderr := runCLIWithInput(t, firstModel, "-", "second.json", "--no-history")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "Results written to compare_stdin_vs_second_results.txt\n", stdout)

	data, err := os.ReadFile(filepath.Join(dir, "compare_stdin_vs_second_results.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Node ID - a - Node name - A - [NODE_GROUP_ID: g1]")

	code, _, stderr = runCLIWithInput(t, "", "first.json", "-", "--no-history")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: failed to parse stdin"), stderr)
}

func TestCompareRejectsStdinTwice(t *testing.T) {
	setup(t)

	code, stdout, stderr := runCLIWithInput(t, firstModel, "-", "-")
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error: only one of the two model files can be read from stdin")
	assert.Contains(t, stderr, "Usage:")
}

func TestCompareInvalidDocument(t *testing.T) {
	_, dir := setup(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))

	code, _, stderr := runCLI(t, "first.json", "broken.json")
	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stderr, "Error: failed to parse broken.json"), stderr)
}

func TestHistoryListAndView(t *testing.T) {
	setup(t)

	code, _, stderr := runCLI(t, "first.json", "second.json")
	require.Equal(t, 0, code, stderr)

	code, stdout, stderr := runCLI(t, "history", "list")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "first-vs-second")
	assert.Contains(t, stdout, "[DIFFERS]")
	assert.Contains(t, stdout, "Total: 1 entries (max: 50)")

	code, stdout, _ = runCLI(t, "history", "list", "--identical")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "No history files found")

	code, stdout, stderr = runCLI(t, "history", "view", "1", "--format", "json")
	require.Equal(t, 0, code, stderr)
	res, err := report.ReadJSON(strings.NewReader(stdout))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Summary.WithDifference)

	code, _, stderr = runCLI(t, "history", "view", "5", "--print")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "out of range")

	code, stdout, stderr = runCLI(t, "history", "clear", "--yes")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "Deleted 1 history files.")
}

func TestVersion(t *testing.T) {
	setup(t)

	code, stdout, _ := runCLI(t, "version")
	assert.Equal(t, 0, code)
	assert.Equal(t, "nodeprism v"+version+"\n", stdout)
}
