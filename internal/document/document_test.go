package document

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

const modelJSON = `{
  "name": "Heritage Place",
  "graph": [
    {"nodes": [
      {"nodeid": 101, "name": "Name", "nodegroup_id": 7, "config": {"maxLength": 20}},
      {"nodeid": "abc", "name": "Type", "istopnode": false}
    ]}
  ]
}`

const modelYAML = `
name: Heritage Place
graph:
  - nodes:
      - nodeid: 101
        name: Name
        nodegroup_id: 7
        config:
          maxLength: 20
      - nodeid: abc
        name: Type
        istopnode: false
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFor("model.yaml"))
	assert.Equal(t, FormatYAML, FormatFor("MODEL.YML"))
	assert.Equal(t, FormatJSON, FormatFor("model.json"))
	assert.Equal(t, FormatJSON, FormatFor("model"))
}

func TestLoadJSON(t *testing.T) {
	doc, err := Load(writeFile(t, "model.json", modelJSON))
	require.NoError(t, err)

	idx := compare.Extract(doc)
	assert.ElementsMatch(t, []string{"101", "abc"}, idx.IDs())
}

func TestLoadYAMLMatchesJSON(t *testing.T) {
	fromJSON, err := Load(writeFile(t, "model.json", modelJSON))
	require.NoError(t, err)
	fromYAML, err := Load(writeFile(t, "model.yml", modelYAML))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
	assert.True(t, compare.Compare(fromJSON, fromYAML, compare.Options{}).Identical())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load(writeFile(t, "broken.json", `{"graph": [`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestDecodeRejectsTrailingData(t *testing.T) {
	_, err := Decode(strings.NewReader(`{} {}`), FormatJSON)
	assert.Error(t, err)
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode(strings.NewReader(""), FormatJSON)
	assert.Error(t, err)
	_, err = Decode(strings.NewReader(""), FormatYAML)
	assert.Error(t, err)
}

func TestCanonicalizeNonStringKeys(t *testing.T) {
	got := canonicalize(map[any]any{1: "one", true: []any{2}})
	assert.Equal(t, map[string]any{"1": "one", "true": []any{json.Number("2")}}, got)
}

func TestDecodeKeepsLargeNodeIDs(t *testing.T) {
	first, err := Decode(strings.NewReader(`{"graph": [{"nodes": [
		{"nodeid": 12345678901234567891},
		{"nodeid": 9007199254740993},
		{"nodeid": 9007199254740992}
	]}]}`), FormatJSON)
	require.NoError(t, err)
	second, err := Decode(strings.NewReader(`{"graph": [{"nodes": [{"nodeid": "12345678901234567891"}]}]}`), FormatJSON)
	require.NoError(t, err)

	idx := compare.Extract(first)
	assert.ElementsMatch(t, []string{"12345678901234567891", "9007199254740993", "9007199254740992"}, idx.IDs())

	res := compare.Compare(first, second, compare.Options{Normalize: true})
	assert.Equal(t, 3, res.Summary.TotalFirst)
	assert.Equal(t, 1, res.Summary.Common)
	require.Len(t, res.PresentInBoth, 1)
	assert.Equal(t, "12345678901234567891", res.PresentInBoth[0].NodeID)
}

func TestDecodeYAMLKeepsLargeIntegers(t *testing.T) {
	doc, err := Decode(strings.NewReader("graph:\n  - nodes:\n      - nodeid: 9007199254740993\n"), FormatYAML)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"9007199254740993"}, compare.Extract(doc).IDs())
}

func TestDecodeNumbersCompareByValue(t *testing.T) {
	first, err := Decode(strings.NewReader(`{"graph": [{"nodes": [{"nodeid": 5, "size": 5.0, "ratio": 0.50, "exp": 1e2}]}]}`), FormatJSON)
	require.NoError(t, err)
	second, err := Decode(strings.NewReader("graph:\n  - nodes:\n      - {nodeid: 5.0, size: 5, ratio: 0.5, exp: 100}\n"), FormatYAML)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	res := compare.Compare(first, second, compare.Options{})
	assert.True(t, res.Identical())
	assert.Equal(t, []string{"5"}, compare.Extract(first).IDs())
}

func TestCanonicalNumber(t *testing.T) {
	tests := map[string]any{
		"5":                    json.Number("5"),
		"-0":                   json.Number("0"),
		"5.0":                  json.Number("5"),
		"-2.50":                json.Number("-2.5"),
		"1e2":                  json.Number("100"),
		"12345678901234567891": json.Number("12345678901234567891"),
	}
	for in, want := range tests {
		assert.Equal(t, want, canonicalNumber(in), in)
	}
}

func TestLoadFromStdin(t *testing.T) {
	doc, err := LoadFrom("-", strings.NewReader(modelJSON))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"101", "abc"}, compare.Extract(doc).IDs())

	_, err = LoadFrom("-", strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse stdin")
}
