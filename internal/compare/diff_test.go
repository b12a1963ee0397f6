package compare

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(summaries []NodeSummary) []string {
	out := make([]string, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.NodeID)
	}
	return out
}

func scenario() (NodeIndex, NodeIndex) {
	a := NodeIndex{
		"a": {"nodeid": "a", "name": "Alpha", "nodegroup_id": "g1"},
		"b": {"nodeid": "b", "name": "Beta", "nodegroup_id": "g1", "datatype": "string"},
	}
	b := NodeIndex{
		"b": {"nodeid": "b", "name": "Beta", "nodegroup_id": "g1", "datatype": "number"},
		"c": {"nodeid": "c", "name": "Gamma"},
	}
	return a, b
}

func TestDiffEndToEndScenario(t *testing.T) {
	a, b := scenario()

	res := Diff(a, b)
	assert.Equal(t, []string{"a"}, ids(res.OnlyInFirst))
	assert.Equal(t, []string{"c"}, ids(res.OnlyInSecond))
	assert.Equal(t, []string{"b"}, ids(res.PresentInBoth))
	require.Len(t, res.DifferingFields, 1)
	assert.Equal(t, map[string]FieldDiff{"datatype": {First: "string", Second: "number"}}, res.DifferingFields["b"])
	assert.Equal(t, Summary{
		TotalFirst:     2,
		TotalSecond:    2,
		OnlyFirst:      1,
		OnlySecond:     1,
		Common:         1,
		WithDifference: 1,
	}, res.Summary)
	assert.False(t, res.Identical())
	assert.True(t, res.Differs("b"))
	assert.False(t, res.Differs("a"))
}

func TestDiffSummaryRecords(t *testing.T) {
	a, b := scenario()

	res := Diff(a, b)
	assert.Equal(t, NodeSummary{NodeID: "a", Name: "Alpha", NodegroupID: "g1"}, res.OnlyInFirst[0])
	assert.Equal(t, NodeSummary{NodeID: "c", Name: "Gamma", NodegroupID: Unknown}, res.OnlyInSecond[0])
}

func TestDiffFieldCorrectness(t *testing.T) {
	a := NodeIndex{"1": {"nodeid": "1", "name": "X", "val": float64(5)}}
	b := NodeIndex{"1": {"nodeid": "1", "name": "X", "val": float64(7)}}

	res := Diff(a, b)
	require.Contains(t, res.DifferingFields, "1")
	assert.Equal(t, map[string]FieldDiff{"val": {First: float64(5), Second: float64(7)}}, res.DifferingFields["1"])
	assert.NotContains(t, res.DifferingFields["1"], "name")
}

func TestDiffMissingFieldIsNil(t *testing.T) {
	a := NodeIndex{"1": {"nodeid": "1", "extra": "x"}}
	b := NodeIndex{"1": {"nodeid": "1"}}

	res := Diff(a, b)
	assert.Equal(t, map[string]FieldDiff{"extra": {First: "x", Second: nil}}, res.DifferingFields["1"])
}

func TestDiffNullAndAbsentAreEqual(t *testing.T) {
	a := NodeIndex{"1": {"nodeid": "1", "alias": nil}}
	b := NodeIndex{"1": {"nodeid": "1"}}

	res := Diff(a, b)
	assert.Empty(t, res.DifferingFields)
	assert.Equal(t, []string{"1"}, ids(res.PresentInBoth))
	assert.True(t, res.Identical())
}

func TestDiffNestedValuesComparedWhole(t *testing.T) {
	a := NodeIndex{"1": {"nodeid": "1", "config": map[string]any{"x": float64(1), "y": []any{"a"}}}}
	b := NodeIndex{"1": {"nodeid": "1", "config": map[string]any{"x": float64(1), "y": []any{"b"}}}}

	res := Diff(a, b)
	require.Contains(t, res.DifferingFields["1"], "config")
	assert.Len(t, res.DifferingFields["1"], 1)
}

func TestDiffIsIdempotent(t *testing.T) {
	a, b := scenario()
	assert.Equal(t, Diff(a, b), Diff(a, b))
}

func TestDiffIsSymmetric(t *testing.T) {
	a, b := scenario()

	ab := Diff(a, b)
	ba := Diff(b, a)
	assert.Equal(t, ids(ab.OnlyInFirst), ids(ba.OnlyInSecond))
	assert.Equal(t, ids(ab.OnlyInSecond), ids(ba.OnlyInFirst))
	assert.Equal(t, ids(ab.PresentInBoth), ids(ba.PresentInBoth))
	assert.Equal(t, ab.Summary.Common, ba.Summary.Common)
	assert.Equal(t, ab.Summary.WithDifference, ba.Summary.WithDifference)

	for id, fields := range ab.DifferingFields {
		for name, d := range fields {
			assert.Equal(t, FieldDiff{First: d.Second, Second: d.First}, ba.DifferingFields[id][name])
		}
	}
}

func TestDiffIsComplete(t *testing.T) {
	a := NodeIndex{"1": {}, "2": {}, "3": {"x": true}, "10": {}}
	b := NodeIndex{"3": {"x": false}, "4": {}, "10": {}, "b": {}}

	res := Diff(a, b)
	var all []string
	all = append(all, ids(res.OnlyInFirst)...)
	all = append(all, ids(res.OnlyInSecond)...)
	all = append(all, ids(res.PresentInBoth)...)
	sort.Strings(all)
	assert.Equal(t, []string{"1", "10", "2", "3", "4", "b"}, all)
	// lexicographic, not numeric
	assert.Equal(t, []string{"1", "2"}, ids(res.OnlyInFirst))
	assert.Equal(t, []string{"10", "3"}, ids(res.PresentInBoth))
}

func TestDiffEmpty(t *testing.T) {
	res := Diff(NodeIndex{}, NodeIndex{})
	assert.Empty(t, res.OnlyInFirst)
	assert.Empty(t, res.OnlyInSecond)
	assert.Empty(t, res.PresentInBoth)
	assert.Empty(t, res.DifferingFields)
	assert.Equal(t, Summary{}, res.Summary)
}

func TestCompareDeterministicUnderReordering(t *testing.T) {
	nodes := []any{
		map[string]any{"nodeid": "n1", "name": "one"},
		map[string]any{"nodeid": "n2", "name": "two"},
		map[string]any{"nodeid": "n3", "name": "three"},
		map[string]any{"nodeid": "n4", "name": "four"},
	}
	other := map[string]any{"graph": []any{map[string]any{"nodes": []any{
		map[string]any{"nodeid": "n2", "name": "TWO"},
		map[string]any{"nodeid": "n5"},
	}}}}

	want := Compare(map[string]any{"graph": []any{map[string]any{"nodes": nodes}}}, other, Options{Normalize: true})

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]any(nil), nodes...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		got := Compare(map[string]any{"graph": []any{map[string]any{"nodes": shuffled}}}, other, Options{Normalize: true})
		assert.Equal(t, want, got)
	}
}

func TestCompareNormalizesBothSides(t *testing.T) {
	first := decode(t, `{"graph": [{"nodes": [{"nodeid": 7, "nodegroup_id": 2, "name": "N"}]}]}`)
	second := decode(t, `{"graph": [{"nodes": [{"nodeid": "7", "nodegroup_id": "2", "name": "N"}]}]}`)

	res := Compare(first, second, Options{Normalize: true})
	assert.True(t, res.Identical())
	assert.Equal(t, 1, res.Summary.Common)

	raw := Compare(first, second, Options{})
	assert.Equal(t, 1, raw.Summary.Common)
	assert.Equal(t, map[string]FieldDiff{
		"nodegroup_id": {First: float64(2), Second: "2"},
		"nodeid":       {First: float64(7), Second: "7"},
	}, raw.DifferingFields["7"])
}

func TestSortedFields(t *testing.T) {
	fields := map[string]FieldDiff{"z": {}, "a": {}, "m": {}}
	assert.Equal(t, []string{"a", "m", "z"}, SortedFields(fields))
}
