package compare

import (
	"reflect"
	"sort"
)

// Diff partitions the nodeids of a and b into only-in-first, only-in-second
// and present-in-both, in ascending nodeid order, and records the differing
// fields of every shared node whose records are not equal. Summary records
// of shared nodes are taken from a.
func Diff(a, b NodeIndex) *Result {
	res := &Result{
		OnlyInFirst:     []NodeSummary{},
		OnlyInSecond:    []NodeSummary{},
		PresentInBoth:   []NodeSummary{},
		DifferingFields: map[string]map[string]FieldDiff{},
	}

	for _, id := range unionKeys(a, b) {
		nodeA, inA := a[id]
		nodeB, inB := b[id]

		switch {
		case inA && !inB:
			res.OnlyInFirst = append(res.OnlyInFirst, summarize(id, nodeA))
		case inB && !inA:
			res.OnlyInSecond = append(res.OnlyInSecond, summarize(id, nodeB))
		default:
			res.PresentInBoth = append(res.PresentInBoth, summarize(id, nodeA))
			if reflect.DeepEqual(nodeA, nodeB) {
				continue
			}
			if fields := DiffFields(nodeA, nodeB); len(fields) > 0 {
				res.DifferingFields[id] = fields
			}
		}
	}

	res.Summary = Summary{
		TotalFirst:     len(a),
		TotalSecond:    len(b),
		OnlyFirst:      len(res.OnlyInFirst),
		OnlySecond:     len(res.OnlyInSecond),
		Common:         len(res.PresentInBoth),
		WithDifference: len(res.DifferingFields),
	}
	return res
}

// DiffFields compares two node records field by field over the union of
// their field names. A missing field reads as nil, so a field absent on one
// side and null on the other is not a difference. Nested values are
// compared as a whole.
func DiffFields(a, b Node) map[string]FieldDiff {
	diffs := map[string]FieldDiff{}
	for _, field := range unionFields(a, b) {
		va, vb := a[field], b[field]
		if reflect.DeepEqual(va, vb) {
			continue
		}
		diffs[field] = FieldDiff{First: va, Second: vb}
	}
	return diffs
}

// SortedFields returns the field names of a differing-fields entry in order
func SortedFields(fields map[string]FieldDiff) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func summarize(id string, node Node) NodeSummary {
	return NodeSummary{
		NodeID:      id,
		Name:        displayField(node, FieldName),
		NodegroupID: displayField(node, FieldNodegroupID),
	}
}

func unionKeys(a, b NodeIndex) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for id := range a {
		seen[id] = struct{}{}
	}
	for id := range b {
		seen[id] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for id := range seen {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}

func unionFields(a, b Node) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	fields := make([]string, 0, len(seen))
	for k := range seen {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
