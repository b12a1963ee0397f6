package tui

import (
	"encoding/json"
	"strings"

	"github.com/CaptShanks/nodeprism/internal/report"
)

// DiffOp represents the type of a diff operation
type DiffOp int

const (
	DiffEqual     DiffOp = iota
	DiffInsert           // line exists only in the second value
	DiffDelete           // line exists only in the first value
	DiffSeparator        // collapsed run of equal lines
)

// DiffLine pairs an operation with its text content
type DiffLine struct {
	Op   DiffOp
	Text string
}

const maxLCSLines = 800

// ValueLines renders a field value as indented JSON lines. Scalars produce
// a single line.
func ValueLines(v any) []string {
	if v == nil {
		return []string{"null"}
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return []string{report.FormatValue(v)}
	}
	return strings.Split(string(b), "\n")
}

// IsScalar reports whether a value renders on a single line
func IsScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	default:
		return true
	}
}

// DiffValues computes a line diff between the JSON renderings of two values
func DiffValues(first, second any) []DiffLine {
	return ComputeDiff(ValueLines(first), ValueLines(second))
}

// ComputeDiff computes a line-level diff between old and new. The common
// prefix and suffix are matched directly and only the changed middle goes
// through LCS; a middle larger than maxLCSLines is emitted as a full
// delete followed by a full insert.
func ComputeDiff(oldLines, newLines []string) []DiffLine {
	m, n := len(oldLines), len(newLines)

	prefix := 0
	for prefix < m && prefix < n && oldLines[prefix] == newLines[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < m-prefix && suffix < n-prefix &&
		oldLines[m-1-suffix] == newLines[n-1-suffix] {
		suffix++
	}

	result := make([]DiffLine, 0, m+n)
	for _, l := range oldLines[:prefix] {
		result = append(result, DiffLine{Op: DiffEqual, Text: l})
	}

	oldCore := oldLines[prefix : m-suffix]
	newCore := newLines[prefix : n-suffix]
	if len(oldCore)+len(newCore) <= maxLCSLines {
		result = append(result, lcs(oldCore, newCore)...)
	} else {
		for _, l := range oldCore {
			result = append(result, DiffLine{Op: DiffDelete, Text: l})
		}
		for _, l := range newCore {
			result = append(result, DiffLine{Op: DiffInsert, Text: l})
		}
	}

	for _, l := range oldLines[m-suffix:] {
		result = append(result, DiffLine{Op: DiffEqual, Text: l})
	}
	return result
}

func lcs(oldLines, newLines []string) []DiffLine {
	m, n := len(oldLines), len(newLines)

	table := make([][]int, m+1)
	for i := range table {
		table[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case oldLines[i] == newLines[j]:
				table[i][j] = table[i+1][j+1] + 1
			case table[i+1][j] >= table[i][j+1]:
				table[i][j] = table[i+1][j]
			default:
				table[i][j] = table[i][j+1]
			}
		}
	}

	// Walk forward so deletions come before insertions at each change
	var result []DiffLine
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && oldLines[i] == newLines[j]:
			result = append(result, DiffLine{Op: DiffEqual, Text: oldLines[i]})
			i++
			j++
		case i < m && (j == n || table[i+1][j] >= table[i][j+1]):
			result = append(result, DiffLine{Op: DiffDelete, Text: oldLines[i]})
			i++
		default:
			result = append(result, DiffLine{Op: DiffInsert, Text: newLines[j]})
			j++
		}
	}
	return result
}

// ContextDiff collapses runs of DiffEqual lines, keeping only contextSize
// lines around each change. Collapsed regions are replaced by a single
// DiffSeparator entry. If the entire diff is equal, returns nil.
func ContextDiff(diff []DiffLine, contextSize int) []DiffLine {
	if contextSize < 0 {
		contextSize = 3
	}

	keep := make([]bool, len(diff))
	changed := false
	for i, d := range diff {
		if d.Op == DiffEqual {
			continue
		}
		changed = true
		for k := max(0, i-contextSize); k <= min(len(diff)-1, i+contextSize); k++ {
			keep[k] = true
		}
	}
	if !changed {
		return nil
	}

	var result []DiffLine
	inGap := false
	for i, d := range diff {
		if !keep[i] {
			inGap = true
			continue
		}
		if inGap {
			result = append(result, DiffLine{Op: DiffSeparator, Text: "···"})
			inGap = false
		}
		result = append(result, d)
	}
	return result
}
