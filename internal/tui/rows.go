package tui

import (
	"sort"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

// Status classifies a node in a comparison result
type Status string

const (
	StatusOnlyFirst  Status = "only-first"
	StatusOnlySecond Status = "only-second"
	StatusChanged    Status = "changed"
	StatusSame       Status = "identical"
)

// statusOrder defines sort order for statuses (differences first)
var statusOrder = map[Status]int{
	StatusChanged:    0,
	StatusOnlyFirst:  1,
	StatusOnlySecond: 2,
	StatusSame:       3,
}

// Row is one node line of the browser
type Row struct {
	Node   compare.NodeSummary
	Status Status
	Fields map[string]compare.FieldDiff // nil unless Status is StatusChanged
}

// BuildRows flattens a result into rows ordered by nodeid
func BuildRows(res *compare.Result) []Row {
	rows := make([]Row, 0, len(res.OnlyInFirst)+len(res.OnlyInSecond)+len(res.PresentInBoth))
	for _, n := range res.OnlyInFirst {
		rows = append(rows, Row{Node: n, Status: StatusOnlyFirst})
	}
	for _, n := range res.OnlyInSecond {
		rows = append(rows, Row{Node: n, Status: StatusOnlySecond})
	}
	for _, n := range res.PresentInBoth {
		if fields, ok := res.DifferingFields[n.NodeID]; ok {
			rows = append(rows, Row{Node: n, Status: StatusChanged, Fields: fields})
		} else {
			rows = append(rows, Row{Node: n, Status: StatusSame})
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Node.NodeID < rows[j].Node.NodeID
	})
	return rows
}

func statusDescription(s Status) string {
	switch s {
	case StatusOnlyFirst:
		return "only in first file"
	case StatusOnlySecond:
		return "only in second file"
	case StatusChanged:
		return "fields differ"
	case StatusSame:
		return "identical"
	default:
		return ""
	}
}
