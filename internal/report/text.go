package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/CaptShanks/nodeprism/internal/compare"
)

// GroupLabel is the bracketed nodegroup shown after every node line
func GroupLabel(nodegroupID string) string {
	return "NODE_GROUP_ID: " + nodegroupID
}

// NodeLine formats a node summary as a single report line
func NodeLine(n compare.NodeSummary) string {
	return fmt.Sprintf("Node ID - %s - Node name - %s - [%s]", n.NodeID, n.Name, GroupLabel(n.NodegroupID))
}

func nodeList(nodes []compare.NodeSummary) string {
	lines := make([]string, len(nodes))
	for i, n := range nodes {
		lines[i] = NodeLine(n)
	}
	return strings.Join(lines, "\n")
}

// FormatValue renders a field value for the text report
func FormatValue(v any) string {
	if v == nil {
		return "null"
	}
	if s, ok := v.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	s, _ := compare.Stringify(v)
	return s
}

// WriteText writes the human readable report
func WriteText(w io.Writer, res *compare.Result, opts Options) error {
	s := res.Summary
	text := fmt.Sprintf(`Model JSON Node Comparison

Summary:
--------
Total nodes in file 1: %d
Total nodes in file 2: %d
Nodes only in file 1: %d
Nodes only in file 2: %d
Nodes in both files: %d
Nodes with differences: %d

Nodes only in first file:
------------------------
%s

Nodes only in second file:
-------------------------
%s

Nodes present in both files:
--------------------------
%s
`,
		s.TotalFirst, s.TotalSecond, s.OnlyFirst, s.OnlySecond, s.Common, s.WithDifference,
		nodeList(res.OnlyInFirst),
		nodeList(res.OnlyInSecond),
		nodeList(res.PresentInBoth),
	)

	if opts.Details {
		text += "\n" + detailsSection(res)
	}

	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func detailsSection(res *compare.Result) string {
	var b strings.Builder
	b.WriteString("Field differences:\n")
	b.WriteString("------------------\n")
	for _, n := range res.PresentInBoth {
		fields, ok := res.DifferingFields[n.NodeID]
		if !ok {
			continue
		}
		b.WriteString(NodeLine(n))
		b.WriteString("\n")
		for _, name := range compare.SortedFields(fields) {
			d := fields[name]
			fmt.Fprintf(&b, "    %s: %s -> %s\n", name, FormatValue(d.First), FormatValue(d.Second))
		}
	}
	return b.String()
}
