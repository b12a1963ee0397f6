package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/nodeprism/internal/compare"
	"github.com/CaptShanks/nodeprism/internal/report"
)

// ForceColor makes print mode emit colors even when stdout is not a TTY
func ForceColor() {
	lipgloss.SetColorProfile(termenv.TrueColor)
}

// PrintResult writes a colored, non-interactive rendering of a result
func PrintResult(w io.Writer, res *compare.Result) {
	fmt.Fprintln(w, headerStyle.Render("◆ nodeprism - Model Node Comparison"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, summaryLine(res))
	fmt.Fprintln(w)

	if res.Identical() {
		fmt.Fprintln(w, mutedColor.Render("No differences: both files hold the same nodes with equal fields."))
		return
	}

	for _, r := range BuildRows(res) {
		if r.Status == StatusSame {
			continue
		}
		printRow(w, r)
	}
}

func summaryLine(res *compare.Result) string {
	s := res.Summary
	count := func(n int, st Status) string {
		return StatusStyle(st).Render(fmt.Sprintf("%d", n))
	}
	return fmt.Sprintf("Nodes: %d vs %d  %s only in first, %s only in second, %s changed, %s in both",
		s.TotalFirst, s.TotalSecond,
		count(s.OnlyFirst, StatusOnlyFirst),
		count(s.OnlySecond, StatusOnlySecond),
		count(s.WithDifference, StatusChanged),
		textStyle.Render(fmt.Sprintf("%d", s.Common)),
	)
}

func printRow(w io.Writer, r Row) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		statusSymbolStyled(r.Status),
		StatusStyle(r.Status).Render(r.Node.NodeID),
		textStyle.Render(r.Node.Name),
		mutedColor.Render("["+report.GroupLabel(r.Node.NodegroupID)+"]"),
	)
	for _, field := range compare.SortedFields(r.Fields) {
		d := r.Fields[field]
		fmt.Fprintln(w, fieldChangeLine("    ", field, d))
	}
}

// fieldChangeLine renders "field: old → new" with a JSON line diff appended
// for nested values.
func fieldChangeLine(indent, field string, d compare.FieldDiff) string {
	if IsScalar(d.First) && IsScalar(d.Second) {
		return indent + attrNameStyle.Render(field+":") + " " +
			attrOldValueStyle.Render(report.FormatValue(d.First)) +
			mutedColor.Render(" → ") +
			attrNewValueStyle.Render(report.FormatValue(d.Second))
	}

	var b strings.Builder
	b.WriteString(indent + attrNameStyle.Render(field+":"))
	diff := ContextDiff(DiffValues(d.First, d.Second), 3)
	for _, l := range diff {
		b.WriteString("\n")
		b.WriteString(indent + "  " + diffLineStyled(l))
	}
	return b.String()
}

func diffLineStyled(l DiffLine) string {
	switch l.Op {
	case DiffDelete:
		return attrOldValueStyle.Render("- " + l.Text)
	case DiffInsert:
		return attrNewValueStyle.Render("+ " + l.Text)
	case DiffSeparator:
		return mutedColor.Render("@@ " + l.Text + " @@")
	default:
		return mutedColor.Render("  " + l.Text)
	}
}
