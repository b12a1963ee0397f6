package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CaptShanks/nodeprism/internal/history"
)

var (
	pickerSearchKey = key.NewBinding(key.WithKeys("/"))
	pickerQuitKey   = key.NewBinding(key.WithKeys("q", "ctrl+c"))
	pickerEscKey    = key.NewBinding(key.WithKeys("esc"))
	pickerSelectKey = key.NewBinding(key.WithKeys("enter", " "))
	pickerDownKey   = key.NewBinding(key.WithKeys("j", "down"))
	pickerUpKey     = key.NewBinding(key.WithKeys("k", "up"))
	pickerTopKey    = key.NewBinding(key.WithKeys("g"))
	pickerBottomKey = key.NewBinding(key.WithKeys("G"))
)

const pickerWidth = 80

// PickerModel is a TUI for selecting a history entry
type PickerModel struct {
	allEntries []history.Entry
	filtered   []history.Entry
	cursor     int
	selected   string // path of the selected entry
	quitting   bool
	height     int
	width      int

	searching   bool
	searchQuery string
}

// NewPickerModel creates a new history picker
func NewPickerModel(entries []history.Entry) PickerModel {
	return PickerModel{
		allEntries: entries,
		filtered:   entries,
	}
}

// SelectedPath returns the path of the selected entry (empty if cancelled)
func (m PickerModel) SelectedPath() string {
	return m.selected
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

// filterEntries keeps entries matching every space-separated term of the query
func (m *PickerModel) filterEntries() {
	terms := strings.Fields(strings.ToLower(m.searchQuery))
	if len(terms) == 0 {
		m.filtered = m.allEntries
		return
	}

	var results []history.Entry
	for _, entry := range m.allEntries {
		searchable := strings.ToLower(
			entry.Label + " " +
				entry.Status + " " +
				entry.Timestamp.Format("2006-01-02 15:04") + " " +
				entry.Filename,
		)
		allMatch := true
		for _, term := range terms {
			if !strings.Contains(searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			results = append(results, entry)
		}
	}

	m.filtered = results
	if m.cursor >= len(m.filtered) {
		m.cursor = max(0, len(m.filtered)-1)
	}
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}

		switch {
		case key.Matches(msg, pickerSearchKey):
			m.searching = true
		case key.Matches(msg, pickerQuitKey):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, pickerEscKey):
			if m.searchQuery != "" {
				m.searchQuery = ""
				m.filterEntries()
				return m, nil
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, pickerSelectKey):
			if len(m.filtered) > 0 {
				m.selected = m.filtered[m.cursor].Path
			}
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, pickerDownKey):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
		case key.Matches(msg, pickerUpKey):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, pickerTopKey):
			m.cursor = 0
		case key.Matches(msg, pickerBottomKey):
			m.cursor = max(0, len(m.filtered)-1)
		}
	}
	return m, nil
}

func (m PickerModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.searching = false
		m.searchQuery = ""
		m.filterEntries()
	case tea.KeyEnter:
		m.searching = false
	case tea.KeyBackspace:
		if len(m.searchQuery) > 0 {
			m.searchQuery = m.searchQuery[:len(m.searchQuery)-1]
			m.filterEntries()
		}
	case tea.KeyRunes:
		m.searchQuery += string(msg.Runes)
		m.filterEntries()
	case tea.KeySpace:
		m.searchQuery += " "
		m.filterEntries()
	}
	return m, nil
}

// historyStatusStyle colors a history status like the matching node status
func historyStatusStyle(status string) (string, lipgloss.Style) {
	switch status {
	case history.StatusIdentical:
		return "[IDENTICAL]", lipgloss.NewStyle().Foreground(colors.onlySecond)
	case history.StatusDiffers:
		return "[DIFFERS]", lipgloss.NewStyle().Foreground(colors.changed)
	default:
		return "", lipgloss.NewStyle()
	}
}

// FormatEntryColored formats a history entry for `history list`
func FormatEntryColored(e history.Entry) string {
	status, style := historyStatusStyle(e.Status)
	return fmt.Sprintf("%s  %-40s  ",
		e.Timestamp.Format("2006-01-02 15:04:05"),
		history.TruncateLabel(e.Label, 40),
	) + style.Render(status)
}

func (m PickerModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Select a saved comparison to view"))
	b.WriteString("\n\n")

	columnStyle := mutedColor.Bold(true)
	b.WriteString(columnStyle.Render("     TIMESTAMP            COMPARISON                                STATUS"))
	b.WriteString("\n")
	b.WriteString(columnStyle.Render(strings.Repeat("─", pickerWidth)))
	b.WriteString("\n")

	if len(m.filtered) == 0 {
		empty := mutedColor.Italic(true)
		if m.searchQuery != "" {
			b.WriteString(empty.Render(fmt.Sprintf("  No results for '%s'", m.searchQuery)))
		} else {
			b.WriteString(empty.Render("  No history entries"))
		}
		b.WriteString("\n")
	}

	for i, entry := range m.filtered {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		status, statusStyle := historyStatusStyle(entry.Status)
		base := fmt.Sprintf("%s%2d  %s  %-40s  ",
			cursor,
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			history.TruncateLabel(entry.Label, 40),
		)

		if i == m.cursor {
			line := base + status
			if n := len([]rune(line)); n < pickerWidth {
				line += strings.Repeat(" ", pickerWidth-n)
			}
			b.WriteString(selectedStyle.Foreground(colors.text).Bold(true).Render(line))
		} else {
			b.WriteString(base)
			b.WriteString(statusStyle.Render(status))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.searching:
		b.WriteString(searchStyle.Render("/ "))
		b.WriteString(m.searchQuery)
		b.WriteString("█")
	case m.searchQuery != "":
		b.WriteString(searchStyle.Render(fmt.Sprintf("Filter: %s", m.searchQuery)))
		b.WriteString(mutedColor.Render(fmt.Sprintf("  (%d/%d)", len(m.filtered), len(m.allEntries))))
		b.WriteString("\n")
		b.WriteString(mutedColor.Render("j/k: navigate  enter: select  esc: clear filter  q: cancel"))
	default:
		b.WriteString(mutedColor.Render("j/k: navigate  /: search  enter: select  q: cancel"))
	}

	return b.String()
}

// RunPicker runs the interactive history picker and returns the selected path
func RunPicker(entries []history.Entry) (string, error) {
	finalModel, err := tea.NewProgram(NewPickerModel(entries)).Run()
	if err != nil {
		return "", err
	}
	return finalModel.(PickerModel).SelectedPath(), nil
}
