package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/CaptShanks/nodeprism/internal/compare"
	"github.com/CaptShanks/nodeprism/internal/report"
	"github.com/CaptShanks/nodeprism/internal/updater"
)

// Options configures the result browser
type Options struct {
	// Title names the compared files in the header
	Title string
	// Checker runs the background update check; nil disables it
	Checker *updater.Checker
}

// Model represents the TUI state
type Model struct {
	result        *compare.Result
	rows          []Row
	title         string
	cursor        int
	expanded      map[int]bool
	viewport      viewport.Model
	ready         bool
	width         int
	height        int
	searching     bool
	searchInput   textinput.Model
	searchQuery   string
	searchMatches []int
	currentMatch  int
	pendingG      bool  // 'g' pressed, waiting for second 'g'
	rowLineStarts []int // rendered line offset per displayed row
	contentLines  int   // total rendered content lines (excluding padding)

	// Status filter
	statusFilters map[Status]bool // true = show rows with this status
	filtering     bool
	filterCursor  int

	// Sort
	sortOrder  SortOrder
	sorting    bool
	sortCursor int

	// Update nudge
	checker         *updater.Checker
	updateAvailable string
}

// UpdateAvailableMsg is sent when an update check finds a newer version.
type UpdateAvailableMsg struct {
	Version string
}

// SortOrder defines how rows are ordered
type SortOrder string

const (
	SortByNodeID    SortOrder = "nodeid"
	SortByName      SortOrder = "name"
	SortByNodegroup SortOrder = "nodegroup"
	SortByStatus    SortOrder = "status"
)

// sortOptions is the ordered list of sort choices for the picker
var sortOptions = []SortOrder{SortByNodeID, SortByName, SortByNodegroup, SortByStatus}

// filterableStatuses is the ordered list of statuses available for filtering
var filterableStatuses = []Status{StatusChanged, StatusOnlyFirst, StatusOnlySecond, StatusSame}

// NewModel creates a browser over a comparison result
func NewModel(res *compare.Result, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "Search..."
	ti.CharLimit = 100
	ti.Width = 40

	return Model{
		result:        res,
		rows:          BuildRows(res),
		title:         opts.Title,
		expanded:      make(map[int]bool),
		searchInput:   ti,
		searchMatches: []int{},
		sortOrder:     SortByNodeID,
		checker:       opts.Checker,
	}
}

// Run starts the browser in the alternate screen and blocks until quit
func Run(res *compare.Result, opts Options) error {
	p := tea.NewProgram(NewModel(res, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// filteredRows returns indices into rows that pass the status filter.
// An empty filter shows everything.
func (m *Model) filteredRows() []int {
	var indices []int
	for i, r := range m.rows {
		if len(m.statusFilters) == 0 || m.statusFilters[r.Status] {
			indices = append(indices, i)
		}
	}
	return indices
}

// sortedRows returns filtered indices sorted by the current sort order.
func (m *Model) sortedRows() []int {
	filtered := m.filteredRows()
	if m.sortOrder == SortByNodeID || m.sortOrder == "" {
		return filtered
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		ri := m.rows[filtered[i]]
		rj := m.rows[filtered[j]]
		switch m.sortOrder {
		case SortByName:
			if ri.Node.Name != rj.Node.Name {
				return ri.Node.Name < rj.Node.Name
			}
		case SortByNodegroup:
			if ri.Node.NodegroupID != rj.Node.NodegroupID {
				return ri.Node.NodegroupID < rj.Node.NodegroupID
			}
		case SortByStatus:
			if oi, oj := statusOrder[ri.Status], statusOrder[rj.Status]; oi != oj {
				return oi < oj
			}
		}
		return ri.Node.NodeID < rj.Node.NodeID
	})
	return filtered
}

// displayedRows returns the row indices to display: the sorted rows, narrowed
// to search matches when a query is active.
func (m *Model) displayedRows() []int {
	sorted := m.sortedRows()
	if m.searchQuery == "" {
		return sorted
	}
	result := make([]int, 0, len(m.searchMatches))
	for _, displayIdx := range m.searchMatches {
		if displayIdx >= 0 && displayIdx < len(sorted) {
			result = append(result, sorted[displayIdx])
		}
	}
	return result
}

// Init starts the update check when a checker is configured
func (m Model) Init() tea.Cmd {
	if m.checker == nil || m.checker.CurrentVersion == "" {
		return nil
	}
	return checkUpdateCmd(m.checker)
}

// checkUpdateCmd runs an async update check and sends UpdateAvailableMsg if an update is available.
func checkUpdateCmd(c *updater.Checker) tea.Cmd {
	return func() tea.Msg {
		latest, hasUpdate, err := c.CheckLatestWithCache(time.Now())
		if err != nil || !hasUpdate {
			return nil
		}
		return UpdateAvailableMsg{Version: latest}
	}
}

func (m Model) headerHeight() int {
	return 4 // title + summary + blank line
}

func (m Model) footerHeight() int {
	if m.updateAvailable != "" {
		return 4 // help + nudge
	}
	return 3
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case UpdateAvailableMsg:
		m.updateAvailable = msg.Version
		if m.ready && m.height > 0 {
			m.viewport.Height = m.height - m.headerHeight() - m.footerHeight()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, msg.Height-m.headerHeight()-m.footerHeight())
			m.viewport.YPosition = m.headerHeight()
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = msg.Height - m.headerHeight() - m.footerHeight()
		}
		m.updateViewportContent()

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		if m.sorting {
			return m.handleSortKey(msg)
		}
		if !m.searching {
			return m.handleNormalKey(msg)
		}
		switch msg.String() {
		case "enter":
			m.searching = false
			m.searchQuery = m.searchInput.Value()
			m.performSearch()
			m.clampCursorAndRefreshSearch()
			m.updateViewportContent()
		case "esc":
			m.searching = false
			m.searchInput.SetValue("")
			m.searchQuery = ""
			m.searchMatches = []int{}
			m.clampCursorAndRefreshSearch()
			m.updateViewportContent()
		case "up":
			m, _, _ = handleKeyUp(m)
		case "down":
			m, _, _ = handleKeyDown(m)
		default:
			m.searchInput, cmd = m.searchInput.Update(msg)
			m.searchQuery = m.searchInput.Value()
			m.performSearch()
			m.clampCursorAndRefreshSearch()
			m.updateViewportContent()
			cmds = append(cmds, cmd)
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// normalKeyHandler handles a single key in normal mode
type normalKeyHandler func(m Model) (Model, tea.Cmd, bool)

var normalKeyHandlers = map[string]normalKeyHandler{
	"q":         func(m Model) (Model, tea.Cmd, bool) { return m, tea.Quit, true },
	"ctrl+c":    func(m Model) (Model, tea.Cmd, bool) { return m, tea.Quit, true },
	"up":        handleKeyUp,
	"k":         handleKeyUp,
	"down":      handleKeyDown,
	"j":         handleKeyDown,
	"enter":     handleKeyEnter,
	" ":         handleKeyEnter,
	"e":         handleKeyExpandAll,
	"c":         handleKeyCollapseAll,
	"f":         handleKeyFilter,
	"s":         handleKeySort,
	"/":         handleKeySearch,
	"n":         handleKeyNextMatch,
	"N":         handleKeyPrevMatch,
	"esc":       handleKeyEsc,
	"backspace": handleKeyCollapseCurrent,
	"h":         handleKeyCollapseCurrent,
	"left":      handleKeyCollapseCurrent,
	"l":         handleKeyExpandCurrent,
	"right":     handleKeyExpandCurrent,
	"d":         handleKeyHalfPageDown,
	"ctrl+d":    handleKeyHalfPageDown,
	"u":         handleKeyHalfPageUp,
	"ctrl+u":    handleKeyHalfPageUp,
	"g":         handleKeyG,
	"G":         handleKeyBottom,
	"pgup":      handleKeyPgUp,
	"pgdown":    handleKeyPgDown,
}

// handleNormalKey handles key presses in normal (non-search) mode
func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "g" {
		m.pendingG = false
	}
	if handler, ok := normalKeyHandlers[key]; ok {
		newM, cmd, _ := handler(m)
		return newM, cmd
	}
	return m, nil
}

func handleKeyUp(m Model) (Model, tea.Cmd, bool) {
	if m.cursor > 0 {
		m.cursor--
		m.updateViewportContent()
		m.ensureCursorVisible()
	} else {
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	}
	return m, nil, true
}

func handleKeyDown(m Model) (Model, tea.Cmd, bool) {
	if m.cursor < len(m.displayedRows())-1 {
		m.cursor++
		m.updateViewportContent()
		m.ensureCursorVisible()
	} else {
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	}
	return m, nil, true
}

// currentRow returns the row index under the cursor, or -1
func (m *Model) currentRow() int {
	displayed := m.displayedRows()
	if m.cursor < 0 || m.cursor >= len(displayed) {
		return -1
	}
	return displayed[m.cursor]
}

func handleKeyEnter(m Model) (Model, tea.Cmd, bool) {
	if idx := m.currentRow(); idx >= 0 {
		m.expanded[idx] = !m.expanded[idx]
	}
	m.updateViewportContent()
	m.scrollForExpanded()
	return m, nil, true
}

func handleKeyExpandCurrent(m Model) (Model, tea.Cmd, bool) {
	if idx := m.currentRow(); idx >= 0 {
		m.expanded[idx] = true
	}
	m.updateViewportContent()
	m.scrollForExpanded()
	return m, nil, true
}

func handleKeyCollapseCurrent(m Model) (Model, tea.Cmd, bool) {
	if idx := m.currentRow(); idx >= 0 {
		m.expanded[idx] = false
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleKeyExpandAll(m Model) (Model, tea.Cmd, bool) {
	m.setAllExpanded(true)
	return m, nil, true
}

func handleKeyCollapseAll(m Model) (Model, tea.Cmd, bool) {
	m.setAllExpanded(false)
	return m, nil, true
}

func handleKeyFilter(m Model) (Model, tea.Cmd, bool) {
	m.filtering = true
	m.filterCursor = 0
	if m.statusFilters == nil {
		m.statusFilters = make(map[Status]bool)
	}
	return m, nil, true
}

func handleKeySort(m Model) (Model, tea.Cmd, bool) {
	m.sorting = true
	m.sortCursor = 0
	for i, opt := range sortOptions {
		if opt == m.sortOrder {
			m.sortCursor = i
			break
		}
	}
	return m, nil, true
}

func handleKeySearch(m Model) (Model, tea.Cmd, bool) {
	m.searching = true
	m.searchInput.Focus()
	return m, textinput.Blink, true
}

func handleKeyNextMatch(m Model) (Model, tea.Cmd, bool) {
	m.stepMatch(1)
	return m, nil, true
}

func handleKeyPrevMatch(m Model) (Model, tea.Cmd, bool) {
	m.stepMatch(-1)
	return m, nil, true
}

func handleKeyEsc(m Model) (Model, tea.Cmd, bool) {
	if len(m.statusFilters) > 0 {
		m.statusFilters = nil
		m.clampCursorAndRefreshSearch()
		m.updateViewportContent()
	} else {
		m.clearSearch()
	}
	return m, nil, true
}

func handleKeyHalfPageDown(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
	return m, nil, true
}

func handleKeyHalfPageUp(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(max(0, m.viewport.YOffset-m.viewport.Height/2))
	return m, nil, true
}

// handleKeyG jumps to the top on the second consecutive 'g'
func handleKeyG(m Model) (Model, tea.Cmd, bool) {
	if !m.pendingG {
		m.pendingG = true
		return m, nil, true
	}
	m.cursor = 0
	m.pendingG = false
	m.updateViewportContent()
	m.viewport.GotoTop()
	return m, nil, true
}

func handleKeyBottom(m Model) (Model, tea.Cmd, bool) {
	if n := len(m.displayedRows()); n > 0 {
		m.cursor = n - 1
	}
	m.pendingG = false
	m.updateViewportContent()
	m.ensureCursorVisible()
	return m, nil, true
}

func handleKeyPgUp(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
	return m, nil, true
}

func handleKeyPgDown(m Model) (Model, tea.Cmd, bool) {
	m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	return m, nil, true
}

// handleFilterKey handles key presses in filter picker mode.
// Space toggles, Enter applies and closes, Esc clears and closes.
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.statusFilters = nil
		m.filtering = false
		m.clampCursorAndRefreshSearch()
		m.updateViewportContent()
	case "enter":
		m.filtering = false
		m.clampCursorAndRefreshSearch()
		m.updateViewportContent()
	case "up", "k":
		if m.filterCursor > 0 {
			m.filterCursor--
		}
	case "down", "j":
		if m.filterCursor < len(filterableStatuses)-1 {
			m.filterCursor++
		}
	case " ":
		s := filterableStatuses[m.filterCursor]
		m.statusFilters[s] = !m.statusFilters[s]
	case "a":
		for _, s := range filterableStatuses {
			m.statusFilters[s] = true
		}
	case "c":
		m.statusFilters = make(map[Status]bool)
	}
	return m, nil
}

// handleSortKey handles key presses in sort picker mode
func (m Model) handleSortKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.sorting = false
		m.updateViewportContent()
	case "enter", " ":
		m.sortOrder = sortOptions[m.sortCursor]
		m.sorting = false
		m.clampCursorAndRefreshSearch()
		m.updateViewportContent()
	case "up", "k":
		if m.sortCursor > 0 {
			m.sortCursor--
		}
	case "down", "j":
		if m.sortCursor < len(sortOptions)-1 {
			m.sortCursor++
		}
	}
	return m, nil
}

// clampCursorAndRefreshSearch clamps cursor to valid range after filter/sort change and re-runs search
func (m *Model) clampCursorAndRefreshSearch() {
	if m.searchQuery != "" {
		m.performSearch()
	}
	if n := len(m.displayedRows()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

func (m *Model) setAllExpanded(v bool) {
	for _, idx := range m.displayedRows() {
		m.expanded[idx] = v
	}
	m.updateViewportContent()
	m.ensureCursorVisible()
}

// stepMatch moves the cursor through search matches, wrapping around
func (m *Model) stepMatch(delta int) {
	if m.searchQuery == "" || len(m.searchMatches) == 0 {
		return
	}
	n := len(m.displayedRows())
	m.currentMatch = ((m.currentMatch+delta)%n + n) % n
	m.cursor = m.currentMatch
	m.updateViewportContent()
	m.ensureCursorVisible()
}

func (m *Model) clearSearch() {
	m.searchQuery = ""
	m.searchMatches = []int{}
	m.searchInput.SetValue("")
	m.updateViewportContent()
}

// fuzzyMatch returns true if all characters in query appear in text in order
// (not necessarily consecutive). E.g. "rsrc" matches "resource".
func fuzzyMatch(text, query string) bool {
	text = strings.ToLower(text)
	query = strings.ToLower(query)
	if query == "" {
		return true
	}
	qi := 0
	for i := 0; i < len(text) && qi < len(query); i++ {
		if text[i] == query[qi] {
			qi++
		}
	}
	return qi == len(query)
}

// searchText is what a row is matched against: identity, status and the
// names of differing fields.
func (r Row) searchText() string {
	parts := []string{r.Node.NodeID, r.Node.Name, r.Node.NodegroupID, string(r.Status)}
	parts = append(parts, compare.SortedFields(r.Fields)...)
	return strings.ToLower(strings.Join(parts, " "))
}

func (m *Model) performSearch() {
	m.searchMatches = []int{}
	m.currentMatch = 0

	terms := strings.Fields(strings.ToLower(m.searchQuery))
	if len(terms) == 0 {
		return
	}

	for displayIdx, rowIdx := range m.sortedRows() {
		searchable := m.rows[rowIdx].searchText()
		allMatch := true
		for _, term := range terms {
			if !fuzzyMatch(searchable, term) {
				allMatch = false
				break
			}
		}
		if allMatch {
			m.searchMatches = append(m.searchMatches, displayIdx)
		}
	}
	if len(m.searchMatches) > 0 {
		m.cursor = 0
	}
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderRows())
}

// ensureCursorVisible scrolls the viewport to make the current cursor visible
func (m *Model) ensureCursorVisible() {
	if !m.ready || m.cursor < 0 || m.cursor >= len(m.rowLineStarts) {
		return
	}
	lineNum := m.rowLineStarts[m.cursor]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if lineNum < top {
		m.viewport.SetYOffset(lineNum)
	} else if lineNum > bottom {
		m.viewport.SetYOffset(max(0, lineNum-m.viewport.Height+1))
	}
}

// scrollForExpanded keeps an expanded row's content in view by moving the
// row to the top when its content would run past the bottom.
func (m *Model) scrollForExpanded() {
	if !m.ready || m.cursor < 0 || m.cursor >= len(m.rowLineStarts) {
		return
	}
	if idx := m.currentRow(); idx >= 0 && m.expanded[idx] {
		endLine := m.contentLines
		if m.cursor+1 < len(m.rowLineStarts) {
			endLine = m.rowLineStarts[m.cursor+1]
		}
		if endLine > m.viewport.YOffset+m.viewport.Height-1 {
			m.viewport.SetYOffset(m.rowLineStarts[m.cursor])
			return
		}
	}
	m.ensureCursorVisible()
}

func (m *Model) renderRows() string {
	var b strings.Builder
	lineCount := 0

	displayed := m.displayedRows()
	m.rowLineStarts = make([]int, len(displayed))

	if len(displayed) == 0 {
		switch {
		case m.searchQuery != "":
			b.WriteString(mutedColor.Render(fmt.Sprintf("No nodes match search '%s'. Press Esc to clear.", m.searchQuery)))
		case len(m.rows) == 0:
			b.WriteString(mutedColor.Render("Neither file contains any nodes."))
		default:
			b.WriteString(mutedColor.Render("No nodes match the current filters. Press 'f' to change filters."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for displayIdx, rowIdx := range displayed {
		m.rowLineStarts[displayIdx] = lineCount
		r := m.rows[rowIdx]
		expanded := m.expanded[rowIdx]

		if displayIdx == m.cursor {
			b.WriteString(m.renderSelectedRowLine(r, expanded))
		} else {
			b.WriteString(m.renderRowLine(r, expanded))
		}
		b.WriteString("\n")
		lineCount++

		if expanded {
			body := m.renderExpanded(r)
			b.WriteString(body)
			b.WriteString("\n")
			lineCount += strings.Count(body, "\n") + 1
		}
	}
	m.contentLines = lineCount

	b.WriteString("\n")
	b.WriteString(mutedColor.Render("── End of Comparison ──"))
	b.WriteString("\n")

	// Padding so the last row's expanded content can scroll fully into view
	b.WriteString(strings.Repeat("\n", max(0, m.viewport.Height)))
	return b.String()
}

// renderExpanded renders the body shown under an expanded row
func (m Model) renderExpanded(r Row) string {
	const indent = "    "
	if r.Status != StatusChanged {
		return indent + mutedColor.Render(statusDescription(r.Status))
	}

	width := m.viewport.Width
	var lines []string
	for _, field := range compare.SortedFields(r.Fields) {
		d := r.Fields[field]
		if IsScalar(d.First) && IsScalar(d.Second) {
			lines = append(lines, m.wrapFieldChange(indent, field, d, width))
			continue
		}
		lines = append(lines, indent+attrNameStyle.Render(field+":"))
		for _, l := range ContextDiff(DiffValues(d.First, d.Second), 3) {
			for _, wl := range strings.Split(wrapText(l.Text, width-len(indent)-4), "\n") {
				lines = append(lines, indent+"  "+diffLineStyled(DiffLine{Op: l.Op, Text: wl}))
			}
		}
	}
	return strings.Join(lines, "\n")
}

// wrapFieldChange renders "field: old → new", wrapping the values onto
// their own lines when the pair does not fit.
func (m Model) wrapFieldChange(indent, field string, d compare.FieldDiff, width int) string {
	oldVal := report.FormatValue(d.First)
	newVal := report.FormatValue(d.Second)
	plain := indent + field + ": " + oldVal + " → " + newVal
	if width <= 0 || utf8.RuneCountInString(plain) <= width {
		return fieldChangeLine(indent, field, d)
	}

	valueIndent := indent + "  "
	avail := width - len(valueIndent) - 2
	var b strings.Builder
	b.WriteString(indent + attrNameStyle.Render(field+":"))
	for _, wl := range strings.Split(wrapText(oldVal, avail), "\n") {
		b.WriteString("\n" + valueIndent + attrOldValueStyle.Render("- "+wl))
	}
	for _, wl := range strings.Split(wrapText(newVal, avail), "\n") {
		b.WriteString("\n" + valueIndent + attrNewValueStyle.Render("+ "+wl))
	}
	return b.String()
}

func wrapText(s string, width int) string {
	if width <= 10 {
		return s
	}
	return wordwrap.String(s, width)
}

func rowDetail(r Row) string {
	if r.Status == StatusChanged {
		n := len(r.Fields)
		if n == 1 {
			return "(1 field differs)"
		}
		return fmt.Sprintf("(%d fields differ)", n)
	}
	return statusDescription(r.Status)
}

// renderSelectedRowLine renders a row with full-width background highlight
func (m Model) renderSelectedRowLine(r Row, expanded bool) string {
	indicator := "▶"
	if expanded {
		indicator = "▼"
	}
	line := fmt.Sprintf("%s %s %s %s [%s] %s",
		indicator, StatusSymbol(r.Status), r.Node.NodeID, r.Node.Name,
		report.GroupLabel(r.Node.NodegroupID), rowDetail(r))

	if target := m.width - 4; target > 0 && utf8.RuneCountInString(line) < target {
		line += strings.Repeat(" ", target-utf8.RuneCountInString(line))
	}
	return selectedStyle.Foreground(StatusColor(r.Status)).Bold(true).Render(line)
}

func (m Model) renderRowLine(r Row, expanded bool) string {
	var b strings.Builder
	if expanded {
		b.WriteString(expandedIndicator)
	} else {
		b.WriteString(collapsedIndicator)
	}
	b.WriteString(" ")
	b.WriteString(statusSymbolStyled(r.Status))
	b.WriteString(" ")

	id := r.Node.NodeID
	if m.searchQuery != "" {
		id = highlightMatch(id, m.searchQuery)
	}
	b.WriteString(StatusStyle(r.Status).Render(id))
	b.WriteString(" ")
	b.WriteString(textStyle.Render(r.Node.Name))
	b.WriteString(" ")
	b.WriteString(mutedColor.Render("[" + report.GroupLabel(r.Node.NodegroupID) + "] " + rowDetail(r)))
	return b.String()
}

func highlightMatch(text, query string) string {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(query))
	if idx == -1 {
		return text
	}
	return text[:idx] + matchStyle.Render(text[idx:idx+len(query)]) + text[idx+len(query):]
}

func sortOrderLabel(opt SortOrder) string {
	switch opt {
	case SortByNodeID:
		return "by nodeid"
	case SortByName:
		return "by name"
	case SortByNodegroup:
		return "by nodegroup"
	case SortByStatus:
		return "by status"
	default:
		return string(opt)
	}
}

func sortOrderHint(opt SortOrder) string {
	switch opt {
	case SortByNodeID:
		return "(default, as in the saved report)"
	case SortByName:
		return "(alphabetical by node name)"
	case SortByNodegroup:
		return "(group nodes of the same nodegroup)"
	case SortByStatus:
		return "(changed, only-first, only-second, identical)"
	default:
		return ""
	}
}

// viewFilterPicker renders the filter picker overlay
func (m Model) viewFilterPicker() string {
	var b strings.Builder
	b.WriteString(searchStyle.Render("Filter by status"))
	b.WriteString("\n\n")
	for i, s := range filterableStatuses {
		checked := "[ ]"
		if m.statusFilters[s] {
			checked = "[x]"
		}
		rowStyle := textStyle
		if i == m.filterCursor {
			rowStyle = rowStyle.Background(colors.selectedBg)
		}
		b.WriteString(rowStyle.Render("  "+checked+" ") + StatusStyle(s).Render(string(s)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k: navigate • Space: toggle • a: select all • c: clear all • Enter: apply • Esc: clear all and close"))
	return appStyle.Render(b.String())
}

// viewSortPicker renders the sort picker overlay
func (m Model) viewSortPicker() string {
	var b strings.Builder
	b.WriteString(searchStyle.Render("Sort rows"))
	b.WriteString("\n\n")
	for i, opt := range sortOptions {
		marker := "  "
		if opt == m.sortOrder {
			marker = "● "
		}
		rowStyle := textStyle
		if i == m.sortCursor {
			rowStyle = rowStyle.Background(colors.selectedBg)
		}
		b.WriteString(rowStyle.Render(marker+sortOrderLabel(opt)) + " " + mutedColor.Render(sortOrderHint(opt)))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("j/k: navigate • Enter/Space: select • Esc: close"))
	return appStyle.Render(b.String())
}

func (m Model) viewHeader() string {
	title := "◆ nodeprism"
	if m.title != "" {
		title += " - " + m.title
	}
	return headerStyle.Render(title) + "\n" + summaryStyle.Render("  "+summaryLine(m.result)) + "\n\n"
}

func (m Model) viewFilterStatus() string {
	if len(m.statusFilters) == 0 {
		return ""
	}
	var labels []string
	for _, s := range filterableStatuses {
		if m.statusFilters[s] {
			labels = append(labels, string(s))
		}
	}
	if len(labels) == 0 {
		return ""
	}
	return searchStyle.Render(fmt.Sprintf("Filter: %s • f: change • Esc: clear", strings.Join(labels, ", "))) + "\n\n"
}

func (m Model) viewSortStatus() string {
	if m.sortOrder == SortByNodeID || m.sortOrder == "" {
		return ""
	}
	return searchStyle.Render(fmt.Sprintf("Sort: %s • s: change", sortOrderLabel(m.sortOrder))) + "\n\n"
}

func (m Model) viewSearchBar() string {
	if m.searching {
		return searchStyle.Render("Search: ") + m.searchInput.View() + "\n\n"
	}
	if m.searchQuery != "" {
		return searchStyle.Render(fmt.Sprintf("Search: %q (%d/%d matches)", m.searchQuery, m.currentMatch+1, len(m.searchMatches))) + "\n\n"
	}
	return ""
}

func (m Model) viewHelpFooter() string {
	help := "j/k/↑↓: navigate • l/→: expand • h/←: collapse • d/u: scroll • e/c: all • gg/G: top/bottom • /: search • f: filter • s: sort • q: quit"
	if len(m.statusFilters) > 0 {
		help += " • Esc: clear filter"
	}
	return help
}

func (m Model) viewUpdateNudge() string {
	if m.updateAvailable == "" {
		return ""
	}
	nudge := lipgloss.NewStyle().Foreground(colors.literal).Italic(true)
	return "\n" + statusBarStyle.Render(nudge.Render(fmt.Sprintf("Update available: v%s. Run 'nodeprism upgrade' to update.", m.updateAvailable)))
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.filtering {
		return m.viewFilterPicker()
	}
	if m.sorting {
		return m.viewSortPicker()
	}

	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteString(m.viewFilterStatus())
	b.WriteString(m.viewSortStatus())
	b.WriteString(m.viewSearchBar())
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(m.viewHelpFooter()))
	b.WriteString(m.viewUpdateNudge())
	return appStyle.Render(b.String())
}
