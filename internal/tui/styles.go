package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/CaptShanks/nodeprism/internal/config"
)

// palette holds the colors a theme is built from
type palette struct {
	onlyFirst  lipgloss.Color
	onlySecond lipgloss.Color
	changed    lipgloss.Color
	same       lipgloss.Color
	literal    lipgloss.Color

	selectedBg lipgloss.Color
	header     lipgloss.Color
	border     lipgloss.Color
	muted      lipgloss.Color
	text       lipgloss.Color
	barBg      lipgloss.Color
}

// Soft, low-contrast palette inspired by Tokyo Night / Catppuccin
var darkPalette = palette{
	onlyFirst:  lipgloss.Color("#f7768e"), // soft coral red
	onlySecond: lipgloss.Color("#9ece6a"), // soft sage green
	changed:    lipgloss.Color("#e0af68"), // warm amber
	same:       lipgloss.Color("#565f89"), // soft gray-blue
	literal:    lipgloss.Color("#7dcfff"), // soft sky blue

	selectedBg: lipgloss.Color("#292e42"),
	header:     lipgloss.Color("#7aa2f7"),
	border:     lipgloss.Color("#3b4261"),
	muted:      lipgloss.Color("#565f89"),
	text:       lipgloss.Color("#a9b1d6"),
	barBg:      lipgloss.Color("#1a1b26"),
}

// Catppuccin Latte tones, readable on white terminals
var lightPalette = palette{
	onlyFirst:  lipgloss.Color("#d20f39"),
	onlySecond: lipgloss.Color("#40a02b"),
	changed:    lipgloss.Color("#df8e1d"),
	same:       lipgloss.Color("#8c8fa1"),
	literal:    lipgloss.Color("#1e66f5"),

	selectedBg: lipgloss.Color("#dce0e8"),
	header:     lipgloss.Color("#1e66f5"),
	border:     lipgloss.Color("#bcc0cc"),
	muted:      lipgloss.Color("#8c8fa1"),
	text:       lipgloss.Color("#4c4f69"),
	barBg:      lipgloss.Color("#e6e9ef"),
}

var colors palette

// Styles
var (
	appStyle = lipgloss.NewStyle().Padding(1, 2)

	headerStyle        lipgloss.Style
	summaryStyle       lipgloss.Style
	selectedStyle      lipgloss.Style
	attrNameStyle      lipgloss.Style
	attrOldValueStyle  lipgloss.Style
	attrNewValueStyle  lipgloss.Style
	mutedColor         lipgloss.Style
	textStyle          lipgloss.Style
	helpStyle          lipgloss.Style
	searchStyle        lipgloss.Style
	matchStyle         lipgloss.Style
	statusBarStyle     lipgloss.Style

	expandedIndicator  string
	collapsedIndicator string
)

func init() {
	usePalette(darkPalette)
}

// ApplyTheme selects the palette for a configured theme. "auto" asks the
// terminal for its background color.
func ApplyTheme(theme string) {
	switch theme {
	case config.ThemeLight:
		usePalette(lightPalette)
	case config.ThemeDark:
		usePalette(darkPalette)
	default:
		if termenv.HasDarkBackground() {
			usePalette(darkPalette)
		} else {
			usePalette(lightPalette)
		}
	}
}

func usePalette(p palette) {
	colors = p

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(p.header).MarginBottom(1)
	summaryStyle = lipgloss.NewStyle().Foreground(p.text).MarginBottom(1)
	selectedStyle = lipgloss.NewStyle().Background(p.selectedBg)
	attrNameStyle = lipgloss.NewStyle().Foreground(p.text)
	attrOldValueStyle = lipgloss.NewStyle().Foreground(p.onlyFirst)
	attrNewValueStyle = lipgloss.NewStyle().Foreground(p.onlySecond)
	mutedColor = lipgloss.NewStyle().Foreground(p.muted)
	textStyle = lipgloss.NewStyle().Foreground(p.text)
	helpStyle = lipgloss.NewStyle().Foreground(p.muted).MarginTop(1)
	searchStyle = lipgloss.NewStyle().Foreground(p.header).Bold(true)
	matchStyle = lipgloss.NewStyle().Background(p.border).Foreground(p.onlySecond).Bold(true)
	statusBarStyle = lipgloss.NewStyle().Foreground(p.muted).Background(p.barBg).Padding(0, 1)

	expandedIndicator = mutedColor.Render("▼")
	collapsedIndicator = mutedColor.Render("▶")
}

// StatusColor returns the color used for a node status
func StatusColor(s Status) lipgloss.Color {
	switch s {
	case StatusOnlyFirst:
		return colors.onlyFirst
	case StatusOnlySecond:
		return colors.onlySecond
	case StatusChanged:
		return colors.changed
	default:
		return colors.same
	}
}

// StatusSymbol returns the one-character marker for a node status
func StatusSymbol(s Status) string {
	switch s {
	case StatusOnlyFirst:
		return "-"
	case StatusOnlySecond:
		return "+"
	case StatusChanged:
		return "~"
	default:
		return "="
	}
}

// StatusStyle returns the bold row style for a node status
func StatusStyle(s Status) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(StatusColor(s))
}

func statusSymbolStyled(s Status) string {
	return lipgloss.NewStyle().Foreground(StatusColor(s)).Render(StatusSymbol(s))
}
