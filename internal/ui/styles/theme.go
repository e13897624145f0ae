package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme represents a color scheme for the application
type Theme struct {
	Name string

	Foreground    lipgloss.Color
	ForegroundDim lipgloss.Color

	Primary lipgloss.Color
	Accent  lipgloss.Color

	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color

	Border      lipgloss.Color
	BorderFocus lipgloss.Color
	Selection   lipgloss.Color
}

// Nord is the default color theme
var Nord = Theme{
	Name: "Nord",

	Foreground:    lipgloss.Color("#d8dee9"),
	ForegroundDim: lipgloss.Color("#616e88"),

	Primary: lipgloss.Color("#88c0d0"),
	Accent:  lipgloss.Color("#81a1c1"),

	Success: lipgloss.Color("#a3be8c"),
	Warning: lipgloss.Color("#ebcb8b"),
	Error:   lipgloss.Color("#bf616a"),

	Border:      lipgloss.Color("#3b4252"),
	BorderFocus: lipgloss.Color("#88c0d0"),
	Selection:   lipgloss.Color("#434c5e"),
}

// Current holds the active theme
var Current = Nord

// Styles holds the pre-computed styles for the UI
type Styles struct {
	Title      lipgloss.Style
	TitleMuted lipgloss.Style

	ListItem     lipgloss.Style
	ListSelected lipgloss.Style

	StatusActive    lipgloss.Style
	StatusOnHold    lipgloss.Style
	StatusCompleted lipgloss.Style

	EventLabel lipgloss.Style
	EventMeta  lipgloss.Style
	EventGap   lipgloss.Style

	Box lipgloss.Style

	Help    lipgloss.Style
	HelpKey lipgloss.Style

	ErrorText lipgloss.Style
}

// NewStyles creates styles based on the current theme
func NewStyles() *Styles {
	t := Current

	return &Styles{
		Title: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		TitleMuted: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		ListItem: lipgloss.NewStyle().
			Foreground(t.Foreground).
			Padding(0, 2),

		ListSelected: lipgloss.NewStyle().
			Foreground(t.Primary).
			Background(t.Selection).
			Padding(0, 2).
			Bold(true),

		StatusActive: lipgloss.NewStyle().
			Foreground(t.Success),

		StatusOnHold: lipgloss.NewStyle().
			Foreground(t.Warning),

		StatusCompleted: lipgloss.NewStyle().
			Foreground(t.Accent),

		EventLabel: lipgloss.NewStyle().
			Foreground(t.Foreground),

		EventMeta: lipgloss.NewStyle().
			Foreground(t.ForegroundDim),

		EventGap: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Italic(true),

		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(t.Border).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(t.ForegroundDim).
			Padding(1, 2),

		HelpKey: lipgloss.NewStyle().
			Foreground(t.Primary).
			Bold(true),

		ErrorText: lipgloss.NewStyle().
			Foreground(t.Error),
	}
}
