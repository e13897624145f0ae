package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/trackline/internal/app"
	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/timeline"
	"github.com/dori/trackline/internal/ui/keys"
	"github.com/dori/trackline/internal/ui/styles"
)

// filter cycles presented by the 'f' key
var kindFilters = []struct {
	kind  string
	label string
}{
	{"", "all"},
	{timeline.TypeStatusChange, "status"},
	{timeline.KindTeam, "team"},
	{string(model.EventMilestone), "milestones"},
	{string(model.EventDateChange), "dates"},
	{string(model.EventTaskMilestone), "tasks"},
}

// day ranges presented by the 'r' key; 0 means unbounded
var dayRanges = []int{0, 90, 30, 7}

// BackToProjects is emitted when the user leaves the timeline
type BackToProjects struct{}

type timelineLoadedMsg struct {
	entries []timeline.Entry
	names   map[string]string
	err     error
}

// TimelineView renders the projected event feed for one project
type TimelineView struct {
	app      *app.App
	project  model.Project
	viewport viewport.Model
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	loaded   bool

	entries   []timeline.Entry
	userNames map[string]string
	filterIdx int
	rangeIdx  int
	statusMsg string
	errMsg    string
}

// NewTimelineView creates a timeline view for a project
func NewTimelineView(application *app.App, project model.Project) *TimelineView {
	return &TimelineView{
		app:     application,
		project: project,
		styles:  styles.NewStyles(),
		keys:    keys.DefaultKeyMap(),
	}
}

func (v *TimelineView) Init() tea.Cmd {
	return v.loadTimeline
}

func (v *TimelineView) loadTimeline() tea.Msg {
	proj, err := v.app.Projects.Get(v.project.ID)
	if err != nil {
		return timelineLoadedMsg{err: err}
	}
	if proj == nil {
		return timelineLoadedMsg{err: fmt.Errorf("project %q no longer exists", v.project.Name)}
	}

	tasks, err := v.app.Tasks.ByProject(proj.ID)
	if err != nil {
		return timelineLoadedMsg{err: err}
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	users, err := v.app.Users.All()
	if err != nil {
		return timelineLoadedMsg{err: err}
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := timeline.Build(proj, func(id string) (string, bool) {
		title, ok := titles[id]
		return title, ok
	}, time.Now())

	return timelineLoadedMsg{entries: entries, names: names}
}

func (v *TimelineView) visible() []timeline.Entry {
	filtered := timeline.Filter(v.entries, timeline.Options{
		Kind:       kindFilters[v.filterIdx].kind,
		WithinDays: dayRanges[v.rangeIdx],
		Now:        time.Now(),
	})
	return timeline.Annotate(filtered)
}

func (v *TimelineView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.viewport = viewport.New(msg.Width-4, msg.Height-6)
		if v.loaded {
			v.viewport.SetContent(v.renderEntries())
		}
		return v, nil

	case timelineLoadedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		v.entries = msg.entries
		v.userNames = msg.names
		v.loaded = true
		v.viewport.SetContent(v.renderEntries())
		return v, nil

	case exportedMsg:
		v.statusMsg = "Exported to " + msg.path
		return v, nil

	case tea.KeyMsg:
		v.statusMsg = ""

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Back):
			return v, func() tea.Msg { return BackToProjects{} }

		case key.Matches(msg, v.keys.Filter):
			v.filterIdx = (v.filterIdx + 1) % len(kindFilters)
			v.viewport.SetContent(v.renderEntries())
			return v, nil

		case key.Matches(msg, v.keys.Range):
			v.rangeIdx = (v.rangeIdx + 1) % len(dayRanges)
			v.viewport.SetContent(v.renderEntries())
			return v, nil

		case key.Matches(msg, v.keys.Export):
			return v, v.exportTimeline()
		}
	}

	var cmd tea.Cmd
	v.viewport, cmd = v.viewport.Update(msg)
	return v, cmd
}

// exportTimeline writes the filtered feed to a text file in the data dir
func (v *TimelineView) exportTimeline() tea.Cmd {
	return func() tea.Msg {
		out := timeline.Export(v.visible(), func(id string) string {
			return v.userNames[id]
		})
		name := fmt.Sprintf("timeline-%s-%s.txt", v.project.ID, time.Now().Format("20060102"))
		path := filepath.Join(v.app.DataDir, name)
		if err := os.WriteFile(path, []byte(out+"\n"), 0644); err != nil {
			return timelineLoadedMsg{err: err}
		}
		return exportedMsg{path: path}
	}
}

type exportedMsg struct {
	path string
}

func (v *TimelineView) renderEntries() string {
	entries := v.visible()
	if len(entries) == 0 {
		return v.styles.TitleMuted.Render("No events match the current filter")
	}

	var b strings.Builder
	for _, e := range entries {
		if e.DaysSincePrev >= 1 {
			b.WriteString(v.styles.EventGap.Render(fmt.Sprintf("   ⋮ %d days", e.DaysSincePrev)))
			b.WriteString("\n")
		}

		date := v.styles.EventMeta.Render(e.At.Format("2006-01-02"))
		label := v.styles.EventLabel.Render(e.Label)
		line := fmt.Sprintf("%s  %s", date, label)

		if e.UserID != "" {
			name := e.UserID
			if n, ok := v.userNames[e.UserID]; ok {
				name = n
			}
			line += v.styles.EventMeta.Render(" by " + name)
		}
		if e.Note != "" {
			line += v.styles.EventMeta.Render(" (" + e.Note + ")")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// View renders the view
func (v *TimelineView) View() string {
	if v.errMsg != "" {
		return v.styles.ErrorText.Render(v.errMsg)
	}
	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	header := lipgloss.JoinHorizontal(lipgloss.Left,
		v.styles.Title.Render(v.project.Name),
		"  ",
		v.styles.TitleMuted.Render(fmt.Sprintf("filter: %s · range: %s",
			kindFilters[v.filterIdx].label, v.rangeLabel())),
	)

	help := v.styles.Help.Render(
		fmt.Sprintf("%s filter • %s range • %s export • %s back",
			v.styles.HelpKey.Render("f"),
			v.styles.HelpKey.Render("r"),
			v.styles.HelpKey.Render("e"),
			v.styles.HelpKey.Render("esc"),
		),
	)

	body := v.styles.Box.Width(max(v.width-4, 20)).Render(v.viewport.View())
	out := header + "\n" + body + "\n" + help
	if v.statusMsg != "" {
		out += "\n" + v.styles.TitleMuted.Render(v.statusMsg)
	}
	return out
}

func (v *TimelineView) rangeLabel() string {
	if dayRanges[v.rangeIdx] == 0 {
		return "all"
	}
	return fmt.Sprintf("%dd", dayRanges[v.rangeIdx])
}
