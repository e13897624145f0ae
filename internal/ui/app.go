package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/trackline/internal/app"
	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/ui/views"
)

// Debug logging (enable by setting TRACKLINE_DEBUG=1); stdout belongs
// to the TUI, so debug output goes to a file.
var debugLog *os.File

func init() {
	if os.Getenv("TRACKLINE_DEBUG") == "1" {
		debugLog, _ = os.OpenFile("/tmp/trackline-debug.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	}
}

func debugf(format string, args ...interface{}) {
	if debugLog != nil {
		fmt.Fprintf(debugLog, format+"\n", args...)
	}
}

// Currently active view
type View int

const (
	ViewProjects View = iota
	ViewTimeline
)

// App is the root bubbletea model
type App struct {
	app         *app.App
	session     model.Session
	currentView View
	projectList *views.ProjectListView
	timeline    *views.TimelineView
	width       int
	height      int
}

// NewApp creates the root model
func NewApp(application *app.App, session model.Session) *App {
	return &App{
		app:         application,
		session:     session,
		currentView: ViewProjects,
		projectList: views.NewProjectListView(application, session),
	}
}

func (a *App) Init() tea.Cmd {
	return a.projectList.Init()
}

func (a *App) openTimeline(project model.Project) tea.Cmd {
	a.currentView = ViewTimeline
	a.timeline = views.NewTimelineView(a.app, project)

	return tea.Batch(
		a.timeline.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	debugf("App.Update msg type: %T", msg)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// The project list persists across view switches
		a.projectList.Update(msg)

	case views.SelectedProject:
		return a, a.openTimeline(msg.Project)

	case views.BackToProjects:
		a.currentView = ViewProjects
		return a, tea.Batch(
			a.projectList.Init(),
			func() tea.Msg {
				return tea.WindowSizeMsg{Width: a.width, Height: a.height}
			},
		)
	}

	var cmd tea.Cmd
	switch a.currentView {
	case ViewProjects:
		_, cmd = a.projectList.Update(msg)
	case ViewTimeline:
		_, cmd = a.timeline.Update(msg)
	}

	return a, cmd
}

func (a *App) View() string {
	switch a.currentView {
	case ViewTimeline:
		if a.timeline != nil {
			return a.timeline.View()
		}
	}
	return a.projectList.View()
}
