package views

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/trackline/internal/app"
	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/ui/keys"
	"github.com/dori/trackline/internal/ui/styles"
)

type projectItem struct {
	project model.Project
}

func (i projectItem) Title() string       { return i.project.Name }
func (i projectItem) Description() string { return i.project.Description }
func (i projectItem) FilterValue() string { return i.project.Name }

type projectDelegate struct {
	styles *styles.Styles
	width  int
}

func (d projectDelegate) Height() int                               { return 2 }
func (d projectDelegate) Spacing() int                              { return 1 }
func (d projectDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d projectDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	p, ok := item.(projectItem)
	if !ok {
		return
	}

	selected := index == m.Index()
	width := max(d.width-4, 20)

	var titleStyle, metaStyle lipgloss.Style
	if selected {
		titleStyle = d.styles.ListSelected.Width(width)
		metaStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	} else {
		titleStyle = d.styles.ListItem.Width(width)
		metaStyle = d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	title := titleStyle.Render(p.project.Name + "  " + d.statusBadge(p.project.Status))
	meta := metaStyle.Render(fmt.Sprintf("%s → %s · %d members",
		p.project.StartDate.Format("Jan 2, 2006"),
		p.project.EndDate.Format("Jan 2, 2006"),
		len(p.project.AssignedUserIDs),
	))

	fmt.Fprintf(w, "%s\n%s", title, meta)
}

func (d projectDelegate) statusBadge(s model.ProjectStatus) string {
	switch s {
	case model.ProjectActive:
		return d.styles.StatusActive.Render("● " + s.Label())
	case model.ProjectOnHold:
		return d.styles.StatusOnHold.Render("◌ " + s.Label())
	case model.ProjectCompleted:
		return d.styles.StatusCompleted.Render("✓ " + s.Label())
	default:
		return s.Label()
	}
}

// ProjectListView lists every project and lets the user open its
// timeline, cycle its status or delete it.
type ProjectListView struct {
	app              *app.App
	session          model.Session
	list             list.Model
	delegate         *projectDelegate
	styles           *styles.Styles
	keys             keys.KeyMap
	width            int
	height           int
	loaded           bool
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string
	errMsg           string
}

// SelectedProject is emitted when the user opens a project
type SelectedProject struct {
	Project model.Project
}

type projectsLoadedMsg struct {
	projects []model.Project
	err      error
}

// NewProjectListView creates the project list view
func NewProjectListView(application *app.App, session model.Session) *ProjectListView {
	s := styles.NewStyles()
	delegate := &projectDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Projects"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	return &ProjectListView{
		app:      application,
		session:  session,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
	}
}

func (v *ProjectListView) Init() tea.Cmd {
	return v.loadProjects
}

func (v *ProjectListView) loadProjects() tea.Msg {
	projects, err := v.app.Projects.All()
	return projectsLoadedMsg{projects: projects, err: err}
}

func (v *ProjectListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.delegate.width = msg.Width
		v.list.SetSize(msg.Width-4, msg.Height-4)
		return v, nil

	case projectsLoadedMsg:
		if msg.err != nil {
			v.errMsg = msg.err.Error()
			return v, nil
		}
		items := make([]list.Item, len(msg.projects))
		for i, p := range msg.projects {
			items[i] = projectItem{project: p}
		}
		v.list.SetItems(items)
		v.loaded = true
		return v, nil

	case tea.KeyMsg:
		v.errMsg = ""

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		switch {
		case key.Matches(msg, v.keys.Quit):
			return v, tea.Quit

		case key.Matches(msg, v.keys.Enter):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, func() tea.Msg {
					return SelectedProject{Project: item.project}
				}
			}

		case key.Matches(msg, v.keys.Status):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				return v, v.cycleStatus(item.project)
			}

		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(projectItem); ok {
				v.confirmingDelete = true
				v.deleteTargetID = item.project.ID
				v.deleteTargetName = item.project.Name
				return v, nil
			}
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// cycleStatus walks active → on hold → completed → active through the
// history-recording transition path.
func (v *ProjectListView) cycleStatus(p model.Project) tea.Cmd {
	return func() tea.Msg {
		var next model.ProjectStatus
		switch p.Status {
		case model.ProjectActive:
			next = model.ProjectOnHold
		case model.ProjectOnHold:
			next = model.ProjectCompleted
		default:
			next = model.ProjectActive
		}
		if _, err := v.app.Projects.SetStatus(p.ID, next, v.session.UserID, ""); err != nil {
			return projectsLoadedMsg{err: err}
		}
		return v.loadProjects()
	}
}

func (v *ProjectListView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if err := v.app.Projects.Remove(v.deleteTargetID); err != nil {
			v.errMsg = err.Error()
			return v, nil
		}
		return v, v.loadProjects
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

// View renders the view
func (v *ProjectListView) View() string {
	if v.confirmingDelete {
		return v.renderDeleteConfirm()
	}

	if !v.loaded {
		return v.styles.TitleMuted.Render("Loading...")
	}

	if len(v.list.Items()) == 0 {
		return lipgloss.Place(v.width, v.height,
			lipgloss.Center, lipgloss.Center,
			v.styles.TitleMuted.Render("No projects yet — use 'trackline add' to create tasks"),
		)
	}

	content := v.list.View() + "\n" + v.renderHelp()
	if v.errMsg != "" {
		content += "\n" + v.styles.ErrorText.Render(v.errMsg)
	}
	return content
}

func (v *ProjectListView) renderHelp() string {
	return v.styles.Help.Render(
		fmt.Sprintf("%s timeline • %s status • %s del • %s quit",
			v.styles.HelpKey.Render("↵"),
			v.styles.HelpKey.Render("s"),
			v.styles.HelpKey.Render("d"),
			v.styles.HelpKey.Render("q"),
		),
	)
}

func (v *ProjectListView) renderDeleteConfirm() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		v.styles.Title.Foreground(styles.Current.Error).Render("Delete Project?"),
		"",
		v.styles.TitleMuted.Render(fmt.Sprintf("%q and all of its tasks will be removed.", v.deleteTargetName)),
		"",
		v.styles.TitleMuted.Render("y: yes • n: no"),
	)
	return lipgloss.Place(v.width, v.height,
		lipgloss.Center, lipgloss.Center,
		content,
	)
}
