package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dori/trackline/internal/app"
	"github.com/dori/trackline/internal/lifecycle"
	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/timeline"
	"github.com/dori/trackline/internal/ui"
)

var (
	version = "0.1.0"
)

func main() {
	// Subcommand handling
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "add":
			handleAdd(os.Args[2:])
			return
		case "check-deadlines":
			handleCheckDeadlines()
			return
		case "export":
			handleExport(os.Args[2:])
			return
		case "version":
			fmt.Printf("trackline v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		}
	}

	flag.Parse()

	if err := runTUI(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	help := `trackline - a local project and task tracker

Usage:
  trackline                         Start the TUI
  trackline add <task>              Quick add a task
  trackline check-deadlines         Scan deadlines and record notifications
  trackline export <project-id>     Print a project timeline as text
  trackline version                 Show version
  trackline help                    Show this help

Quick Add Syntax:
  trackline add "Fix login proj:PROJECT-ID"
  trackline add "Review spec proj:PROJECT-ID @userID #backend !high due:friday"

  Project:   proj:<project-id>  (required)
  Assignee:  @userID
  Tags:      #tag              (e.g., #backend, #docs)
  Priority:  !low !medium !high
  Due date:  due:tomorrow due:friday due:2024-01-15

The acting user is taken from TRACKLINE_USER (default "local").

TUI Keybindings:
  Projects:   ↵ timeline   s cycle status   d delete   q quit
  Timeline:   f filter     r date range     e export   esc back

For more info: https://github.com/dori/trackline`

	fmt.Println(help)
}

// session resolves the acting user for CLI commands. Single-machine
// use; the local user acts as an admin.
func session() model.Session {
	userID := os.Getenv("TRACKLINE_USER")
	if userID == "" {
		userID = "local"
	}
	return model.Session{UserID: userID, Role: model.RoleAdmin}
}

func handleAdd(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: trackline add <task>")
		fmt.Fprintln(os.Stderr, "Example: trackline add \"Fix login proj:PROJECT-ID #backend !high due:tomorrow\"")
		os.Exit(1)
	}

	text := strings.Join(args, " ")
	input := parseQuickAdd(text)

	if input.ProjectID == "" {
		fmt.Fprintln(os.Stderr, "A project is required: add proj:<project-id>")
		os.Exit(1)
	}

	application, err := app.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	task, err := application.Tasks.Create(input, session())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating task: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created: %s\n", task.Title)
	if task.Deadline != nil {
		fmt.Printf("Due: %s\n", formatDueDate(*task.Deadline))
	}
	if task.Priority != model.PriorityMedium {
		fmt.Printf("Priority: %s\n", task.Priority)
	}
	if len(task.Tags) > 0 {
		fmt.Printf("Tags: %s\n", strings.Join(task.Tags, ", "))
	}
}

func handleCheckDeadlines() {
	application, err := app.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	created, err := application.Scanner.RunDeadlineCheck(time.Now())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error scanning deadlines: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Recorded %d notification(s)\n", created)
}

func handleExport(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: trackline export <project-id>")
		os.Exit(1)
	}

	application, err := app.New(nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening data store: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	proj, err := application.Projects.Get(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if proj == nil {
		fmt.Fprintf(os.Stderr, "Project %q not found\n", args[0])
		os.Exit(1)
	}

	tasks, err := application.Tasks.ByProject(proj.ID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	titles := make(map[string]string, len(tasks))
	for _, t := range tasks {
		titles[t.ID] = t.Title
	}

	users, err := application.Users.All()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := timeline.Build(proj, func(id string) (string, bool) {
		title, ok := titles[id]
		return title, ok
	}, time.Now())
	entries = timeline.Annotate(entries)

	fmt.Println(timeline.Export(entries, func(id string) string {
		return names[id]
	}))
}

func parseQuickAdd(text string) lifecycle.TaskInput {
	input := lifecycle.TaskInput{
		Priority: model.PriorityMedium,
	}

	words := strings.Fields(text)
	var titleParts []string

	for _, word := range words {
		switch {
		// Project (proj:<id>)
		case strings.HasPrefix(strings.ToLower(word), "proj:"):
			input.ProjectID = word[len("proj:"):]

		// Assignee (@userID)
		case strings.HasPrefix(word, "@"):
			input.AssigneeID = strings.TrimPrefix(word, "@")

		// Tags (#backend, #docs, etc.)
		case strings.HasPrefix(word, "#"):
			input.Tags = append(input.Tags, strings.TrimPrefix(word, "#"))

		// Priority (!low, !high, etc.)
		case strings.HasPrefix(word, "!"):
			priority := strings.ToLower(strings.TrimPrefix(word, "!"))
			switch priority {
			case "low", "l":
				input.Priority = model.PriorityLow
			case "medium", "med", "m":
				input.Priority = model.PriorityMedium
			case "high", "hi", "h":
				input.Priority = model.PriorityHigh
			default:
				titleParts = append(titleParts, word)
			}

		// Due date (due:tomorrow, due:friday, due:2024-01-15)
		case strings.HasPrefix(strings.ToLower(word), "due:"):
			dateStr := strings.TrimPrefix(strings.ToLower(word), "due:")
			if parsed := parseNaturalDate(dateStr); parsed != nil {
				input.Deadline = parsed
			} else {
				titleParts = append(titleParts, word)
			}

		default:
			titleParts = append(titleParts, word)
		}
	}

	input.Title = strings.Join(titleParts, " ")
	return input
}

func parseNaturalDate(s string) *time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	switch strings.ToLower(s) {
	case "today":
		return &today
	case "tomorrow", "tom":
		t := today.AddDate(0, 0, 1)
		return &t
	case "monday", "mon":
		return nextWeekday(time.Monday)
	case "tuesday", "tue":
		return nextWeekday(time.Tuesday)
	case "wednesday", "wed":
		return nextWeekday(time.Wednesday)
	case "thursday", "thu":
		return nextWeekday(time.Thursday)
	case "friday", "fri":
		return nextWeekday(time.Friday)
	case "saturday", "sat":
		return nextWeekday(time.Saturday)
	case "sunday", "sun":
		return nextWeekday(time.Sunday)
	case "nextweek":
		t := today.AddDate(0, 0, 7)
		return &t
	}

	// Try parsing as date
	formats := []string{
		"2006-01-02",
		"01/02/2006",
		"01-02-2006",
		"Jan 2",
		"Jan 2, 2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			// If no year, use current year
			if t.Year() == 0 {
				t = time.Date(now.Year(), t.Month(), t.Day(), 23, 59, 59, 0, now.Location())
			}
			return &t
		}
	}

	return nil
}

func nextWeekday(day time.Weekday) *time.Time {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())

	daysUntil := int(day - now.Weekday())
	if daysUntil <= 0 {
		daysUntil += 7
	}

	t := today.AddDate(0, 0, daysUntil)
	return &t
}

func formatDueDate(t time.Time) string {
	now := time.Now()

	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return "today"
	}

	tomorrow := now.AddDate(0, 0, 1)
	if t.Year() == tomorrow.Year() && t.YearDay() == tomorrow.YearDay() {
		return "tomorrow"
	}

	if t.Year() == now.Year() {
		return t.Format("Mon, Jan 2")
	}

	return t.Format("Jan 2, 2006")
}

func runTUI() error {
	application, err := app.New(nil)
	if err != nil {
		return err
	}
	defer application.Close()

	root := ui.NewApp(application, session())

	p := tea.NewProgram(
		root,
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
