// Package timeline projects a project's status history and activity
// log into one ordered, labeled event feed. Everything here is a pure
// function of the data passed in; the underlying logs are never
// mutated.
package timeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dori/trackline/internal/model"
)

// TypeStatusChange marks entries derived from the status history. All
// other entry types reuse the activity-log event types.
const TypeStatusChange = "status_change"

// KindTeam is a filter alias matching both membership event types
const KindTeam = "team"

// Entry is one displayable point on a project timeline
type Entry struct {
	ID            string
	Type          string
	At            time.Time
	UserID        string
	Note          string
	Status        model.ProjectStatus
	Label         string
	IsFirst       bool
	DaysSincePrev int
	Payload       model.EventPayload
}

// Build merges a project's status history and activity log into an
// ascending feed. taskTitle resolves task IDs for task_milestone
// labels; it may be nil. When the project has no history and no log at
// all, a minimal synthetic timeline is produced from the project's
// dates so the display never comes up empty.
func Build(p *model.Project, taskTitle func(string) (string, bool), now time.Time) []Entry {
	if p == nil {
		return nil
	}

	var entries []Entry
	for i, h := range p.StatusHistory {
		entries = append(entries, Entry{
			Type:    TypeStatusChange,
			At:      h.At,
			UserID:  h.UserID,
			Note:    h.Note,
			Status:  h.Status,
			IsFirst: i == 0,
		})
	}
	for _, ev := range p.ActivityLog {
		entries = append(entries, Entry{
			ID:      ev.ID,
			Type:    string(ev.Type),
			At:      ev.At,
			UserID:  ev.UserID,
			Note:    ev.Note,
			Payload: ev.Payload,
		})
	}

	if len(entries) == 0 {
		entries = synthesize(p, now)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].At.Before(entries[j].At)
	})

	for i := range entries {
		entries[i].Label = label(entries[i], taskTitle)
	}
	return entries
}

// synthesize builds the two-point fallback timeline: the project start
// and, when the status has moved off active, the current status.
func synthesize(p *model.Project, now time.Time) []Entry {
	start := p.StartDate
	if start.IsZero() {
		start = p.CreatedAt
	}
	if start.IsZero() {
		start = now
	}

	entries := []Entry{{
		Type:    TypeStatusChange,
		At:      start,
		Status:  model.ProjectActive,
		IsFirst: true,
	}}

	if p.Status != model.ProjectActive {
		at := p.EndDate
		if at.IsZero() {
			at = now
		}
		entries = append(entries, Entry{
			Type:   TypeStatusChange,
			At:     at,
			Status: p.Status,
		})
	}
	return entries
}

func label(e Entry, taskTitle func(string) (string, bool)) string {
	switch e.Type {
	case TypeStatusChange:
		if e.IsFirst && e.Status == model.ProjectActive {
			return "Project created"
		}
		switch e.Status {
		case model.ProjectActive:
			return "Marked active"
		case model.ProjectOnHold:
			return "Put on hold"
		case model.ProjectCompleted:
			return "Marked completed"
		default:
			return "Status changed"
		}
	case string(model.EventDateChange):
		if e.Payload.Field == "start_date" {
			return "Start date changed"
		}
		return "End date changed"
	case string(model.EventMemberAdded):
		return "Member added"
	case string(model.EventMemberRemoved):
		return "Member removed"
	case string(model.EventMilestone):
		return e.Payload.Title
	case string(model.EventTaskMilestone):
		if taskTitle != nil {
			if title, ok := taskTitle(e.Payload.TaskID); ok {
				return "Task completed: " + title
			}
		}
		return "Task completed"
	default:
		return string(e.Type)
	}
}

// Options narrows a built timeline. Kind "" keeps every entry; KindTeam
// matches both membership types. WithinDays > 0 keeps entries at or
// after Now minus that many days.
type Options struct {
	Kind       string
	WithinDays int
	Now        time.Time
}

// Filter returns the entries matching the options. The input slice is
// left untouched.
func Filter(entries []Entry, opts Options) []Entry {
	var cutoff time.Time
	if opts.WithinDays > 0 {
		cutoff = opts.Now.AddDate(0, 0, -opts.WithinDays)
	}

	var out []Entry
	for _, e := range entries {
		if opts.Kind != "" && !matchKind(e.Type, opts.Kind) {
			continue
		}
		if !cutoff.IsZero() && e.At.Before(cutoff) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func matchKind(entryType, kind string) bool {
	if kind == KindTeam {
		return entryType == string(model.EventMemberAdded) ||
			entryType == string(model.EventMemberRemoved)
	}
	return entryType == kind
}

// Annotate stamps each entry after the first with the whole days
// elapsed since the previous visible entry. Call it on the post-filter
// list; gaps under a day stay zero and are not rendered.
func Annotate(entries []Entry) []Entry {
	for i := 1; i < len(entries); i++ {
		days := int(entries[i].At.Sub(entries[i-1].At).Hours() / 24)
		if days >= 1 {
			entries[i].DaysSincePrev = days
		}
	}
	return entries
}

// Export renders one line per entry for copy/paste or file export.
// userName resolves user IDs to display names; it may be nil.
func Export(entries []Entry, userName func(string) string) string {
	var lines []string
	for _, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "%s — %s", e.At.Format("2006-01-02"), e.Label)
		if e.UserID != "" {
			name := e.UserID
			if userName != nil {
				if n := userName(e.UserID); n != "" {
					name = n
				}
			}
			fmt.Fprintf(&b, " by %s", name)
		}
		if e.Note != "" {
			fmt.Fprintf(&b, " (%s)", e.Note)
		}
		if e.Type == TypeStatusChange {
			fmt.Fprintf(&b, " — %s", e.Status.Label())
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
