package model

import (
	"time"
)

// TaskStatus represents the current state of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// Label returns the display name for a task status
func (s TaskStatus) Label() string {
	switch s {
	case TaskTodo:
		return "To do"
	case TaskInProgress:
		return "In progress"
	case TaskCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Valid reports whether the status is one of the known task states
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskTodo, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// Priority represents task priority level
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// TagLearning is reserved; it carries meaning only for display layers.
const TagLearning = "Learning"

// Task represents a unit of work inside a project
type Task struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	AssigneeID  string     `json:"assignee_id,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Tags        []string   `json:"tags,omitempty"`
	Links       []string   `json:"links,omitempty"`
	Attachments []string   `json:"attachments,omitempty"`
	CreatedByID string     `json:"created_by_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	AssignedAt  time.Time  `json:"assigned_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Deadline    *time.Time `json:"deadline,omitempty"`
}

// IsOverdue returns true if the task's deadline has passed a given day
func (t *Task) IsOverdue(now time.Time) bool {
	if t.Deadline == nil || t.Status == TaskCompleted {
		return false
	}
	return dayOf(*t.Deadline).Before(dayOf(now))
}

// IsDueOn returns true if the task is due on the given day
func (t *Task) IsDueOn(now time.Time) bool {
	if t.Deadline == nil {
		return false
	}
	return dayOf(*t.Deadline).Equal(dayOf(now))
}

// HasTag reports whether the task carries a tag
func (t *Task) HasTag(tag string) bool {
	for _, tg := range t.Tags {
		if tg == tag {
			return true
		}
	}
	return false
}

// PriorityWeight returns a numeric weight for sorting by priority
func (t *Task) PriorityWeight() int {
	switch t.Priority {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
