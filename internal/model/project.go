package model

import (
	"time"
)

// ProjectStatus represents the current state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
)

// Label returns the display name for a project status
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectActive:
		return "Active"
	case ProjectOnHold:
		return "On hold"
	case ProjectCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Valid reports whether the status is one of the known project states
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectActive, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// StatusEntry is one append-only record in a project's status history
type StatusEntry struct {
	Status ProjectStatus `json:"status"`
	At     time.Time     `json:"at"`
	UserID string        `json:"user_id,omitempty"`
	Note   string        `json:"note,omitempty"`
}

// Project represents a tracked project
type Project struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Description     string        `json:"description,omitempty"`
	Status          ProjectStatus `json:"status"`
	StartDate       time.Time     `json:"start_date"`
	EndDate         time.Time     `json:"end_date"`
	AssignedUserIDs []string      `json:"assigned_user_ids,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	StatusHistory   []StatusEntry `json:"status_history,omitempty"`
	ActivityLog     []Event       `json:"activity_log,omitempty"`
	Attachments     []string      `json:"attachments,omitempty"`
}

// ReadOnly reports whether the project blocks edits to itself and its
// tasks. Only the status field may change while a project is read-only.
func (p *Project) ReadOnly() bool {
	return p.Status == ProjectOnHold || p.Status == ProjectCompleted
}

// HasMember reports whether a user is assigned to the project
func (p *Project) HasMember(userID string) bool {
	for _, id := range p.AssignedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}
