package model

import (
	"time"
)

// EventType classifies an activity-log entry
type EventType string

const (
	EventDateChange    EventType = "date_change"
	EventMemberAdded   EventType = "member_added"
	EventMemberRemoved EventType = "member_removed"
	EventMilestone     EventType = "milestone"
	EventTaskMilestone EventType = "task_milestone"
)

// EventPayload carries the type-specific fields of an event. Which
// fields are set depends on the event type:
//
//	date_change:     Field, OldValue, NewValue
//	member_added:    UserID
//	member_removed:  UserID
//	milestone:       Title
//	task_milestone:  TaskID, Message
type EventPayload struct {
	Field    string `json:"field,omitempty"`
	OldValue string `json:"old_value,omitempty"`
	NewValue string `json:"new_value,omitempty"`
	UserID   string `json:"user_id,omitempty"`
	Title    string `json:"title,omitempty"`
	TaskID   string `json:"task_id,omitempty"`
	Message  string `json:"message,omitempty"`
}

// Event is one append-only entry in a project's activity log
type Event struct {
	ID      string       `json:"id"`
	Type    EventType    `json:"type"`
	At      time.Time    `json:"at"`
	UserID  string       `json:"user_id,omitempty"`
	Note    string       `json:"note,omitempty"`
	Payload EventPayload `json:"payload"`
}
