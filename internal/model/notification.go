package model

import (
	"time"
)

// NotificationType classifies a notification record
type NotificationType string

const (
	NotificationDeadline NotificationType = "deadline"
)

// Notification is an append-only record addressed to a single user
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Message   string           `json:"message"`
	ProjectID string           `json:"project_id,omitempty"`
	TaskID    string           `json:"task_id,omitempty"`
	Read      bool             `json:"read"`
	DedupKey  string           `json:"dedup_key,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}
