package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/store"
	"github.com/google/uuid"
)

// Scanner checks task deadlines and appends notification records for
// assignees of tasks due today or overdue. It only ever appends to the
// notifications collection; tasks and projects are never touched.
//
// Dedup policy: one notification per task per calendar day, keyed
// deadline:<taskID>:<YYYY-MM-DD>. A scan repeated within the same day
// is a no-op; a task still overdue the next day notifies again.
type Scanner struct {
	store   store.Store
	desktop *Notifier
	newID   func() string
}

// NewScanner creates a deadline scanner over a store
func NewScanner(s store.Store) *Scanner {
	return &Scanner{
		store: s,
		newID: func() string { return uuid.New().String() },
	}
}

// SetDesktop attaches an optional desktop bridge; freshly created
// records are mirrored to it best-effort.
func (s *Scanner) SetDesktop(n *Notifier) {
	s.desktop = n
}

// RunDeadlineCheck scans all non-completed tasks with a deadline and
// ensures assignees have a notification for every task due on or
// before the given time. Returns the number of records created.
func (s *Scanner) RunDeadlineCheck(now time.Time) (int, error) {
	tasksData, err := s.store.List(store.KeyTasks)
	if err != nil {
		return 0, err
	}
	var tasks []model.Task
	if err := json.Unmarshal(tasksData, &tasks); err != nil {
		return 0, fmt.Errorf("failed to decode tasks: %w", err)
	}

	notifData, err := s.store.List(store.KeyNotifications)
	if err != nil {
		return 0, err
	}
	var notifications []model.Notification
	if err := json.Unmarshal(notifData, &notifications); err != nil {
		return 0, fmt.Errorf("failed to decode notifications: %w", err)
	}

	seen := make(map[string]struct{}, len(notifications))
	for _, n := range notifications {
		if n.DedupKey != "" {
			seen[n.DedupKey] = struct{}{}
		}
	}

	created := 0
	for _, t := range tasks {
		if t.Status == model.TaskCompleted || t.Deadline == nil || t.AssigneeID == "" {
			continue
		}
		overdue := t.IsOverdue(now)
		if !overdue && !t.IsDueOn(now) {
			continue
		}

		key := fmt.Sprintf("deadline:%s:%s", t.ID, now.Format("2006-01-02"))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		message := fmt.Sprintf("Task %q is due today", t.Title)
		if overdue {
			message = fmt.Sprintf("Task %q is overdue", t.Title)
		}

		notifications = append(notifications, model.Notification{
			ID:        s.newID(),
			UserID:    t.AssigneeID,
			Type:      model.NotificationDeadline,
			Message:   message,
			ProjectID: t.ProjectID,
			TaskID:    t.ID,
			DedupKey:  key,
			CreatedAt: now,
		})
		created++

		if s.desktop != nil {
			// Delivery failures must not fail the scan
			_ = s.desktop.SendDeadlineReminder(t.Title, overdue)
		}
	}

	if created == 0 {
		return 0, nil
	}

	data, err := json.Marshal(notifications)
	if err != nil {
		return 0, fmt.Errorf("failed to encode notifications: %w", err)
	}
	if err := s.store.Save(store.KeyNotifications, data); err != nil {
		return 0, err
	}
	return created, nil
}

// ForUser returns the stored notifications addressed to one user
func (s *Scanner) ForUser(userID string) ([]model.Notification, error) {
	data, err := s.store.List(store.KeyNotifications)
	if err != nil {
		return nil, err
	}
	var notifications []model.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return nil, fmt.Errorf("failed to decode notifications: %w", err)
	}
	var out []model.Notification
	for _, n := range notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}
