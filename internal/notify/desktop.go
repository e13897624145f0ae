package notify

import (
	"os/exec"
	"strconv"
	"time"
)

// Urgency levels for desktop notifications
type Urgency int

const (
	UrgencyLow Urgency = iota
	UrgencyNormal
	UrgencyCritical
)

// Notifier sends desktop notifications via notify-send
type Notifier struct {
	enabled bool
}

// NewNotifier creates a new notifier
func NewNotifier() *Notifier {
	return &Notifier{
		enabled: true,
	}
}

// SetEnabled enables or disables notifications
func (n *Notifier) SetEnabled(enabled bool) {
	n.enabled = enabled
}

// IsEnabled returns whether notifications are enabled
func (n *Notifier) IsEnabled() bool {
	return n.enabled
}

// Send sends a desktop notification using notify-send
func (n *Notifier) Send(title, body string, urgency Urgency, timeout time.Duration) error {
	if !n.enabled {
		return nil
	}

	args := []string{}

	switch urgency {
	case UrgencyLow:
		args = append(args, "-u", "low")
	case UrgencyCritical:
		args = append(args, "-u", "critical")
	default:
		args = append(args, "-u", "normal")
	}

	if timeout > 0 {
		args = append(args, "-t", strconv.Itoa(int(timeout.Milliseconds())))
	}

	args = append(args, "-a", "trackline")
	args = append(args, title)
	if body != "" {
		args = append(args, body)
	}

	cmd := exec.Command("notify-send", args...)
	return cmd.Run()
}

// SendDeadlineReminder sends a due or overdue reminder for a task
func (n *Notifier) SendDeadlineReminder(taskTitle string, overdue bool) error {
	body := "Task is due today"
	urgency := UrgencyNormal
	if overdue {
		body = "Task is overdue!"
		urgency = UrgencyCritical
	}
	return n.Send(taskTitle, body, urgency, 15*time.Second)
}
