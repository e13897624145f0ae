package notify

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/store"
)

func seedTasks(t *testing.T, st store.Store, tasks []model.Task) {
	t.Helper()
	data, err := json.Marshal(tasks)
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Save(store.KeyTasks, data); err != nil {
		t.Fatal(err)
	}
}

func loadNotifications(t *testing.T, st store.Store) []model.Notification {
	t.Helper()
	data, err := st.List(store.KeyNotifications)
	if err != nil {
		t.Fatal(err)
	}
	var out []model.Notification
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	return out
}

func newTestScanner(st store.Store) *Scanner {
	s := NewScanner(st)
	n := 0
	s.newID = func() string {
		n++
		return string(rune('a' + n))
	}
	return s
}

func TestRunDeadlineCheckCreatesNotifications(t *testing.T) {
	st := store.NewMemory()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -2)
	today := time.Date(2024, 3, 15, 23, 0, 0, 0, time.UTC)
	future := now.AddDate(0, 0, 3)

	seedTasks(t, st, []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "Late", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &overdue},
		{ID: "t2", ProjectID: "p1", Title: "Today", AssigneeID: "u2", Status: model.TaskInProgress, Deadline: &today},
		{ID: "t3", ProjectID: "p1", Title: "Future", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &future},
		{ID: "t4", ProjectID: "p1", Title: "Done", AssigneeID: "u1", Status: model.TaskCompleted, Deadline: &overdue},
		{ID: "t5", ProjectID: "p1", Title: "No deadline", AssigneeID: "u1", Status: model.TaskTodo},
		{ID: "t6", ProjectID: "p1", Title: "Unassigned", Status: model.TaskTodo, Deadline: &overdue},
	})

	scanner := newTestScanner(st)
	created, err := scanner.RunDeadlineCheck(now)
	if err != nil {
		t.Fatal(err)
	}
	if created != 2 {
		t.Fatalf("created = %d, want 2", created)
	}

	notifications := loadNotifications(t, st)
	if len(notifications) != 2 {
		t.Fatalf("stored %d notifications, want 2", len(notifications))
	}
	byTask := make(map[string]model.Notification)
	for _, n := range notifications {
		byTask[n.TaskID] = n
	}
	if n := byTask["t1"]; n.UserID != "u1" || n.Type != model.NotificationDeadline {
		t.Errorf("t1 notification = %+v", n)
	}
	if n := byTask["t2"]; n.UserID != "u2" {
		t.Errorf("t2 notification = %+v", n)
	}
}

func TestRunDeadlineCheckDedupSameDay(t *testing.T) {
	st := store.NewMemory()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)

	seedTasks(t, st, []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "Late", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &overdue},
	})

	scanner := newTestScanner(st)
	if _, err := scanner.RunDeadlineCheck(now); err != nil {
		t.Fatal(err)
	}
	created, err := scanner.RunDeadlineCheck(now.Add(4 * time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if created != 0 {
		t.Errorf("second scan same day created %d notifications", created)
	}
	if got := loadNotifications(t, st); len(got) != 1 {
		t.Errorf("stored %d notifications, want 1", len(got))
	}
}

func TestRunDeadlineCheckNotifiesAgainNextDay(t *testing.T) {
	st := store.NewMemory()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)

	seedTasks(t, st, []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "Late", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &overdue},
	})

	scanner := newTestScanner(st)
	if _, err := scanner.RunDeadlineCheck(now); err != nil {
		t.Fatal(err)
	}
	created, err := scanner.RunDeadlineCheck(now.AddDate(0, 0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if created != 1 {
		t.Errorf("next-day scan created %d notifications, want 1", created)
	}
}

func TestRunDeadlineCheckDoesNotTouchTasks(t *testing.T) {
	st := store.NewMemory()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)

	seedTasks(t, st, []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "Late", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &overdue},
	})
	before, err := st.List(store.KeyTasks)
	if err != nil {
		t.Fatal(err)
	}

	scanner := newTestScanner(st)
	if _, err := scanner.RunDeadlineCheck(now); err != nil {
		t.Fatal(err)
	}

	after, err := st.List(store.KeyTasks)
	if err != nil {
		t.Fatal(err)
	}
	if string(before) != string(after) {
		t.Error("scan mutated the tasks collection")
	}
}

func TestForUser(t *testing.T) {
	st := store.NewMemory()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	overdue := now.AddDate(0, 0, -1)

	seedTasks(t, st, []model.Task{
		{ID: "t1", ProjectID: "p1", Title: "A", AssigneeID: "u1", Status: model.TaskTodo, Deadline: &overdue},
		{ID: "t2", ProjectID: "p1", Title: "B", AssigneeID: "u2", Status: model.TaskTodo, Deadline: &overdue},
	})

	scanner := newTestScanner(st)
	if _, err := scanner.RunDeadlineCheck(now); err != nil {
		t.Fatal(err)
	}

	mine, err := scanner.ForUser("u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].TaskID != "t1" {
		t.Errorf("ForUser(u1) = %+v", mine)
	}
}
