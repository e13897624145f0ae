package lifecycle

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/dori/trackline/internal/model"
)

func TestCreateSeedsHistory(t *testing.T) {
	core := newTestCore()
	p := mustCreateProject(core, "Alpha")

	if p.Status != model.ProjectActive {
		t.Errorf("Status = %q, want active", p.Status)
	}
	if len(p.StatusHistory) != 1 {
		t.Fatalf("StatusHistory has %d entries, want 1", len(p.StatusHistory))
	}
	h := p.StatusHistory[0]
	if h.Status != model.ProjectActive || h.UserID != "creator" {
		t.Errorf("seed entry = %+v", h)
	}
	if !h.At.Equal(p.CreatedAt) {
		t.Errorf("seed entry at %v, want CreatedAt %v", h.At, p.CreatedAt)
	}
	if len(p.ActivityLog) != 0 {
		t.Errorf("new project has %d activity events, want 0", len(p.ActivityLog))
	}
}

func TestCreateValidation(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)

	cases := []ProjectInput{
		{StartDate: time.Now(), EndDate: time.Now()},
		{Name: "x", EndDate: time.Now()},
		{Name: "x", StartDate: time.Now()},
	}
	for i, input := range cases {
		_, err := projects.Create(input, "u1")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("case %d: err = %v, want ValidationError", i, err)
		}
	}
}

func TestCreateDeduplicatesMembers(t *testing.T) {
	core := newTestCore()
	p, err := NewProjects(core).Create(ProjectInput{
		Name:            "Alpha",
		StartDate:       time.Now(),
		EndDate:         time.Now(),
		AssignedUserIDs: []string{"u1", "u2", "u1"},
	}, "creator")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.AssignedUserIDs, []string{"u1", "u2"}) {
		t.Errorf("AssignedUserIDs = %v", p.AssignedUserIDs)
	}
}

func TestSetStatusMatchesHistoryTail(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.SetStatus(p.ID, model.ProjectOnHold, "u1", "pause")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != model.ProjectOnHold {
		t.Errorf("Status = %q", p.Status)
	}
	last := p.StatusHistory[len(p.StatusHistory)-1]
	if last.Status != p.Status {
		t.Errorf("history tail %q != status %q", last.Status, p.Status)
	}
	if last.UserID != "u1" || last.Note != "pause" {
		t.Errorf("tail entry = %+v", last)
	}
}

func TestSetStatusIdempotent(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.SetStatus(p.ID, model.ProjectOnHold, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	before := len(p.StatusHistory)

	p, err = projects.SetStatus(p.ID, model.ProjectOnHold, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.StatusHistory) != before {
		t.Errorf("repeated SetStatus grew history from %d to %d", before, len(p.StatusHistory))
	}
	if p.Status != model.ProjectOnHold {
		t.Errorf("Status = %q", p.Status)
	}
}

func TestSetStatusReseedsEmptyHistory(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	// Simulate a legacy record with no history
	stored, err := core.loadProjects()
	if err != nil {
		t.Fatal(err)
	}
	stored[0].StatusHistory = nil
	if err := core.saveProjects(stored); err != nil {
		t.Fatal(err)
	}

	p, err = projects.SetStatus(p.ID, model.ProjectCompleted, "u1", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.StatusHistory) != 2 {
		t.Fatalf("history has %d entries, want reseed + transition", len(p.StatusHistory))
	}
	if p.StatusHistory[0].Status != model.ProjectActive {
		t.Errorf("reseed status = %q, want prior status active", p.StatusHistory[0].Status)
	}
	if !p.StatusHistory[0].At.Equal(p.CreatedAt) {
		t.Errorf("reseed at %v, want CreatedAt %v", p.StatusHistory[0].At, p.CreatedAt)
	}
	if p.StatusHistory[1].Status != model.ProjectCompleted {
		t.Errorf("transition status = %q", p.StatusHistory[1].Status)
	}
}

func TestSetStatusUnknownProject(t *testing.T) {
	core := newTestCore()
	_, err := NewProjects(core).SetStatus("missing", model.ProjectOnHold, "u1", "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestUpdateReadOnlyIgnoresFieldsButHonorsStatus(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	if _, err := projects.SetStatus(p.ID, model.ProjectCompleted, "u1", ""); err != nil {
		t.Fatal(err)
	}

	name := "x"
	status := model.ProjectActive
	p, err := projects.Update(p.ID, ProjectPatch{Name: &name, Status: &status}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Alpha" {
		t.Errorf("Name = %q, want unchanged Alpha", p.Name)
	}
	if p.Status != model.ProjectActive {
		t.Errorf("Status = %q, want active", p.Status)
	}
	// The shortcut path bypasses history on purpose
	last := p.StatusHistory[len(p.StatusHistory)-1]
	if last.Status != model.ProjectCompleted {
		t.Errorf("history tail = %q, want completed (shortcut records nothing)", last.Status)
	}
}

func TestUpdateReadOnlyWithoutStatusIsNoop(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	if _, err := projects.SetStatus(p.ID, model.ProjectOnHold, "u1", ""); err != nil {
		t.Fatal(err)
	}

	name := "New"
	p, err := projects.Update(p.ID, ProjectPatch{Name: &name}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Alpha" {
		t.Errorf("Name = %q, want unchanged", p.Name)
	}
}

func TestUpdateRecordsDateChanges(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	oldStart, oldEnd := p.StartDate, p.EndDate
	newStart := oldStart.AddDate(0, 1, 0)
	newEnd := oldEnd.AddDate(0, 1, 0)

	p, err := projects.Update(p.ID, ProjectPatch{StartDate: &newStart, EndDate: &newEnd}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.ActivityLog) != 2 {
		t.Fatalf("activity log has %d events, want 2", len(p.ActivityLog))
	}

	first, second := p.ActivityLog[0], p.ActivityLog[1]
	if first.Type != model.EventDateChange || first.Payload.Field != "start_date" {
		t.Errorf("first event = %+v, want start_date change", first)
	}
	if second.Payload.Field != "end_date" {
		t.Errorf("second event field = %q, want end_date", second.Payload.Field)
	}
	if first.Payload.OldValue != oldStart.Format(time.RFC3339) {
		t.Errorf("OldValue = %q, want %q", first.Payload.OldValue, oldStart.Format(time.RFC3339))
	}
	if first.Payload.NewValue != newStart.Format(time.RFC3339) {
		t.Errorf("NewValue = %q", first.Payload.NewValue)
	}
	if !p.StartDate.Equal(newStart) || !p.EndDate.Equal(newEnd) {
		t.Errorf("dates not applied: %v %v", p.StartDate, p.EndDate)
	}
}

func TestUpdateSameDateNoEvent(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	same := p.StartDate
	p, err := projects.Update(p.ID, ProjectPatch{StartDate: &same}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.ActivityLog) != 0 {
		t.Errorf("unchanged date appended %d events", len(p.ActivityLog))
	}
}

func TestAssignMembersLogsDiff(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.AssignMembers(p.ID, []string{"u1", "u2"}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	base := len(p.ActivityLog)

	p, err = projects.AssignMembers(p.ID, []string{"u2", "u3"}, "admin")
	if err != nil {
		t.Fatal(err)
	}

	added := p.ActivityLog[base:]
	if len(added) != 2 {
		t.Fatalf("got %d new events, want removed+added", len(added))
	}
	if added[0].Type != model.EventMemberRemoved || added[0].Payload.UserID != "u1" {
		t.Errorf("first event = %+v, want member_removed u1", added[0])
	}
	if added[1].Type != model.EventMemberAdded || added[1].Payload.UserID != "u3" {
		t.Errorf("second event = %+v, want member_added u3", added[1])
	}
	if !reflect.DeepEqual(p.AssignedUserIDs, []string{"u2", "u3"}) {
		t.Errorf("AssignedUserIDs = %v", p.AssignedUserIDs)
	}
}

func TestAssignMembersSameSetNoEvents(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.AssignMembers(p.ID, []string{"u1", "u2"}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	before := len(p.ActivityLog)

	p, err = projects.AssignMembers(p.ID, []string{"u2", "u1", "u1"}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.ActivityLog) != before {
		t.Errorf("no-op assignment appended %d events", len(p.ActivityLog)-before)
	}
}

func TestAssignMembersDeduplicatesInput(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.AssignMembers(p.ID, []string{"u1", "u1", "u2", "u2"}, "admin")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(p.AssignedUserIDs, []string{"u1", "u2"}) {
		t.Errorf("AssignedUserIDs = %v", p.AssignedUserIDs)
	}
}

func TestAddMilestone(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.AddMilestone(p.ID, "Beta shipped", "u1", "v0.2")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.ActivityLog) != 1 {
		t.Fatalf("activity log has %d events", len(p.ActivityLog))
	}
	ev := p.ActivityLog[0]
	if ev.Type != model.EventMilestone || ev.Payload.Title != "Beta shipped" || ev.Note != "v0.2" {
		t.Errorf("event = %+v", ev)
	}
	if len(p.StatusHistory) != 1 {
		t.Errorf("milestone touched status history: %d entries", len(p.StatusHistory))
	}
}

func TestRecordActivityAssignsIDAndTimestamp(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Alpha")

	p, err := projects.RecordActivity(p.ID, model.Event{
		Type:    model.EventTaskMilestone,
		Payload: model.EventPayload{TaskID: "t1", Message: "done"},
	}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	ev := p.ActivityLog[0]
	if ev.ID == "" || ev.At.IsZero() {
		t.Errorf("event missing ID or timestamp: %+v", ev)
	}
	if ev.UserID != "u1" {
		t.Errorf("UserID = %q", ev.UserID)
	}
	if ev.Payload.TaskID != "t1" || ev.Payload.Message != "done" {
		t.Errorf("payload not preserved: %+v", ev.Payload)
	}
}

func TestRemoveCascadesTasks(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	tasks := NewTasks(core)
	session := model.Session{UserID: "u1", Role: model.RoleAdmin}

	p1 := mustCreateProject(core, "Alpha")
	p2 := mustCreateProject(core, "Beta")

	if _, err := tasks.Create(TaskInput{ProjectID: p1.ID, Title: "a"}, session); err != nil {
		t.Fatal(err)
	}
	if _, err := tasks.Create(TaskInput{ProjectID: p1.ID, Title: "b"}, session); err != nil {
		t.Fatal(err)
	}
	keep, err := tasks.Create(TaskInput{ProjectID: p2.ID, Title: "c"}, session)
	if err != nil {
		t.Fatal(err)
	}

	if err := projects.Remove(p1.ID); err != nil {
		t.Fatal(err)
	}

	if got, _ := projects.Get(p1.ID); got != nil {
		t.Error("project still present after Remove")
	}
	remaining, err := tasks.All()
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Errorf("remaining tasks = %+v, want only task of Beta", remaining)
	}
}

func TestRemoveUnknownProject(t *testing.T) {
	core := newTestCore()
	err := NewProjects(core).Remove("missing")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestOnHoldScenario(t *testing.T) {
	core := newTestCore()
	projects := NewProjects(core)
	p := mustCreateProject(core, "Original")

	if _, err := projects.SetStatus(p.ID, model.ProjectOnHold, "u1", ""); err != nil {
		t.Fatal(err)
	}

	name := "New"
	p, err := projects.Update(p.ID, ProjectPatch{Name: &name}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Original" {
		t.Errorf("Name = %q, want Original", p.Name)
	}

	status := model.ProjectActive
	p, err = projects.Update(p.ID, ProjectPatch{Status: &status}, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != model.ProjectActive {
		t.Errorf("Status = %q, want active", p.Status)
	}
}
