package lifecycle

import (
	"time"

	"github.com/dori/trackline/internal/model"
)

// Projects manages project CRUD, status transitions and the append-only
// status history and activity log.
type Projects struct {
	core *Core
}

// NewProjects creates the project manager
func NewProjects(core *Core) *Projects {
	return &Projects{core: core}
}

// ProjectInput is the payload for creating a project
type ProjectInput struct {
	Name            string
	Description     string
	StartDate       time.Time
	EndDate         time.Time
	AssignedUserIDs []string
	Attachments     []string
}

// ProjectPatch is a partial update; nil fields are left untouched
type ProjectPatch struct {
	Name        *string
	Description *string
	Status      *model.ProjectStatus
	StartDate   *time.Time
	EndDate     *time.Time
	Attachments *[]string
}

// All returns every stored project
func (p *Projects) All() ([]model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()
	return p.core.loadProjects()
}

// Get returns a single project by ID, or nil if it does not exist
func (p *Projects) Get(id string) (*model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, id)
	if i < 0 {
		return nil, nil
	}
	return &projects[i], nil
}

// Create validates the payload and stores a new active project with a
// seeded status history.
func (p *Projects) Create(input ProjectInput, createdByUserID string) (*model.Project, error) {
	if input.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if input.StartDate.IsZero() {
		return nil, &ValidationError{Field: "start_date", Reason: "must be set"}
	}
	if input.EndDate.IsZero() {
		return nil, &ValidationError{Field: "end_date", Reason: "must be set"}
	}

	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}

	now := p.core.now()
	proj := model.Project{
		ID:              p.core.newID(),
		Name:            input.Name,
		Description:     input.Description,
		Status:          model.ProjectActive,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		AssignedUserIDs: dedupIDs(input.AssignedUserIDs),
		CreatedAt:       now,
		StatusHistory: []model.StatusEntry{
			{Status: model.ProjectActive, At: now, UserID: createdByUserID},
		},
		ActivityLog: []model.Event{},
		Attachments: input.Attachments,
	}

	projects = append(projects, proj)
	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return &proj, nil
}

// Update applies a partial update. On a read-only project only a status
// patch is honored; every other field is silently ignored. The status
// shortcut overwrites the field without recording a history entry,
// which is the one path where a status change bypasses SetStatus.
// Date changes on a writable project are recorded as date_change events
// before the field is overwritten, start date first.
func (p *Projects) Update(id string, patch ProjectPatch, userID string) (*model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, id)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: id}
	}
	proj := &projects[i]

	if proj.ReadOnly() {
		if patch.Status == nil {
			return proj, nil
		}
		proj.Status = *patch.Status
		if err := p.core.saveProjects(projects); err != nil {
			return nil, err
		}
		return proj, nil
	}

	now := p.core.now()
	if patch.StartDate != nil && !patch.StartDate.Equal(proj.StartDate) {
		proj.ActivityLog = append(proj.ActivityLog, p.dateChange(now, userID, "start_date", proj.StartDate, *patch.StartDate))
		proj.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil && !patch.EndDate.Equal(proj.EndDate) {
		proj.ActivityLog = append(proj.ActivityLog, p.dateChange(now, userID, "end_date", proj.EndDate, *patch.EndDate))
		proj.EndDate = *patch.EndDate
	}
	if patch.Name != nil {
		proj.Name = *patch.Name
	}
	if patch.Description != nil {
		proj.Description = *patch.Description
	}
	if patch.Attachments != nil {
		proj.Attachments = *patch.Attachments
	}
	if patch.Status != nil {
		proj.Status = *patch.Status
	}

	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return proj, nil
}

func (p *Projects) dateChange(at time.Time, userID, field string, oldValue, newValue time.Time) model.Event {
	return model.Event{
		ID:     p.core.newID(),
		Type:   model.EventDateChange,
		At:     at,
		UserID: userID,
		Payload: model.EventPayload{
			Field:    field,
			OldValue: oldValue.Format(time.RFC3339),
			NewValue: newValue.Format(time.RFC3339),
		},
	}
}

// SetStatus records a status transition in the history and applies it.
// Setting the current status again is idempotent: the field is
// overwritten but no history entry is appended.
func (p *Projects) SetStatus(id string, newStatus model.ProjectStatus, userID, note string) (*model.Project, error) {
	if !newStatus.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown project status"}
	}

	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, id)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: id}
	}
	proj := &projects[i]

	// Older records may carry no history; reseed it with the current
	// status before recording the transition.
	if len(proj.StatusHistory) == 0 {
		at := proj.CreatedAt
		if at.IsZero() {
			at = proj.StartDate
		}
		if at.IsZero() {
			at = p.core.now()
		}
		proj.StatusHistory = []model.StatusEntry{{Status: proj.Status, At: at}}
	}

	if newStatus == proj.Status {
		proj.Status = newStatus
		if err := p.core.saveProjects(projects); err != nil {
			return nil, err
		}
		return proj, nil
	}

	proj.StatusHistory = append(proj.StatusHistory, model.StatusEntry{
		Status: newStatus,
		At:     p.core.now(),
		UserID: userID,
		Note:   note,
	})
	proj.Status = newStatus

	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return proj, nil
}

// AssignMembers replaces the project's membership with the deduplicated
// desired set, logging one event per actual change: removals first,
// then additions. Assigning the current membership logs nothing.
func (p *Projects) AssignMembers(projectID string, desiredUserIDs []string, byUserID string) (*model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, projectID)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}
	proj := &projects[i]

	now := p.core.now()
	diff := DiffMembers(proj.AssignedUserIDs, desiredUserIDs)
	for _, id := range diff.Removed {
		proj.ActivityLog = append(proj.ActivityLog, model.Event{
			ID:      p.core.newID(),
			Type:    model.EventMemberRemoved,
			At:      now,
			UserID:  byUserID,
			Payload: model.EventPayload{UserID: id},
		})
	}
	for _, id := range diff.Added {
		proj.ActivityLog = append(proj.ActivityLog, model.Event{
			ID:      p.core.newID(),
			Type:    model.EventMemberAdded,
			At:      now,
			UserID:  byUserID,
			Payload: model.EventPayload{UserID: id},
		})
	}
	proj.AssignedUserIDs = dedupIDs(desiredUserIDs)

	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return proj, nil
}

// AddMilestone appends a milestone event to the activity log. Status
// and history are untouched.
func (p *Projects) AddMilestone(projectID, title, userID, note string) (*model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, projectID)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}
	proj := &projects[i]

	proj.ActivityLog = append(proj.ActivityLog, model.Event{
		ID:      p.core.newID(),
		Type:    model.EventMilestone,
		At:      p.core.now(),
		UserID:  userID,
		Note:    note,
		Payload: model.EventPayload{Title: title},
	})

	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return proj, nil
}

// RecordActivity appends a collaborator-supplied event to the activity
// log, assigning it an ID and timestamp.
func (p *Projects) RecordActivity(projectID string, event model.Event, userID string) (*model.Project, error) {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, projectID)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}
	proj := &projects[i]

	event.ID = p.core.newID()
	event.At = p.core.now()
	if event.UserID == "" {
		event.UserID = userID
	}
	proj.ActivityLog = append(proj.ActivityLog, event)

	if err := p.core.saveProjects(projects); err != nil {
		return nil, err
	}
	return proj, nil
}

// Remove deletes a project and every task belonging to it. Both
// collections are rewritten under the same lock, so callers never
// observe the tasks gone while the project remains, or the reverse.
func (p *Projects) Remove(id string) error {
	p.core.mu.Lock()
	defer p.core.mu.Unlock()

	projects, err := p.core.loadProjects()
	if err != nil {
		return err
	}
	i := findProject(projects, id)
	if i < 0 {
		return &NotFoundError{Kind: "project", ID: id}
	}

	tasks, err := p.core.loadTasks()
	if err != nil {
		return err
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.ProjectID != id {
			kept = append(kept, t)
		}
	}
	if err := p.core.saveTasks(kept); err != nil {
		return err
	}

	projects = append(projects[:i], projects[i+1:]...)
	return p.core.saveProjects(projects)
}
