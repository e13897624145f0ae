package lifecycle

import (
	"time"

	"github.com/dori/trackline/internal/model"
)

// Tasks manages task CRUD and status moves. Whether a task accepts
// edits is always derived from the owning project's state at call time,
// never cached on the task.
type Tasks struct {
	core *Core
}

// NewTasks creates the task manager
func NewTasks(core *Core) *Tasks {
	return &Tasks{core: core}
}

// TaskInput is the payload for creating a task
type TaskInput struct {
	ProjectID   string
	Title       string
	Description string
	AssigneeID  string
	Priority    model.Priority
	Status      model.TaskStatus
	Tags        []string
	Links       []string
	Attachments []string
	Deadline    *time.Time
}

// TaskPatch is a partial update; nil fields are left untouched
type TaskPatch struct {
	Title       *string
	Description *string
	AssigneeID  *string
	Priority    *model.Priority
	Tags        *[]string
	Links       *[]string
	Attachments *[]string
	Deadline    *time.Time
}

// All returns every stored task
func (t *Tasks) All() ([]model.Task, error) {
	t.core.mu.Lock()
	defer t.core.mu.Unlock()
	return t.core.loadTasks()
}

// ByProject returns the tasks belonging to one project
func (t *Tasks) ByProject(projectID string) ([]model.Task, error) {
	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	tasks, err := t.core.loadTasks()
	if err != nil {
		return nil, err
	}
	var out []model.Task
	for _, tk := range tasks {
		if tk.ProjectID == projectID {
			out = append(out, tk)
		}
	}
	return out, nil
}

// Get returns a single task by ID, or nil if it does not exist
func (t *Tasks) Get(id string) (*model.Task, error) {
	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	tasks, err := t.core.loadTasks()
	if err != nil {
		return nil, err
	}
	i := findTask(tasks, id)
	if i < 0 {
		return nil, nil
	}
	return &tasks[i], nil
}

// Create stores a new task under a writable project
func (t *Tasks) Create(input TaskInput, session model.Session) (*model.Task, error) {
	if input.Title == "" {
		return nil, &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if input.ProjectID == "" {
		return nil, &ValidationError{Field: "project_id", Reason: "must be set"}
	}

	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	proj, err := t.findWritableProject(input.ProjectID)
	if err != nil {
		return nil, err
	}

	tasks, err := t.core.loadTasks()
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = model.TaskTodo
	} else if !status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown task status"}
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	now := t.core.now()
	task := model.Task{
		ID:          t.core.newID(),
		ProjectID:   proj.ID,
		Title:       input.Title,
		Description: input.Description,
		AssigneeID:  input.AssigneeID,
		Priority:    priority,
		Status:      status,
		Tags:        dedupIDs(input.Tags),
		Links:       input.Links,
		Attachments: input.Attachments,
		CreatedByID: session.UserID,
		CreatedAt:   now,
		AssignedAt:  now,
		UpdatedAt:   now,
		Deadline:    input.Deadline,
	}

	tasks = append(tasks, task)
	if err := t.core.saveTasks(tasks); err != nil {
		return nil, err
	}
	return &task, nil
}

// Update merges a patch into a task whose project is writable
func (t *Tasks) Update(id string, patch TaskPatch, session model.Session) (*model.Task, error) {
	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	tasks, err := t.core.loadTasks()
	if err != nil {
		return nil, err
	}
	i := findTask(tasks, id)
	if i < 0 {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	task := &tasks[i]

	if _, err := t.findWritableProject(task.ProjectID); err != nil {
		return nil, err
	}

	now := t.core.now()
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.AssigneeID != nil && *patch.AssigneeID != task.AssigneeID {
		task.AssigneeID = *patch.AssigneeID
		task.AssignedAt = now
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Tags != nil {
		task.Tags = dedupIDs(*patch.Tags)
	}
	if patch.Links != nil {
		task.Links = *patch.Links
	}
	if patch.Attachments != nil {
		task.Attachments = *patch.Attachments
	}
	if patch.Deadline != nil {
		task.Deadline = patch.Deadline
	}
	task.UpdatedAt = now

	if err := t.core.saveTasks(tasks); err != nil {
		return nil, err
	}
	return task, nil
}

// MoveStatus sets a task's status. All transitions between the three
// states are permitted, including out of completed. Emitting the
// project-side task_milestone event on completion is the caller's
// responsibility; this manager never touches the project log.
func (t *Tasks) MoveStatus(id string, newStatus model.TaskStatus, session model.Session) (*model.Task, error) {
	if !newStatus.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "unknown task status"}
	}

	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	tasks, err := t.core.loadTasks()
	if err != nil {
		return nil, err
	}
	i := findTask(tasks, id)
	if i < 0 {
		return nil, &NotFoundError{Kind: "task", ID: id}
	}
	task := &tasks[i]

	if _, err := t.findWritableProject(task.ProjectID); err != nil {
		return nil, err
	}

	task.Status = newStatus
	task.UpdatedAt = t.core.now()

	if err := t.core.saveTasks(tasks); err != nil {
		return nil, err
	}
	return task, nil
}

// Remove deletes a task. Only an admin or the task's creator may
// delete it, and never while the owning project is read-only.
func (t *Tasks) Remove(id string, session model.Session) error {
	t.core.mu.Lock()
	defer t.core.mu.Unlock()

	tasks, err := t.core.loadTasks()
	if err != nil {
		return err
	}
	i := findTask(tasks, id)
	if i < 0 {
		return &NotFoundError{Kind: "task", ID: id}
	}
	task := tasks[i]

	if _, err := t.findWritableProject(task.ProjectID); err != nil {
		return err
	}
	if !session.IsAdmin() && task.CreatedByID != session.UserID {
		return &AuthorizationError{UserID: session.UserID}
	}

	tasks = append(tasks[:i], tasks[i+1:]...)
	return t.core.saveTasks(tasks)
}

// findWritableProject loads the current project state and rejects the
// operation when the project is missing or read-only. Callers must
// hold the core lock.
func (t *Tasks) findWritableProject(projectID string) (*model.Project, error) {
	projects, err := t.core.loadProjects()
	if err != nil {
		return nil, err
	}
	i := findProject(projects, projectID)
	if i < 0 {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}
	if projects[i].ReadOnly() {
		return nil, &ReadOnlyError{ProjectID: projectID}
	}
	return &projects[i], nil
}
