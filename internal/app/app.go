package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dori/trackline/internal/lifecycle"
	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/notify"
	"github.com/dori/trackline/internal/store"
	"github.com/gofrs/flock"
)

// App holds the application state and dependencies
type App struct {
	Store    store.Store
	Projects *lifecycle.Projects
	Tasks    *lifecycle.Tasks
	Users    *lifecycle.Users
	Scanner  *notify.Scanner
	Notifier *notify.Notifier
	DataDir  string
	lockFile *flock.Flock
}

// Config holds application configuration
type Config struct {
	DataDir string
	DBPath  string
}

// DefaultConfig returns the default application configuration
func DefaultConfig() *Config {
	dataDir := store.DefaultDataDir()
	return &Config{
		DataDir: dataDir,
		DBPath:  filepath.Join(dataDir, "trackline.db"),
	}
}

// New creates a new application instance
func New(cfg *Config) (*App, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{
		DataDir:  cfg.DataDir,
		Notifier: notify.NewNotifier(),
	}

	// Single instance only; the store rewrites whole collections
	if err := a.acquireLock(); err != nil {
		return nil, err
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		a.releaseLock()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.attach(st)

	return a, nil
}

// NewWithStore wires the managers over an existing store. No lock file
// is taken; intended for tests and dry runs over a memory store.
func NewWithStore(st store.Store) *App {
	a := &App{Notifier: notify.NewNotifier()}
	a.attach(st)
	return a
}

func (a *App) attach(st store.Store) {
	core := lifecycle.NewCore(st)
	a.Store = st
	a.Projects = lifecycle.NewProjects(core)
	a.Tasks = lifecycle.NewTasks(core)
	a.Users = lifecycle.NewUsers(core)
	a.Scanner = notify.NewScanner(st)
	a.Scanner.SetDesktop(a.Notifier)
}

// CompleteTask moves a task into the completed state and, when the
// task actually entered it, records a task_milestone event on the
// owning project. The task manager itself has no project-log access,
// so the crossover lives here.
func (a *App) CompleteTask(taskID string, session model.Session) (*model.Task, error) {
	prev, err := a.Tasks.Get(taskID)
	if err != nil {
		return nil, err
	}
	if prev == nil {
		return nil, &lifecycle.NotFoundError{Kind: "task", ID: taskID}
	}
	wasCompleted := prev.Status == model.TaskCompleted

	task, err := a.Tasks.MoveStatus(taskID, model.TaskCompleted, session)
	if err != nil {
		return nil, err
	}

	if !wasCompleted {
		_, err = a.Projects.RecordActivity(task.ProjectID, model.Event{
			Type: model.EventTaskMilestone,
			Payload: model.EventPayload{
				TaskID:  task.ID,
				Message: fmt.Sprintf("Task %q completed", task.Title),
			},
		}, session.UserID)
		if err != nil {
			return nil, err
		}
	}
	return task, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.DataDir, "trackline.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return fmt.Errorf("another instance of trackline is already running")
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close store: %w", err))
		}
	}

	a.releaseLock()

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
