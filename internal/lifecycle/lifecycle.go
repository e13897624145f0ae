package lifecycle

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/store"
	"github.com/google/uuid"
)

// Core holds the shared state behind the lifecycle managers. The store
// offers only whole-collection replace with no transactions, so every
// read-modify-write cycle runs under one mutex to keep public
// operations atomic.
type Core struct {
	store store.Store
	mu    sync.Mutex
	now   func() time.Time
	newID func() string
}

// NewCore creates the shared core for a store
func NewCore(s store.Store) *Core {
	return &Core{
		store: s,
		now:   time.Now,
		newID: func() string { return uuid.New().String() },
	}
}

func (c *Core) loadProjects() ([]model.Project, error) {
	data, err := c.store.List(store.KeyProjects)
	if err != nil {
		return nil, err
	}
	var projects []model.Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

func (c *Core) saveProjects(projects []model.Project) error {
	data, err := json.Marshal(projects)
	if err != nil {
		return fmt.Errorf("failed to encode projects: %w", err)
	}
	return c.store.Save(store.KeyProjects, data)
}

func (c *Core) loadTasks() ([]model.Task, error) {
	data, err := c.store.List(store.KeyTasks)
	if err != nil {
		return nil, err
	}
	var tasks []model.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (c *Core) saveTasks(tasks []model.Task) error {
	data, err := json.Marshal(tasks)
	if err != nil {
		return fmt.Errorf("failed to encode tasks: %w", err)
	}
	return c.store.Save(store.KeyTasks, data)
}

func (c *Core) loadUsers() ([]model.User, error) {
	data, err := c.store.List(store.KeyUsers)
	if err != nil {
		return nil, err
	}
	var users []model.User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func findProject(projects []model.Project, id string) int {
	for i := range projects {
		if projects[i].ID == id {
			return i
		}
	}
	return -1
}

func findTask(tasks []model.Task, id string) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}
