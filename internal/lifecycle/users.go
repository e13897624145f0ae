package lifecycle

import (
	"github.com/dori/trackline/internal/model"
)

// Users provides read access to the user collection. Accounts are
// managed externally; the engine only resolves them for display and
// authorization.
type Users struct {
	core *Core
}

// NewUsers creates the user lookup
func NewUsers(core *Core) *Users {
	return &Users{core: core}
}

// All returns every known user
func (u *Users) All() ([]model.User, error) {
	u.core.mu.Lock()
	defer u.core.mu.Unlock()
	return u.core.loadUsers()
}

// Get returns a single user by ID, or nil if unknown
func (u *Users) Get(id string) (*model.User, error) {
	u.core.mu.Lock()
	defer u.core.mu.Unlock()

	users, err := u.core.loadUsers()
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}
