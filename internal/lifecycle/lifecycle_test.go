package lifecycle

import (
	"fmt"
	"time"

	"github.com/dori/trackline/internal/model"
	"github.com/dori/trackline/internal/store"
)

// newTestCore builds a core over a memory store with a deterministic
// clock (each reading advances one second) and sequential IDs.
func newTestCore() *Core {
	c := NewCore(store.NewMemory())

	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	n := 0
	c.newID = func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
	return c
}

func mustCreateProject(c *Core, name string) *model.Project {
	p, err := NewProjects(c).Create(ProjectInput{
		Name:      name,
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC),
	}, "creator")
	if err != nil {
		panic(err)
	}
	return p
}
