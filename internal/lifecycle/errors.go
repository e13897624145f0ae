package lifecycle

import (
	"fmt"
)

// NotFoundError reports that an entity ID does not exist in its collection
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ReadOnlyError reports a blocked mutation on an on-hold or completed
// project, or on a task under one.
type ReadOnlyError struct {
	ProjectID string
}

func (e *ReadOnlyError) Error() string {
	return fmt.Sprintf("project %q is read-only", e.ProjectID)
}

// ValidationError reports a malformed creation payload
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// AuthorizationError reports a mutation attempted by a caller who is
// neither an admin nor the entity's owner.
type AuthorizationError struct {
	UserID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("user %q is not allowed to perform this action", e.UserID)
}
