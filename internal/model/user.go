package model

// Role represents a user's authorization level
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// User represents an account known to the tracker
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Session identifies the acting user for a mutating operation. It is
// passed explicitly; there is no ambient current-user state.
type Session struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the session belongs to an administrator
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}
