package model

import "fmt"

// Role distinguishes user sessions from admin sessions.
type Role string

// Roles.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Principal is the authenticated identity of a request.
type Principal struct {
	Role      Role   `json:"role"`
	ID        uint   `json:"id"`
	SessionID string `json:"sid"`
}

// IsUser reports whether the principal is a competitor.
func (p Principal) IsUser() bool {
	return p.Role == RoleUser
}

// IsAdmin reports whether the principal is an administrator.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Principal) String() string {
	return fmt.Sprintf("%s:%d", p.Role, p.ID)
}
