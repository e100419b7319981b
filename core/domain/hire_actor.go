package domain

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor bypasses ownership checks.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
