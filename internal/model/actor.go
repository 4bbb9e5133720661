package model

import "github.com/google/uuid"

// Actor is the authenticated identity performing an operation. It is built
// once by the auth middleware from verified JWT claims and passed explicitly
// into every service call, never read from ambient state.
type Actor struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	FullName    string    `json:"full_name"`
	RoleCode    string    `json:"role_code"`
	Permissions []string  `json:"permissions"`
}

// IsAdmin reports whether the actor holds direct-mutation rights.
func (a Actor) IsAdmin() bool {
	return a.RoleCode == RoleAdmin
}

// HasPermission checks a capability tag. Admins implicitly hold every
// capability regardless of the assigned set.
func (a Actor) HasPermission(code string) bool {
	if a.IsAdmin() {
		return true
	}
	for _, p := range a.Permissions {
		if p == code {
			return true
		}
	}
	return false
}
