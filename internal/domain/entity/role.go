package entity

import "slices"

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleUser indicates a regular catalog contributor.
	RoleUser Role = "user"
	// RoleAdmin indicates a moderator allowed to review proposals.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// RolesFromStrings converts []string to Roles, filtering out invalid role strings.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}

// Identity is what the identity provider vouches for on every request.
type Identity struct {
	UserID  string
	IsAdmin bool
}

// NewIdentity derives the admin flag from the caller's roles.
func NewIdentity(userID string, roles Roles) Identity {
	return Identity{UserID: userID, IsAdmin: roles.Contains(RoleAdmin)}
}
