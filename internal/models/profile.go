package models

import (
	"strings"
	"time"
)

// Role is the closed set of community roles, ordered by privilege.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleModerator:  2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// ParseRole normalises raw into a known role.
func ParseRole(raw string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := roleRank[role]
	return role, ok
}

// Valid reports whether r is one of the declared roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasAtLeast reports whether r ranks at or above min. Unknown roles never qualify.
func (r Role) HasAtLeast(min Role) bool {
	have, ok := roleRank[r]
	if !ok {
		return false
	}
	need, ok := roleRank[min]
	if !ok {
		return false
	}
	return have >= need
}

// Profile is the public identity of a platform user.
type Profile struct {
	ID          string    `db:"id" json:"id" yaml:"id"`
	DisplayName string    `db:"display_name" json:"displayName" yaml:"displayName"`
	Role        Role      `db:"role" json:"role" yaml:"role"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt" yaml:"-"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt" yaml:"-"`
}
