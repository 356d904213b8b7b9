package common

import (
	"fmt"
	"strings"
)

// Role is the kind of account a user holds.
type Role string

const (
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every known role.
var Roles = []Role{RoleTeacher, RoleStudent}

// ParseRole converts s into a Role, ignoring case and surrounding spaces.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleTeacher || r == RoleStudent
}

// DashboardPath is the default landing screen for the role.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

func (r Role) String() string { return string(r) }
