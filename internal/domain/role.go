package domain

import "strings"

// Role is the access category attached to a console account.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	// RoleCustomer is the implicit role of anonymous visitors on public views.
	RoleCustomer Role = "customer"
)

// ParseRole normalizes a stored role name. Unknown names are returned as-is so
// callers can still reject them.
func ParseRole(raw string) Role {
	return Role(strings.ToLower(strings.TrimSpace(raw)))
}

// Known reports whether r is one of the account roles that can sign in.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleStaff:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}
