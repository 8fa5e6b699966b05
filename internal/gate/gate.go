// Package gate decides whether the current session may render a console view.
package gate

import (
	"github.com/partyplanning/console/internal/domain"
	"github.com/partyplanning/console/internal/session"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
	RedirectToUnauthorized
)

// Paths the gate redirects to.
const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
	HomePath         = "/"
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_login"
	case RedirectToUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Location returns the redirect target, or "" for Allow.
func (d Decision) Location() string {
	switch d {
	case RedirectToLogin:
		return LoginPath
	case RedirectToUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}

// RoleSet is the set of roles a view admits. An empty set marks a public view.
type RoleSet map[domain.Role]struct{}

// NewRoleSet builds a set from roles.
func NewRoleSet(roles ...domain.Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether r is in the set.
func (s RoleSet) Has(r domain.Role) bool {
	_, ok := s[r]
	return ok
}

// Decide checks sess against required. Public views are always allowed;
// anyone not signed in goes to login; a signed-in user without a required
// role goes to the unauthorized page. Decide has no side effects.
func Decide(sess session.Session, required RoleSet) Decision {
	if len(required) == 0 {
		return Allow
	}
	if !sess.Authenticated() {
		return RedirectToLogin
	}
	if !required.Has(sess.User.Role) {
		return RedirectToUnauthorized
	}
	return Allow
}

// DefaultRoute is the landing view for a freshly signed-in role.
func DefaultRoute(role domain.Role) string {
	switch role {
	case domain.RoleAdmin:
		return "/admin/dashboard"
	case domain.RoleManager:
		return "/manager/dashboard"
	case domain.RoleStaff:
		return "/staff/dashboard"
	default:
		return HomePath
	}
}
