// Package views is the console's routing table: every view, its path and
// the roles allowed to open it.
package views

import (
	"github.com/partyplanning/console/internal/domain"
	"github.com/partyplanning/console/internal/gate"
)

// View describes one console page.
type View struct {
	Name  string
	Title string
	Path  string
	Roles gate.RoleSet
}

// Public reports whether the view needs no sign-in.
func (v View) Public() bool {
	return len(v.Roles) == 0
}

var (
	adminOnly    = gate.NewRoleSet(domain.RoleAdmin)
	managerOnly  = gate.NewRoleSet(domain.RoleManager)
	staffOnly    = gate.NewRoleSet(domain.RoleStaff)
	backOffice   = gate.NewRoleSet(domain.RoleAdmin, domain.RoleManager)
	allEmployees = gate.NewRoleSet(domain.RoleAdmin, domain.RoleManager, domain.RoleStaff)
)

// Catalog returns every console view.
func Catalog() []View {
	return []View{
		{Name: "home", Title: "Party Planning", Path: gate.HomePath},
		{Name: "login", Title: "Sign in", Path: gate.LoginPath},
		{Name: "unauthorized", Title: "Access denied", Path: gate.UnauthorizedPath},
		{Name: "menu", Title: "Menu", Path: "/menu"},
		{Name: "combos", Title: "Party combos", Path: "/combos"},

		{Name: "admin-dashboard", Title: "Admin dashboard", Path: "/admin/dashboard", Roles: adminOnly},
		{Name: "admin-users", Title: "User management", Path: "/admin/users", Roles: adminOnly},
		{Name: "admin-menu-items", Title: "Menu items", Path: "/admin/menu-items", Roles: adminOnly},
		{Name: "admin-combos", Title: "Combo management", Path: "/admin/combos", Roles: adminOnly},
		{Name: "admin-pricing-rules", Title: "Pricing rules", Path: "/admin/pricing-rules", Roles: adminOnly},
		{Name: "admin-reviews", Title: "Review moderation", Path: "/admin/reviews", Roles: adminOnly},

		{Name: "manager-dashboard", Title: "Manager dashboard", Path: "/manager/dashboard", Roles: managerOnly},
		{Name: "manager-inventory", Title: "Inventory", Path: "/manager/inventory", Roles: managerOnly},
		{Name: "manager-reviews", Title: "Branch reviews", Path: "/manager/reviews", Roles: managerOnly},

		{Name: "staff-dashboard", Title: "Staff dashboard", Path: "/staff/dashboard", Roles: staffOnly},
		{Name: "staff-tickets", Title: "Support tickets", Path: "/staff/tickets", Roles: staffOnly},

		{Name: "reports", Title: "Reports", Path: "/reports", Roles: backOffice},
		{Name: "loyalty", Title: "Loyalty points", Path: "/loyalty", Roles: allEmployees},
	}
}

// Lookup finds the view registered at path.
func Lookup(path string) (View, bool) {
	for _, v := range Catalog() {
		if v.Path == path {
			return v, true
		}
	}
	return View{}, false
}
