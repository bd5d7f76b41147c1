// Package policy decides what an authenticated caller may do. Handlers and
// the checkout service both ask it before touching tenant data.
package policy

import (
	"errors"

	"goldrefinery/m/domain"
)

var ErrForbidden = errors.New("forbidden")

type Action string

const (
	ManageCompanies Action = "companies.manage"
	ManageUsers     Action = "users.manage"
	ManageWorkers   Action = "workers.manage"
	ManageMachines  Action = "machines.manage"
	ManageProducts  Action = "products.manage"
	ViewProducts    Action = "products.view"
	ViewReports     Action = "reports.view"
	RecordSale      Action = "sales.create"
	ViewSales       Action = "sales.view"
)

// Subject is the authenticated caller.
type Subject struct {
	UserID    int64
	Role      domain.Role
	CompanyID *int64
}

func (s Subject) IsAdmin() bool { return s.Role == domain.RoleAdmin }

var allowed = map[Action][]domain.Role{
	ManageCompanies: {domain.RoleAdmin},
	ManageUsers:     {domain.RoleAdmin, domain.RoleCompanyManager},
	ManageWorkers:   {domain.RoleAdmin, domain.RoleCompanyManager},
	ManageMachines:  {domain.RoleAdmin, domain.RoleCompanyManager},
	ManageProducts:  {domain.RoleAdmin, domain.RoleCompanyManager},
	ViewProducts:    {domain.RoleAdmin, domain.RoleCompanyManager, domain.RoleSalesman},
	ViewReports:     {domain.RoleAdmin, domain.RoleCompanyManager},
	RecordSale:      {domain.RoleAdmin, domain.RoleCompanyManager, domain.RoleSalesman},
	ViewSales:       {domain.RoleAdmin, domain.RoleCompanyManager, domain.RoleSalesman},
}

// Can reports whether the role may perform the action at all.
func Can(s Subject, action Action) bool {
	for _, r := range allowed[action] {
		if r == s.Role {
			return true
		}
	}
	return false
}

// Authorize checks the role gate and, for non-admins, that target belongs to
// the caller's own company. A nil target skips the tenant check.
func Authorize(s Subject, action Action, target *int64) error {
	if !Can(s, action) {
		return ErrForbidden
	}
	if s.IsAdmin() || target == nil {
		return nil
	}
	if s.CompanyID == nil || *s.CompanyID != *target {
		return ErrForbidden
	}
	return nil
}

// Scope is the tenant filter for list and lookup queries: nil for admins,
// the caller's company otherwise.
func Scope(s Subject) *int64 {
	if s.IsAdmin() {
		return nil
	}
	if s.CompanyID == nil {
		// A non-admin without a company sees nothing.
		none := int64(-1)
		return &none
	}
	return s.CompanyID
}

// CanAssignRole reports whether s may create or promote a user to role.
// Only admins hand out the admin role.
func CanAssignRole(s Subject, role domain.Role) bool {
	if !role.Valid() {
		return false
	}
	return s.IsAdmin() || role != domain.RoleAdmin
}
