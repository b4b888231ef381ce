// Package workflow implements the document lifecycle state machine: the
// declarative transition tables, the permission resolver and the transition
// engine that gate every state change of a Contract or BillingAccount.
package workflow

import (
	"contratia/internal/core/apperror"
)

// Role is the workflow role an actor holds. Exactly one per actor.
// Role checks are exact, case-sensitive membership tests with no hierarchy.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleAdmin      Role = "admin"
	RoleSupervisor Role = "supervisor"
	RoleTreasury   Role = "treasury"
	RoleEmployee   Role = "employee"
)

// Roles lists every valid role.
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleSupervisor, RoleTreasury, RoleEmployee}

// ParseRole validates a role name.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", apperror.NewValidation("unknown role").WithDetail("role", s)
}

// Actor is the already-resolved identity requesting a transition.
// Threaded explicitly into every core call; the engine never reads
// ambient session state.
type Actor struct {
	ID   string
	Role Role
}

// IsPrivileged reports whether the actor holds one of the administrative
// roles that bypass ownership checks for edit/delete.
func (a Actor) IsPrivileged() bool {
	return a.Role == RoleSuperAdmin || a.Role == RoleAdmin
}

// HasRole reports exact role membership.
func (a Actor) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}
