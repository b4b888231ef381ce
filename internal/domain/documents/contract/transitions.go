package contract

import (
	"contratia/internal/domain/workflow"
)

// Rules is the Contract transition table. Cancel is reachable from every
// non-terminal state; completion is date-driven only.
func Rules() *workflow.Ruleset {
	return workflow.NewRuleset(workflow.KindContract,
		workflow.Rule{From: StateDraft, Name: workflow.TransitionApprove, To: StateActive},
		workflow.Rule{From: StateDraft, Name: workflow.TransitionReturn, To: StateReturned, RequiresComment: true, SetsComment: true},
		workflow.Rule{From: StateReturned, Name: workflow.TransitionResubmit, To: StateDraft, ClearsComment: true},
		workflow.Rule{From: StateDraft, Name: workflow.TransitionCancel, To: StateCancelled},
		workflow.Rule{From: StateReturned, Name: workflow.TransitionCancel, To: StateCancelled},
		workflow.Rule{From: StateActive, Name: workflow.TransitionCancel, To: StateCancelled},
		workflow.Rule{From: StateActive, Name: workflow.TransitionComplete, To: StateCompleted, SystemOnly: true},
	)
}

// Grants maps each actor transition to its permission rule:
// supervisors review drafts, owners resubmit, administrators cancel.
func Grants() map[workflow.Transition]workflow.Grant {
	return map[workflow.Transition]workflow.Grant{
		workflow.TransitionApprove:  workflow.GrantRoles(workflow.RoleSupervisor),
		workflow.TransitionReturn:   workflow.GrantRoles(workflow.RoleSupervisor),
		workflow.TransitionResubmit: workflow.GrantOwner(),
		workflow.TransitionCancel:   workflow.GrantRoles(workflow.RoleSuperAdmin, workflow.RoleAdmin),
	}
}

// NewEngine builds the Contract transition engine.
func NewEngine() *workflow.Engine {
	rules := Rules()
	return workflow.NewEngine(rules, workflow.NewResolver(rules, Grants()))
}

// CanEdit reports whether the actor may modify contract fields directly:
// the owner while the document sits in an editable state, or an
// administrator in any state.
func CanEdit(c *Contract, actor workflow.Actor) bool {
	if actor.IsPrivileged() {
		return true
	}
	return c.IsOwnedBy(actor.ID) && (c.GetState() == StateDraft || c.GetState() == StateReturned)
}

// CanDelete reports whether the actor may hard-delete the contract:
// the owner while still in draft, or an administrator. Supervisors are
// excluded regardless of ownership.
func CanDelete(c *Contract, actor workflow.Actor) bool {
	if actor.IsPrivileged() {
		return true
	}
	if actor.Role == workflow.RoleSupervisor {
		return false
	}
	return c.IsOwnedBy(actor.ID) && c.GetState() == StateDraft
}
