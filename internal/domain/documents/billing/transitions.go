package billing

import (
	"contratia/internal/domain/workflow"
)

// Rules is the BillingAccount transition table. Submit is the only
// completeness-gated transition; approve and reject each append one
// review ledger entry.
func Rules() *workflow.Ruleset {
	return workflow.NewRuleset(workflow.KindBillingAccount,
		workflow.Rule{From: StateBorrador, Name: workflow.TransitionSubmit, To: StatePendienteRevision, RequiresCompleteness: true, ClearsComment: true},
		workflow.Rule{From: StateRechazada, Name: workflow.TransitionSubmit, To: StatePendienteRevision, RequiresCompleteness: true, ClearsComment: true},
		workflow.Rule{From: StatePendienteRevision, Name: workflow.TransitionApprove, To: StateAprobada, ClearsComment: true, RecordsReview: true},
		workflow.Rule{From: StatePendienteRevision, Name: workflow.TransitionReject, To: StateRechazada, RequiresComment: true, SetsComment: true, RecordsReview: true},
		workflow.Rule{From: StateAprobada, Name: workflow.TransitionMarkPaid, To: StateCausada},
		workflow.Rule{From: StateAprobada, Name: workflow.TransitionReturnToSupervisor, To: StatePendienteRevision},
		workflow.Rule{From: StateBorrador, Name: workflow.TransitionDelete, Deletes: true},
	)
}

// Grants maps each actor transition to its permission rule: owners
// submit, supervisors review, treasury settles, owners or administrators
// delete drafts.
func Grants() map[workflow.Transition]workflow.Grant {
	return map[workflow.Transition]workflow.Grant{
		workflow.TransitionSubmit:             workflow.GrantOwner(),
		workflow.TransitionApprove:            workflow.GrantRoles(workflow.RoleSupervisor),
		workflow.TransitionReject:             workflow.GrantRoles(workflow.RoleSupervisor),
		workflow.TransitionMarkPaid:           workflow.GrantRoles(workflow.RoleTreasury),
		workflow.TransitionReturnToSupervisor: workflow.GrantRoles(workflow.RoleTreasury),
		workflow.TransitionDelete:             workflow.GrantAny(workflow.GrantOwner(), workflow.GrantRoles(workflow.RoleSuperAdmin, workflow.RoleAdmin)),
	}
}

// NewEngine builds the BillingAccount transition engine.
func NewEngine() *workflow.Engine {
	rules := Rules()
	return workflow.NewEngine(rules, workflow.NewResolver(rules, Grants()))
}

// CanEdit reports whether the actor may modify account fields directly:
// the owner while the account sits in an editable state, or an
// administrator in any state.
func CanEdit(a *Account, actor workflow.Actor) bool {
	if actor.IsPrivileged() {
		return true
	}
	return a.IsOwnedBy(actor.ID) && (a.GetState() == StateBorrador || a.GetState() == StateRechazada)
}

// CanDelete reports whether the actor may hard-delete the account:
// the owner while still in borrador, or an administrator. Supervisors
// are excluded regardless of ownership.
func CanDelete(a *Account, actor workflow.Actor) bool {
	if actor.IsPrivileged() {
		return true
	}
	if actor.Role == workflow.RoleSupervisor {
		return false
	}
	return a.IsOwnedBy(actor.ID) && a.GetState() == StateBorrador
}
