package workflow

import (
	"contratia/internal/core/id"
)

// State is a lifecycle state of a document variant.
type State string

// Transition is a named, table-defined state change.
type Transition string

// Contract transitions.
const (
	TransitionApprove  Transition = "approve"
	TransitionReturn   Transition = "return"
	TransitionResubmit Transition = "resubmit"
	TransitionCancel   Transition = "cancel"
	// TransitionComplete is system-driven (date sweep); never actor-requestable.
	TransitionComplete Transition = "complete"
)

// BillingAccount transitions. Approve is shared with Contract.
const (
	TransitionSubmit             Transition = "submit"
	TransitionReject             Transition = "reject"
	TransitionMarkPaid           Transition = "mark_paid"
	TransitionReturnToSupervisor Transition = "return_to_supervisor"
	TransitionDelete             Transition = "delete"
)

// Kind identifies the document variant a ruleset belongs to.
type Kind string

const (
	KindContract       Kind = "contract"
	KindBillingAccount Kind = "billing_account"
)

// DocumentInfo is the read-only view of a document the resolver and the
// engine operate on. Implemented by contract.Contract and billing.Account.
type DocumentInfo interface {
	GetID() id.ID
	GetOwnerID() string
	GetState() State
	GetKind() Kind
}

// Rule is one edge of the transition table:
// (From, Name) -> To, plus the gates and side effects the engine enforces.
type Rule struct {
	From State
	Name Transition
	To   State

	// RequiresComment rejects the transition unless the payload carries
	// non-empty free text (reject, return).
	RequiresComment bool

	// RequiresCompleteness gates the transition on the completeness
	// evaluator reporting all sections complete (submit).
	RequiresCompleteness bool

	// ClearsComment removes the prior review comment once the document
	// re-enters review (resubmission semantics).
	ClearsComment bool

	// SetsComment stores the payload comment as the document's review comment.
	SetsComment bool

	// RecordsReview appends one entry to the review ledger (approve, reject).
	RecordsReview bool

	// SystemOnly marks date-driven transitions that bypass the permission
	// resolver and are never granted to actors.
	SystemOnly bool

	// Deletes marks transitions that remove the document instead of
	// writing a new state.
	Deletes bool
}

// Ruleset is the full transition table of one document variant.
type Ruleset struct {
	kind  Kind
	rules []Rule
}

// NewRuleset builds a table for the given document kind.
func NewRuleset(kind Kind, rules ...Rule) *Ruleset {
	return &Ruleset{kind: kind, rules: rules}
}

// Kind returns the document variant this table governs.
func (rs *Ruleset) Kind() Kind {
	return rs.kind
}

// Find returns the rule for (from, name), if the edge exists.
func (rs *Ruleset) Find(from State, name Transition) (Rule, bool) {
	for _, r := range rs.rules {
		if r.From == from && r.Name == name {
			return r, true
		}
	}
	return Rule{}, false
}

// From returns every rule leaving the given state, in declaration order.
func (rs *Ruleset) From(from State) []Rule {
	var out []Rule
	for _, r := range rs.rules {
		if r.From == from {
			out = append(out, r)
		}
	}
	return out
}

// Payload carries transition-specific data supplied by the caller.
type Payload struct {
	// Comment is the reviewer's free text (required for reject/return).
	// The core treats it as opaque; presentation-layer conventions such
	// as bracketed section prefixes are not parsed here.
	Comment string
}
