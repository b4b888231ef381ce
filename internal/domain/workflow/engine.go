package workflow

import (
	"strings"

	"contratia/internal/core/apperror"
)

// Outcome is the engine's decision for an accepted transition: the target
// state plus the side-effect instructions the service layer must apply
// atomically with the state write.
type Outcome struct {
	Rule    Rule
	To      State
	Comment string
}

// Engine validates transition requests against one variant's table.
// It is pure: it reads nothing and writes nothing. The service layer
// applies accepted outcomes under a compare-and-swap state write.
type Engine struct {
	rules    *Ruleset
	resolver *Resolver
}

// NewEngine creates an engine over a ruleset and its permission resolver.
func NewEngine(rules *Ruleset, resolver *Resolver) *Engine {
	return &Engine{rules: rules, resolver: resolver}
}

// Resolver exposes the engine's permission resolver for read-side use
// (UI affordances).
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Decide accepts or rejects a requested transition. Gates are checked in
// fixed order: the edge must exist in the table (InvalidTransition), the
// actor must hold the grant (Forbidden), a required comment must be present
// (Validation), and a completeness-gated transition must report all
// sections complete (NotReady). The completeness evaluation is lazy so a
// permission rejection never invokes the evaluator.
func (e *Engine) Decide(
	doc DocumentInfo,
	name Transition,
	actor Actor,
	payload Payload,
	evaluate func() *CompletenessReport,
) (*Outcome, error) {
	rule, ok := e.rules.Find(doc.GetState(), name)
	if !ok {
		return nil, apperror.NewInvalidTransition(string(doc.GetState()), string(name))
	}

	if rule.SystemOnly {
		return nil, apperror.NewForbidden("transition is system-driven").
			WithDetail("transition", string(name))
	}

	if !e.resolver.Grants(name, doc, actor) {
		return nil, apperror.NewForbidden("actor is not allowed to request this transition").
			WithDetail("transition", string(name)).
			WithDetail("role", string(actor.Role))
	}

	comment := strings.TrimSpace(payload.Comment)
	if rule.RequiresComment && comment == "" {
		return nil, apperror.NewValidation("a comment is required for this transition").
			WithDetail("transition", string(name))
	}

	if rule.RequiresCompleteness {
		report := evaluate()
		if report == nil || !report.AllComplete {
			var missing []string
			if report != nil {
				missing = report.MissingMessages()
			}
			return nil, apperror.NewNotReady(missing)
		}
	}

	return &Outcome{Rule: rule, To: rule.To, Comment: comment}, nil
}
