package workflow

// Grant decides whether an actor may request a transition on a document.
// Grants are pure functions of role, ownership and state; they never touch
// storage or the completeness evaluator.
type Grant func(doc DocumentInfo, actor Actor) bool

// GrantRoles grants the transition to actors holding any of the given roles.
func GrantRoles(roles ...Role) Grant {
	return func(_ DocumentInfo, actor Actor) bool {
		return actor.HasRole(roles...)
	}
}

// GrantOwner grants the transition to the document's owner.
func GrantOwner() Grant {
	return func(doc DocumentInfo, actor Actor) bool {
		return doc.GetOwnerID() == actor.ID
	}
}

// GrantAny combines grants with logical OR.
func GrantAny(grants ...Grant) Grant {
	return func(doc DocumentInfo, actor Actor) bool {
		for _, g := range grants {
			if g(doc, actor) {
				return true
			}
		}
		return false
	}
}

// Resolver computes the set of transitions an actor is authorized to
// request on a document right now. One resolver per document variant,
// configured with the variant's ruleset and per-transition grants.
type Resolver struct {
	rules  *Ruleset
	grants map[Transition]Grant
}

// NewResolver creates a resolver over the given table and grants.
// Transitions without a grant entry are never authorized for actors.
func NewResolver(rules *Ruleset, grants map[Transition]Grant) *Resolver {
	return &Resolver{rules: rules, grants: grants}
}

// Authorized returns the transition names the actor may legally request
// from the document's current state, in table declaration order.
// System-only transitions are never included.
func (r *Resolver) Authorized(doc DocumentInfo, actor Actor) []Transition {
	var out []Transition
	for _, rule := range r.rules.From(doc.GetState()) {
		if rule.SystemOnly {
			continue
		}
		if r.Grants(rule.Name, doc, actor) {
			out = append(out, rule.Name)
		}
	}
	return out
}

// Grants reports whether the actor holds the named transition's grant.
func (r *Resolver) Grants(name Transition, doc DocumentInfo, actor Actor) bool {
	grant, ok := r.grants[name]
	return ok && grant(doc, actor)
}
