package workflow

import (
	"testing"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
)

// stubDoc implements DocumentInfo for engine tests.
type stubDoc struct {
	id      id.ID
	ownerID string
	state   State
}

func (d *stubDoc) GetID() id.ID       { return d.id }
func (d *stubDoc) GetOwnerID() string { return d.ownerID }
func (d *stubDoc) GetState() State    { return d.state }
func (d *stubDoc) GetKind() Kind      { return Kind("stub") }

func testRuleset() *Ruleset {
	return NewRuleset(Kind("stub"),
		Rule{From: "pending", Name: "approve", To: "approved"},
		Rule{From: "pending", Name: "reject", To: "rejected", RequiresComment: true, SetsComment: true},
		Rule{From: "open", Name: "submit", To: "pending", RequiresCompleteness: true, ClearsComment: true},
		Rule{From: "approved", Name: "expire", To: "expired", SystemOnly: true},
	)
}

func testGrants() map[Transition]Grant {
	return map[Transition]Grant{
		"approve": GrantRoles(RoleSupervisor),
		"reject":  GrantRoles(RoleSupervisor),
		"submit":  GrantOwner(),
	}
}

func newTestEngine() *Engine {
	rules := testRuleset()
	return NewEngine(rules, NewResolver(rules, testGrants()))
}

func completeReport() *CompletenessReport {
	return NewCompletenessReport(
		SectionResult{Name: "Details", Complete: true},
	)
}

func TestDecide_UnknownEdge(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "approved"}

	_, err := e.Decide(doc, "approve", Actor{ID: "s1", Role: RoleSupervisor}, Payload{}, nil)
	if !apperror.IsInvalidTransition(err) {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}

	appErr, _ := apperror.AsAppError(err)
	if appErr.Details["state"] != "approved" || appErr.Details["transition"] != "approve" {
		t.Errorf("details should carry state and transition, got %v", appErr.Details)
	}
}

func TestDecide_SystemOnlyRejectedForEveryActor(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "approved"}

	// Even a super admin cannot request a system-driven transition.
	for _, role := range Roles {
		_, err := e.Decide(doc, "expire", Actor{ID: "a1", Role: role}, Payload{}, nil)
		if !apperror.IsForbidden(err) {
			t.Errorf("role %s: expected FORBIDDEN, got %v", role, err)
		}
	}
}

func TestDecide_PermissionDenied(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "pending"}

	tests := []struct {
		name  string
		actor Actor
	}{
		{"employee", Actor{ID: "u2", Role: RoleEmployee}},
		{"owner without role", Actor{ID: "u1", Role: RoleEmployee}},
		{"treasury", Actor{ID: "t1", Role: RoleTreasury}},
		{"admin not granted", Actor{ID: "a1", Role: RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Decide(doc, "approve", tt.actor, Payload{}, nil)
			if !apperror.IsForbidden(err) {
				t.Fatalf("expected FORBIDDEN, got %v", err)
			}
		})
	}
}

func TestDecide_PermissionCheckedBeforeCompleteness(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "open"}

	evaluated := false
	_, err := e.Decide(doc, "submit", Actor{ID: "intruder", Role: RoleEmployee}, Payload{}, func() *CompletenessReport {
		evaluated = true
		return completeReport()
	})

	if !apperror.IsForbidden(err) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if evaluated {
		t.Error("completeness evaluator must not run for an unauthorized actor")
	}
}

func TestDecide_CommentRequired(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "pending"}
	actor := Actor{ID: "s1", Role: RoleSupervisor}

	// Whitespace-only comments do not count.
	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := e.Decide(doc, "reject", actor, Payload{Comment: comment}, nil)
		appErr, ok := apperror.AsAppError(err)
		if !ok || appErr.Code != apperror.CodeValidation {
			t.Errorf("comment %q: expected VALIDATION_ERROR, got %v", comment, err)
		}
	}

	outcome, err := e.Decide(doc, "reject", actor, Payload{Comment: "  missing signature  "}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.Comment != "missing signature" {
		t.Errorf("expected trimmed comment, got %q", outcome.Comment)
	}
	if !outcome.Rule.SetsComment {
		t.Error("reject rule should set the review comment")
	}
}

func TestDecide_CompletenessGate(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "open"}
	owner := Actor{ID: "u1", Role: RoleEmployee}

	report := NewCompletenessReport(
		SectionResult{Name: "Details", Complete: true},
		SectionResult{Name: "Activities", Complete: false, Missing: []string{"Agregar al menos una actividad"}},
		SectionResult{Name: "Planilla", Complete: false, Missing: []string{"Registrar el número de planilla", "Registrar el valor de la planilla"}},
	)

	_, err := e.Decide(doc, "submit", owner, Payload{}, func() *CompletenessReport { return report })
	if !apperror.IsNotReady(err) {
		t.Fatalf("expected NOT_READY, got %v", err)
	}

	appErr, _ := apperror.AsAppError(err)
	missing, ok := appErr.Details["missing"].([]string)
	if !ok {
		t.Fatalf("missing detail has wrong type: %T", appErr.Details["missing"])
	}
	want := []string{
		"Agregar al menos una actividad",
		"Registrar el número de planilla",
		"Registrar el valor de la planilla",
	}
	if len(missing) != len(want) {
		t.Fatalf("expected %d messages, got %d", len(want), len(missing))
	}
	for i := range want {
		if missing[i] != want[i] {
			t.Errorf("message %d: want %q, got %q", i, want[i], missing[i])
		}
	}
}

func TestDecide_CompletenessPasses(t *testing.T) {
	e := newTestEngine()
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "open"}

	outcome, err := e.Decide(doc, "submit", Actor{ID: "u1", Role: RoleEmployee}, Payload{}, func() *CompletenessReport {
		return completeReport()
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome.To != "pending" {
		t.Errorf("expected target state pending, got %s", outcome.To)
	}
	if !outcome.Rule.ClearsComment {
		t.Error("submit rule should clear the review comment")
	}
}

func TestResolver_Authorized(t *testing.T) {
	rules := testRuleset()
	r := NewResolver(rules, testGrants())

	pending := &stubDoc{id: id.New(), ownerID: "u1", state: "pending"}
	approved := &stubDoc{id: id.New(), ownerID: "u1", state: "approved"}
	open := &stubDoc{id: id.New(), ownerID: "u1", state: "open"}

	tests := []struct {
		name  string
		doc   DocumentInfo
		actor Actor
		want  []Transition
	}{
		{"supervisor on pending", pending, Actor{ID: "s1", Role: RoleSupervisor}, []Transition{"approve", "reject"}},
		{"employee on pending", pending, Actor{ID: "u2", Role: RoleEmployee}, nil},
		{"owner on open", open, Actor{ID: "u1", Role: RoleEmployee}, []Transition{"submit"}},
		{"non-owner on open", open, Actor{ID: "u2", Role: RoleEmployee}, nil},
		{"system-only never listed", approved, Actor{ID: "s1", Role: RoleSupervisor}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Authorized(tt.doc, tt.actor)
			if len(got) != len(tt.want) {
				t.Fatalf("want %v, got %v", tt.want, got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("position %d: want %s, got %s", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestGrantAny(t *testing.T) {
	doc := &stubDoc{id: id.New(), ownerID: "u1", state: "open"}
	grant := GrantAny(GrantOwner(), GrantRoles(RoleAdmin))

	if !grant(doc, Actor{ID: "u1", Role: RoleEmployee}) {
		t.Error("owner should pass")
	}
	if !grant(doc, Actor{ID: "a1", Role: RoleAdmin}) {
		t.Error("admin should pass")
	}
	if grant(doc, Actor{ID: "u2", Role: RoleEmployee}) {
		t.Error("stranger should not pass")
	}
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		if err != nil || got != r {
			t.Errorf("ParseRole(%s) = %v, %v", r, got, err)
		}
	}

	// Role names are exact and case-sensitive.
	for _, bad := range []string{"Admin", "ADMIN", "superadmin", "manager", ""} {
		if _, err := ParseRole(bad); err == nil {
			t.Errorf("ParseRole(%q) should fail", bad)
		}
	}
}
