package review

import (
	"context"
	"encoding/json"
	"testing"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/domain/workflow"
)

type stubDoc struct {
	docID   id.ID
	ownerID string
}

func (d *stubDoc) GetID() id.ID             { return d.docID }
func (d *stubDoc) GetOwnerID() string       { return d.ownerID }
func (d *stubDoc) GetState() workflow.State { return "pendiente_revision" }
func (d *stubDoc) GetKind() workflow.Kind   { return workflow.KindBillingAccount }

type mockRepo struct {
	entries []Entry
}

func (m *mockRepo) Append(ctx context.Context, entry *Entry) error {
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *mockRepo) ListByDocument(ctx context.Context, kind workflow.Kind, docID id.ID) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.DocumentKind == kind && e.DocumentID == docID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepo) ListByReviewer(ctx context.Context, reviewerID string, limit int) ([]Entry, error) {
	var out []Entry
	for _, e := range m.entries {
		if e.ReviewerID == reviewerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestRecord_AppendsEntryWithSnapshot(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	doc := &stubDoc{docID: id.New(), ownerID: "emp-1"}
	actor := workflow.Actor{ID: "sup-1", Role: workflow.RoleSupervisor}
	snapshot := map[string]any{"state": "pendiente_revision", "amount": "2500000"}

	if err := svc.Record(ctx, doc, actor, ActionRejected, "Falta soporte", snapshot); err != nil {
		t.Fatalf("record: %v", err)
	}

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	entry := repo.entries[0]
	if entry.DocumentID != doc.docID || entry.ReviewerID != actor.ID || entry.ReviewerRole != actor.Role {
		t.Errorf("entry identity mismatch: %+v", entry)
	}
	if entry.Action != ActionRejected || entry.Comment != "Falta soporte" {
		t.Errorf("entry decision mismatch: %+v", entry)
	}
	if entry.CreatedAt.IsZero() || id.IsNil(entry.ID) {
		t.Error("entry must be stamped with id and timestamp")
	}

	var decoded map[string]any
	if err := json.Unmarshal(entry.Snapshot, &decoded); err != nil {
		t.Fatalf("snapshot not valid JSON: %v", err)
	}
	if decoded["state"] != "pendiente_revision" {
		t.Errorf("snapshot content lost: %v", decoded)
	}
}

func TestRecord_RejectionRequiresComment(t *testing.T) {
	svc := NewService(&mockRepo{})
	doc := &stubDoc{docID: id.New(), ownerID: "emp-1"}
	actor := workflow.Actor{ID: "sup-1", Role: workflow.RoleSupervisor}

	err := svc.Record(context.Background(), doc, actor, ActionRejected, "", nil)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestRecord_UnknownActionRejected(t *testing.T) {
	svc := NewService(&mockRepo{})
	doc := &stubDoc{docID: id.New(), ownerID: "emp-1"}
	actor := workflow.Actor{ID: "adm-1", Role: workflow.RoleAdmin}

	err := svc.Record(context.Background(), doc, actor, Action("edited"), "", nil)
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestHistory_FiltersByDocument(t *testing.T) {
	repo := &mockRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	docA := &stubDoc{docID: id.New(), ownerID: "emp-1"}
	docB := &stubDoc{docID: id.New(), ownerID: "emp-2"}
	sup := workflow.Actor{ID: "sup-1", Role: workflow.RoleSupervisor}

	if err := svc.Record(ctx, docA, sup, ActionRejected, "no", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.Record(ctx, docA, sup, ActionApproved, "", nil); err != nil {
		t.Fatal(err)
	}
	if err := svc.Record(ctx, docB, sup, ActionApproved, "", nil); err != nil {
		t.Fatal(err)
	}

	history, err := svc.History(ctx, workflow.KindBillingAccount, docA.docID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(history))
	}
	if history[0].Action != ActionRejected || history[1].Action != ActionApproved {
		t.Errorf("unexpected order: %+v", history)
	}
}
