package contract

import (
	"context"
	"testing"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/core/numerator"
	"contratia/internal/core/types"
	"contratia/internal/domain"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
)

// Mock objects

type mockRepo struct {
	docs map[id.ID]*Contract

	updateStateCalls int
	updateStateErr   error
	sweepCount       int64
	sweepErr         error
	deleted          []id.ID
}

func newMockRepo() *mockRepo {
	return &mockRepo{docs: make(map[id.ID]*Contract)}
}

func (m *mockRepo) Create(ctx context.Context, doc *Contract) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockRepo) GetByID(ctx context.Context, docID id.ID) (*Contract, error) {
	doc, ok := m.docs[docID]
	if !ok {
		return nil, apperror.NewNotFound("contract", docID)
	}
	cp := *doc
	return &cp, nil
}

func (m *mockRepo) GetByNumber(ctx context.Context, number string) (*Contract, error) {
	for _, doc := range m.docs {
		if doc.Number == number {
			return doc, nil
		}
	}
	return nil, apperror.NewNotFound("contract", number)
}

func (m *mockRepo) Update(ctx context.Context, doc *Contract) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockRepo) Delete(ctx context.Context, docID id.ID) error {
	delete(m.docs, docID)
	m.deleted = append(m.deleted, docID)
	return nil
}

func (m *mockRepo) UpdateState(ctx context.Context, doc *Contract, from workflow.State) error {
	m.updateStateCalls++
	if m.updateStateErr != nil {
		return m.updateStateErr
	}
	stored, ok := m.docs[doc.ID]
	if !ok {
		return apperror.NewNotFound("contract", doc.ID)
	}
	if workflow.State(stored.State) != from {
		return apperror.NewConcurrentModification("contract", doc.ID)
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockRepo) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Contract], error) {
	var items []*Contract
	for _, doc := range m.docs {
		if filter.OwnerID != "" && doc.OwnerID != filter.OwnerID {
			continue
		}
		items = append(items, doc)
	}
	return domain.ListResult[*Contract]{Items: items, TotalCount: int64(len(items))}, nil
}

func (m *mockRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	return m.sweepCount, nil
}

type mockRecorder struct {
	entries []recordedEntry
}

type recordedEntry struct {
	docID   id.ID
	actorID string
	action  review.Action
	comment string
}

func (m *mockRecorder) Record(ctx context.Context, doc workflow.DocumentInfo, actor workflow.Actor, action review.Action, comment string, snapshot any) error {
	m.entries = append(m.entries, recordedEntry{
		docID:   doc.GetID(),
		actorID: actor.ID,
		action:  action,
		comment: comment,
	})
	return nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

func newTestService() (*Service, *mockRepo, *mockRecorder) {
	repo := newMockRepo()
	recorder := &mockRecorder{}
	svc := NewService(repo, recorder, &numerator.MockGenerator{}, &mockTxManager{})
	return svc, repo, recorder
}

func draftContract(ownerID string) *Contract {
	return New(ownerID, "Hospital San Rafael", time.Now(), types.MustMoney("1500000"))
}

var (
	owner      = workflow.Actor{ID: "emp-1", Role: workflow.RoleEmployee}
	supervisor = workflow.Actor{ID: "sup-1", Role: workflow.RoleSupervisor}
	admin      = workflow.Actor{ID: "adm-1", Role: workflow.RoleAdmin}
	treasury   = workflow.Actor{ID: "tre-1", Role: workflow.RoleTreasury}
)

func TestCreate_GeneratesNumberAndDraftState(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	doc.State = "active" // callers cannot pick the initial state

	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if doc.State != string(StateDraft) {
		t.Errorf("expected draft state, got %s", doc.State)
	}
	if doc.Number == "" {
		t.Error("expected generated number")
	}
	if doc.OwnerID != owner.ID {
		t.Errorf("expected owner %s, got %s", owner.ID, doc.OwnerID)
	}
	if _, ok := repo.docs[doc.ID]; !ok {
		t.Error("document not persisted")
	}
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(c *Contract)
	}{
		{"empty client", func(c *Contract) { c.ClientName = "" }},
		{"zero amount", func(c *Contract) { c.TotalAmount = types.Zero() }},
		{"negative amount", func(c *Contract) { c.TotalAmount = types.MustMoney("-10") }},
		{"end before start", func(c *Contract) {
			end := c.StartDate.Add(-24 * time.Hour)
			c.EndDate = &end
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := draftContract(owner.ID)
			tt.mutate(doc)
			err := svc.Create(ctx, doc, owner)
			appErr, ok := apperror.AsAppError(err)
			if !ok || appErr.Code != apperror.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestApproveFlow(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Owner may not approve their own draft.
	_, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionApprove, owner, workflow.Payload{})
	if !apperror.IsForbidden(err) {
		t.Fatalf("owner approve: expected FORBIDDEN, got %v", err)
	}

	// Supervisor may.
	updated, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionApprove, supervisor, workflow.Payload{})
	if err != nil {
		t.Fatalf("supervisor approve: %v", err)
	}
	if updated.GetState() != StateActive {
		t.Errorf("expected active, got %s", updated.State)
	}
	if repo.docs[doc.ID].State != string(StateActive) {
		t.Error("state not persisted")
	}
}

func TestReturnAndResubmit(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Return requires a comment.
	_, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionReturn, supervisor, workflow.Payload{})
	appErr, ok := apperror.AsAppError(err)
	if !ok || appErr.Code != apperror.CodeValidation {
		t.Fatalf("return without comment: expected VALIDATION_ERROR, got %v", err)
	}

	returned, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionReturn, supervisor, workflow.Payload{Comment: "falta la póliza"})
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if returned.GetState() != StateReturned {
		t.Errorf("expected returned, got %s", returned.State)
	}
	if returned.ReviewComment == nil || *returned.ReviewComment != "falta la póliza" {
		t.Errorf("expected review comment set, got %v", returned.ReviewComment)
	}

	// Only the owner resubmits; the comment clears on resubmission.
	_, err = svc.RequestTransition(ctx, doc.ID, workflow.TransitionResubmit, supervisor, workflow.Payload{})
	if !apperror.IsForbidden(err) {
		t.Fatalf("supervisor resubmit: expected FORBIDDEN, got %v", err)
	}

	resubmitted, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionResubmit, owner, workflow.Payload{})
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if resubmitted.GetState() != StateDraft {
		t.Errorf("expected draft, got %s", resubmitted.State)
	}
	if resubmitted.ReviewComment != nil {
		t.Errorf("review comment should clear on resubmit, got %v", *resubmitted.ReviewComment)
	}
}

func TestCancelPermissions(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   workflow.Actor
		wantErr bool
	}{
		{"owner cannot cancel", owner, true},
		{"supervisor cannot cancel", supervisor, true},
		{"treasury cannot cancel", treasury, true},
		{"admin cancels", admin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := draftContract(owner.ID)
			if err := svc.Create(ctx, doc, owner); err != nil {
				t.Fatalf("create: %v", err)
			}

			_, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionCancel, tt.actor, workflow.Payload{})
			if tt.wantErr && !apperror.IsForbidden(err) {
				t.Fatalf("expected FORBIDDEN, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestTerminalStatesRejectTransitions(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.docs[doc.ID].State = string(StateCancelled)

	for _, name := range []workflow.Transition{workflow.TransitionApprove, workflow.TransitionCancel, workflow.TransitionResubmit} {
		_, err := svc.RequestTransition(ctx, doc.ID, name, admin, workflow.Payload{})
		if !apperror.IsInvalidTransition(err) {
			t.Errorf("%s from cancelled: expected INVALID_TRANSITION, got %v", name, err)
		}
	}
}

func TestCompleteIsSystemOnly(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.docs[doc.ID].State = string(StateActive)

	_, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionComplete, admin, workflow.Payload{})
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
}

func TestRequestTransition_ConcurrentWriter(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Another writer moves the document between read and write.
	repo.updateStateErr = apperror.NewConcurrentModification("contract", doc.ID)

	_, err := svc.RequestTransition(ctx, doc.ID, workflow.TransitionApprove, supervisor, workflow.Payload{})
	if !apperror.IsConcurrentModification(err) {
		t.Fatalf("expected CONCURRENT_MODIFICATION, got %v", err)
	}
}

func TestUpdate_Permissions(t *testing.T) {
	svc, repo, recorder := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Owner edits their draft.
	doc.ClientName = "Clínica del Norte"
	if err := svc.Update(ctx, doc, owner); err != nil {
		t.Fatalf("owner edit: %v", err)
	}

	// A stranger may not.
	if err := svc.Update(ctx, doc, workflow.Actor{ID: "emp-2", Role: workflow.RoleEmployee}); !apperror.IsForbidden(err) {
		t.Fatalf("stranger edit: expected FORBIDDEN, got %v", err)
	}

	// Owner may not edit once active.
	repo.docs[doc.ID].State = string(StateActive)
	if err := svc.Update(ctx, doc, owner); !apperror.IsForbidden(err) {
		t.Fatalf("owner edit active: expected FORBIDDEN, got %v", err)
	}

	// Admin edit of a non-owned document is recorded as an override.
	if err := svc.Update(ctx, doc, admin); err != nil {
		t.Fatalf("admin edit: %v", err)
	}
	if len(recorder.entries) != 1 || recorder.entries[0].action != review.ActionAdminOverride {
		t.Fatalf("expected one admin_override entry, got %v", recorder.entries)
	}
}

func TestUpdate_ProtectedFields(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}
	number := doc.Number

	edited := *doc
	edited.Number = "CT-9999-99999"
	edited.State = string(StateActive)
	edited.OwnerID = "someone-else"

	if err := svc.Update(ctx, &edited, owner); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored := repo.docs[doc.ID]
	if stored.Number != number || stored.State != string(StateDraft) || stored.OwnerID != owner.ID {
		t.Errorf("protected fields changed: number=%s state=%s owner=%s", stored.Number, stored.State, stored.OwnerID)
	}
}

func TestDelete_Permissions(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Supervisor never deletes, even a draft.
	if err := svc.Delete(ctx, doc.ID, supervisor); !apperror.IsForbidden(err) {
		t.Fatalf("supervisor delete: expected FORBIDDEN, got %v", err)
	}

	// Owner deletes their draft.
	if err := svc.Delete(ctx, doc.ID, owner); err != nil {
		t.Fatalf("owner delete: %v", err)
	}

	// Owner may not delete once past draft.
	doc2 := draftContract(owner.ID)
	if err := svc.Create(ctx, doc2, owner); err != nil {
		t.Fatalf("create: %v", err)
	}
	repo.docs[doc2.ID].State = string(StateActive)
	if err := svc.Delete(ctx, doc2.ID, owner); !apperror.IsForbidden(err) {
		t.Fatalf("owner delete active: expected FORBIDDEN, got %v", err)
	}

	// Admin may, and the override is recorded.
	if err := svc.Delete(ctx, doc2.ID, admin); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
}

func TestAuthorizedTransitions(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	doc := draftContract(owner.ID)
	if err := svc.Create(ctx, doc, owner); err != nil {
		t.Fatalf("create: %v", err)
	}

	// Supervisor on a draft: approve and return.
	got, err := svc.AuthorizedTransitions(ctx, doc.ID, supervisor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []workflow.Transition{workflow.TransitionApprove, workflow.TransitionReturn}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("supervisor: want %v, got %v", want, got)
	}

	// Owner on their returned contract: resubmit only.
	repo.docs[doc.ID].State = string(StateReturned)
	got, err = svc.AuthorizedTransitions(ctx, doc.ID, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0] != workflow.TransitionResubmit {
		t.Errorf("owner: want [resubmit], got %v", got)
	}

	// Complete never appears, even for admins on active contracts.
	repo.docs[doc.ID].State = string(StateActive)
	got, err = svc.AuthorizedTransitions(ctx, doc.ID, admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range got {
		if name == workflow.TransitionComplete {
			t.Error("complete must never be offered to actors")
		}
	}
}

func TestList_EmployeeScopedToOwn(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	mine := draftContract(owner.ID)
	theirs := draftContract("emp-2")
	if err := svc.Create(ctx, mine, owner); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Create(ctx, theirs, workflow.Actor{ID: "emp-2", Role: workflow.RoleEmployee}); err != nil {
		t.Fatalf("create: %v", err)
	}

	res, err := svc.List(ctx, ListFilter{ListFilter: domain.DefaultListFilter()}, owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalCount != 1 || res.Items[0].OwnerID != owner.ID {
		t.Errorf("employee should see only own contracts, got %d", res.TotalCount)
	}

	res, err = svc.List(ctx, ListFilter{ListFilter: domain.DefaultListFilter()}, supervisor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalCount != 2 {
		t.Errorf("supervisor should see all contracts, got %d", res.TotalCount)
	}
}

func TestSweepExpired(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	repo.sweepCount = 3
	count, err := svc.SweepExpired(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Errorf("expected 3, got %d", count)
	}

	// Nothing to promote is a success, not an error.
	repo.sweepCount = 0
	count, err = svc.SweepExpired(ctx, time.Now())
	if err != nil || count != 0 {
		t.Errorf("expected (0, nil), got (%d, %v)", count, err)
	}
}

func TestIsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	openEnded := draftContract(owner.ID)
	if openEnded.IsExpired(now) {
		t.Error("open-ended contract never expires")
	}

	expired := draftContract(owner.ID)
	expired.EndDate = &past
	if !expired.IsExpired(now) {
		t.Error("past end date should be expired")
	}

	running := draftContract(owner.ID)
	running.EndDate = &future
	if running.IsExpired(now) {
		t.Error("future end date should not be expired")
	}
}
