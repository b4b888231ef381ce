// Package review provides the append-only review ledger: one entry per
// reviewer decision (approve, reject) and per administrative override.
// Entries are never updated or deleted, including when the reviewed
// document itself is removed.
package review

import (
	"context"
	"encoding/json"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/domain/workflow"
)

// Action classifies a ledger entry.
type Action string

const (
	ActionApproved      Action = "approved"
	ActionRejected      Action = "rejected"
	ActionAdminOverride Action = "admin_override"
)

// Entry is one immutable record of a review decision.
type Entry struct {
	ID id.ID `db:"id" json:"id"`

	// DocumentKind and DocumentID identify the reviewed document.
	// The reference is intentionally not a foreign key: ledger entries
	// outlive deleted documents.
	DocumentKind workflow.Kind `db:"document_kind" json:"documentKind"`
	DocumentID   id.ID         `db:"document_id" json:"documentId"`

	ReviewerID   string        `db:"reviewer_id" json:"reviewerId"`
	ReviewerRole workflow.Role `db:"reviewer_role" json:"reviewerRole"`

	Action Action `db:"action" json:"action"`

	// Comment is the reviewer's free text. Empty for approvals.
	Comment string `db:"comment" json:"comment,omitempty"`

	// Snapshot captures the document's field values at decision time.
	// Stored compressed; decompressed transparently on read.
	Snapshot json.RawMessage `db:"snapshot" json:"snapshot,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewEntry creates a ledger entry for a decision on doc by actor.
// snapshot may be nil when the caller has nothing to capture.
func NewEntry(doc workflow.DocumentInfo, actor workflow.Actor, action Action, comment string, snapshot json.RawMessage) *Entry {
	return &Entry{
		ID:           id.New(),
		DocumentKind: doc.GetKind(),
		DocumentID:   doc.GetID(),
		ReviewerID:   actor.ID,
		ReviewerRole: actor.Role,
		Action:       action,
		Comment:      comment,
		Snapshot:     snapshot,
		CreatedAt:    time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(_ context.Context) error {
	if id.IsNil(e.DocumentID) {
		return apperror.NewValidation("document id is required").
			WithDetail("field", "documentId")
	}
	if e.ReviewerID == "" {
		return apperror.NewValidation("reviewer id is required").
			WithDetail("field", "reviewerId")
	}
	switch e.Action {
	case ActionApproved, ActionRejected, ActionAdminOverride:
	default:
		return apperror.NewValidation("unknown review action").
			WithDetail("action", string(e.Action))
	}
	if e.Action == ActionRejected && e.Comment == "" {
		return apperror.NewValidation("a rejection must carry the reviewer's comment").
			WithDetail("field", "comment")
	}
	return nil
}
