package entity

import (
	"context"

	"contratia/internal/core/apperror"
)

// Document is the base type for lifecycle-governed documents.
// Concrete variants: Contract, BillingAccount.
type Document struct {
	BaseDocument

	// Number is the document number (auto-generated, unique within type+period)
	Number string `db:"number" json:"number"`

	// State is the current lifecycle state. Always a member of the
	// variant's fixed enumeration; mutated only through accepted transitions.
	State string `db:"state" json:"state"`

	// OwnerID identifies the actor who created the document. Immutable.
	OwnerID string `db:"owner_id" json:"ownerId"`

	// ReviewComment is free text set by a reviewer on rejection/return.
	// Kept visible to the owner until resubmission, then cleared.
	ReviewComment *string `db:"review_comment" json:"reviewComment,omitempty"`
}

// NewDocument creates a new Document owned by ownerID in the given initial state.
func NewDocument(ownerID, initialState string) Document {
	return Document{
		BaseDocument: NewBaseDocument(),
		OwnerID:      ownerID,
		State:        initialState,
	}
}

// Validate implements Validatable interface.
func (d *Document) Validate(ctx context.Context) error {
	if d.OwnerID == "" {
		return apperror.NewValidation("owner is required").
			WithDetail("field", "ownerId")
	}

	if d.State == "" {
		return apperror.NewValidation("state is required").
			WithDetail("field", "state")
	}

	return nil
}

// ApplyState moves the document to the target state and stamps updated_at.
// Callers must have validated the transition through the workflow engine.
func (d *Document) ApplyState(to string) {
	d.State = to
	d.Touch()
}

// SetReviewComment records a reviewer's comment.
func (d *Document) SetReviewComment(comment string) {
	d.ReviewComment = &comment
}

// ClearReviewComment removes the reviewer's comment. Called when the
// document re-enters review after resubmission, not at edit time.
func (d *Document) ClearReviewComment() {
	d.ReviewComment = nil
}

// IsOwnedBy reports whether the given actor created this document.
func (d *Document) IsOwnedBy(actorID string) bool {
	return d.OwnerID == actorID
}
