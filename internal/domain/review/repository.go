package review

import (
	"context"

	"contratia/internal/core/id"
	"contratia/internal/domain/workflow"
)

// Repository defines the append-only ledger store. There is deliberately
// no update or delete operation.
type Repository interface {
	Append(ctx context.Context, entry *Entry) error

	// ListByDocument returns the document's entries ordered by creation
	// time ascending (oldest first).
	ListByDocument(ctx context.Context, kind workflow.Kind, docID id.ID) ([]Entry, error)

	// ListByReviewer returns the reviewer's entries, newest first.
	ListByReviewer(ctx context.Context, reviewerID string, limit int) ([]Entry, error)
}
