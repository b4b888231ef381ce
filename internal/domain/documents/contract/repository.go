// Package contract provides the Contract document repository contract.
package contract

import (
	"context"
	"time"

	"contratia/internal/core/id"
	"contratia/internal/domain"
	"contratia/internal/domain/workflow"
)

// Repository defines storage operations for contracts.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Contract) error
	GetByID(ctx context.Context, docID id.ID) (*Contract, error)
	GetByNumber(ctx context.Context, number string) (*Contract, error)
	Update(ctx context.Context, doc *Contract) error
	Delete(ctx context.Context, docID id.ID) error

	// UpdateState persists a transition outcome (state and review comment)
	// with a compare-and-swap on the expected source state. Zero rows
	// affected means another writer moved the document first and maps to
	// a concurrent-modification error.
	UpdateState(ctx context.Context, doc *Contract, from workflow.State) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Contract], error)

	// SweepExpired promotes every active contract whose end date has
	// passed to completed in a single conditional update. Returns the
	// number of contracts promoted. Idempotent.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// ListFilter for filtering contracts.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ClientName    *string
	EndDateTo     *time.Time
	StartDateFrom *time.Time
}
