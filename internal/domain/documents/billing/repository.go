// Package billing provides the BillingAccount repository and file store
// contracts. Implementations live in the infrastructure layer.
package billing

import (
	"context"
	"io"
	"time"

	"contratia/internal/core/id"
	"contratia/internal/domain"
	"contratia/internal/domain/workflow"
)

// Repository defines storage operations for billing accounts.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, doc *Account) error
	GetByID(ctx context.Context, docID id.ID) (*Account, error)
	GetByNumber(ctx context.Context, number string) (*Account, error)
	Update(ctx context.Context, doc *Account) error

	// Delete hard-deletes the account and cascades to its activities.
	Delete(ctx context.Context, docID id.ID) error

	// UpdateState persists a transition outcome (state and review comment)
	// with a compare-and-swap on the expected source state. Zero rows
	// affected maps to a concurrent-modification error.
	UpdateState(ctx context.Context, doc *Account, from workflow.State) error

	// Activity operations
	GetActivities(ctx context.Context, docID id.ID) ([]Activity, error)
	SaveActivities(ctx context.Context, docID id.ID, activities []Activity) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Account], error)
}

// FileStore stores uploaded artifacts (planilla file, signature image)
// and issues time-limited download links. Implemented over object storage.
type FileStore interface {
	Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// ListFilter for filtering billing accounts.
type ListFilter struct {
	domain.ListFilter

	// Document-specific filters
	ContractID *id.ID
	PeriodFrom *time.Time
	PeriodTo   *time.Time
}
