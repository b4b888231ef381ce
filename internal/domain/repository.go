// Package domain provides core business logic interfaces and types.
package domain

import (
	"contratia/internal/core/id"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs substring search on searchable fields (number, client)
	Search string

	// IDs filters by specific IDs
	IDs []id.ID

	// OwnerID restricts results to documents created by this actor.
	// Set by the service layer for non-privileged callers.
	OwnerID string

	// States filters by lifecycle states
	States []string

	// OrderBy specifies sorting (e.g., "number", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
