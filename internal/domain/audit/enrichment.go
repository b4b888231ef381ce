// Package audit provides utilities for audit field enrichment in domain entities.
package audit

import (
	"context"

	"contratia/internal/core/security"
)

// EnrichCreatedByDirect sets CreatedBy and UpdatedBy fields from context user ID.
// Use in BeforeCreate hooks. No-op when no user is in context.
func EnrichCreatedByDirect(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedByDirect sets only the UpdatedBy field from context user ID.
// Use in BeforeUpdate hooks.
func EnrichUpdatedByDirect(ctx context.Context, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
