package review

import (
	"context"
	"encoding/json"
	"fmt"

	"contratia/internal/core/id"
	"contratia/internal/domain/workflow"
	"contratia/pkg/logger"
)

// Recorder is the write-side view of the ledger used by document services.
// Ledger writes happen inside the same transaction as the state change
// they record, so a failed transition leaves no orphaned entry.
type Recorder interface {
	Record(ctx context.Context, doc workflow.DocumentInfo, actor workflow.Actor, action Action, comment string, snapshot any) error
}

// Service provides ledger operations over a Repository.
type Service struct {
	repo Repository
}

// NewService creates a review ledger service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record marshals the snapshot and appends one entry.
func (s *Service) Record(ctx context.Context, doc workflow.DocumentInfo, actor workflow.Actor, action Action, comment string, snapshot any) error {
	var raw json.RawMessage
	if snapshot != nil {
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("marshal review snapshot: %w", err)
		}
		raw = data
	}

	entry := NewEntry(doc, actor, action, comment, raw)
	if err := entry.Validate(ctx); err != nil {
		return err
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append review entry: %w", err)
	}

	logger.Info(ctx, "review recorded",
		"document_kind", string(doc.GetKind()),
		"document_id", doc.GetID(),
		"action", string(action),
		"reviewer_id", actor.ID)

	return nil
}

// History returns the full review trail of a document, oldest first.
func (s *Service) History(ctx context.Context, kind workflow.Kind, docID id.ID) ([]Entry, error) {
	return s.repo.ListByDocument(ctx, kind, docID)
}

// ByReviewer returns a reviewer's recent decisions, newest first.
func (s *Service) ByReviewer(ctx context.Context, reviewerID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.repo.ListByReviewer(ctx, reviewerID, limit)
}

// Ensure compile-time interface compliance.
var _ Recorder = (*Service)(nil)
