// Package contract provides the Contract document service.
package contract

import (
	"context"
	"fmt"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/core/numerator"
	"contratia/internal/core/tx"
	"contratia/internal/domain"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/pkg/logger"
)

// NumberPrefix for generated contract numbers (CT-2026-00001).
const NumberPrefix = "CT"

// Service provides business operations for contracts. Every state change
// goes through the workflow engine and is written with a compare-and-swap
// on the source state.
type Service struct {
	repo      Repository
	engine    *workflow.Engine
	reviews   review.Recorder
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Contract]
}

// NewService creates a contract service.
func NewService(
	repo Repository,
	reviews review.Recorder,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		engine:    NewEngine(),
		reviews:   reviews,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Contract](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Contract] {
	return s.hooks
}

// Create creates a new contract owned by the actor, in draft state.
func (s *Service) Create(ctx context.Context, doc *Contract, actor workflow.Actor) error {
	doc.OwnerID = actor.ID
	doc.State = string(StateDraft)

	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	// Generate number if empty
	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "contract created",
		"id", doc.ID,
		"number", doc.Number,
		"owner_id", doc.OwnerID)

	return nil
}

// Get retrieves a contract visible to the actor. Employees may only read
// their own contracts; every other role reads all.
func (s *Service) Get(ctx context.Context, docID id.ID, actor workflow.Actor) (*Contract, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if actor.Role == workflow.RoleEmployee && !doc.IsOwnedBy(actor.ID) {
		return nil, apperror.NewForbidden("contract belongs to another owner")
	}

	return doc, nil
}

// Update modifies contract fields. Allowed for the owner while the contract
// is editable (draft, returned) and for administrators in any state.
// Editing never changes state and never clears the review comment.
func (s *Service) Update(ctx context.Context, doc *Contract, actor workflow.Actor) error {
	current, err := s.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return err
	}

	if !CanEdit(current, actor) {
		return apperror.NewForbidden("actor may not edit this contract")
	}

	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	// Owner, number, state and review comment are not client-editable.
	doc.OwnerID = current.OwnerID
	doc.Number = current.Number
	doc.State = current.State
	doc.ReviewComment = current.ReviewComment

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	override := actor.IsPrivileged() && !current.IsOwnedBy(actor.ID)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		if override {
			return s.reviews.Record(ctx, doc, actor, review.ActionAdminOverride, "edited contract fields", doc)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterUpdate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-update hook failed", "error", err)
	}

	return nil
}

// Delete hard-deletes a contract. Allowed for the owner while the contract
// is still in draft and for administrators in any state.
func (s *Service) Delete(ctx context.Context, docID id.ID, actor workflow.Actor) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if !CanDelete(doc, actor) {
		return apperror.NewForbidden("actor may not delete this contract")
	}

	override := actor.IsPrivileged() && !(doc.IsOwnedBy(actor.ID) && doc.GetState() == StateDraft)

	if err := s.hooks.RunBeforeDelete(ctx, doc); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		if override {
			return s.reviews.Record(ctx, doc, actor, review.ActionAdminOverride, "deleted contract", doc)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterDelete(ctx, doc); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "error", err)
	}

	logger.Info(ctx, "contract deleted",
		"id", docID,
		"actor_id", actor.ID)

	return nil
}

// RequestTransition applies a named transition on behalf of the actor.
// The engine validates the edge, permission and comment gates; the state
// write compares against the state the decision was made on, so a
// concurrent writer surfaces as a conflict instead of a lost update.
func (s *Service) RequestTransition(ctx context.Context, docID id.ID, name workflow.Transition, actor workflow.Actor, payload workflow.Payload) (*Contract, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	from := doc.GetState()

	outcome, err := s.engine.Decide(doc, name, actor, payload, func() *workflow.CompletenessReport {
		// Contracts carry no completeness-gated transitions.
		return nil
	})
	if err != nil {
		return nil, err
	}

	if outcome.Rule.SetsComment {
		doc.SetReviewComment(outcome.Comment)
	}
	if outcome.Rule.ClearsComment {
		doc.ClearReviewComment()
	}
	doc.ApplyState(string(outcome.To))

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateState(ctx, doc, from); err != nil {
			return err
		}
		if outcome.Rule.RecordsReview {
			action := review.ActionApproved
			if outcome.Rule.RequiresComment {
				action = review.ActionRejected
			}
			return s.reviews.Record(ctx, doc, actor, action, outcome.Comment, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "contract transition applied",
		"id", doc.ID,
		"transition", string(name),
		"from", string(from),
		"to", string(outcome.To),
		"actor_id", actor.ID)

	return doc, nil
}

// AuthorizedTransitions returns the transitions the actor may request on
// the contract from its current state, in table order.
func (s *Service) AuthorizedTransitions(ctx context.Context, docID id.ID, actor workflow.Actor) ([]workflow.Transition, error) {
	doc, err := s.Get(ctx, docID, actor)
	if err != nil {
		return nil, err
	}
	return s.engine.Resolver().Authorized(doc, actor), nil
}

// SweepExpired promotes active contracts past their end date to completed.
// Safe to call concurrently and repeatedly; each expired contract is
// promoted exactly once.
func (s *Service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	count, err := s.repo.SweepExpired(ctx, now)
	if err != nil {
		return 0, err
	}

	if count > 0 {
		logger.Info(ctx, "expired contracts completed",
			"count", count,
			"as_of", now.UTC())
	}

	return count, nil
}

// List retrieves contracts with filtering. Employees see only their own.
func (s *Service) List(ctx context.Context, filter ListFilter, actor workflow.Actor) (domain.ListResult[*Contract], error) {
	if actor.Role == workflow.RoleEmployee {
		filter.OwnerID = actor.ID
	}
	return s.repo.List(ctx, filter)
}
