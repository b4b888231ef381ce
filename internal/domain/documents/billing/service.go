// Package billing provides the BillingAccount document service.
package billing

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/core/numerator"
	"contratia/internal/core/tx"
	"contratia/internal/domain"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/pkg/logger"
)

// NumberPrefix for generated billing account numbers (CC-2026-00001).
const NumberPrefix = "CC"

// signedURLTTL bounds download links for planilla files and signatures.
const signedURLTTL = 15 * time.Minute

// Service provides business operations for billing accounts. Every state
// change goes through the workflow engine and is written with a
// compare-and-swap on the source state.
type Service struct {
	repo      Repository
	contracts contract.Repository
	engine    *workflow.Engine
	reviews   review.Recorder
	files     FileStore
	numerator numerator.Generator
	txManager tx.Manager
	hooks     *domain.HookRegistry[*Account]
}

// NewService creates a billing account service.
func NewService(
	repo Repository,
	contracts contract.Repository,
	reviews review.Recorder,
	files FileStore,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:      repo,
		contracts: contracts,
		engine:    NewEngine(),
		reviews:   reviews,
		files:     files,
		numerator: numerator,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Account](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Account] {
	return s.hooks
}

// Create creates a new billing account owned by the actor, in borrador
// state. The referenced contract must exist.
func (s *Service) Create(ctx context.Context, doc *Account, actor workflow.Actor) error {
	doc.OwnerID = actor.ID
	doc.State = string(StateBorrador)

	if err := s.hooks.RunBeforeCreate(ctx, doc); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if _, err := s.contracts.GetByID(ctx, doc.ContractID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("referenced contract does not exist").
				WithDetail("contractId", doc.ContractID)
		}
		return err
	}

	// Generate number if empty
	if doc.Document.Number == "" {
		cfg := numerator.DefaultConfig(NumberPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, numerator.DefaultOptions(), time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Document.Number = number
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return err
		}
		return s.repo.SaveActivities(ctx, doc.ID, doc.Activities)
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterCreate(ctx, doc); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "billing account created",
		"id", doc.ID,
		"number", doc.Document.Number,
		"contract_id", doc.ContractID,
		"owner_id", doc.OwnerID)

	return nil
}

// Get retrieves a billing account with its activities. Employees may only
// read their own accounts.
func (s *Service) Get(ctx context.Context, docID id.ID, actor workflow.Actor) (*Account, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if actor.Role == workflow.RoleEmployee && !doc.IsOwnedBy(actor.ID) {
		return nil, apperror.NewForbidden("billing account belongs to another owner")
	}

	activities, err := s.repo.GetActivities(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	doc.Activities = activities

	return doc, nil
}

// Update modifies account fields and replaces its activity list. Allowed
// for the owner while the account is editable (borrador, rechazada) and
// for administrators in any state. Editing never changes state and never
// clears the review comment; a rejected account keeps the reviewer's
// comment visible until resubmission.
func (s *Service) Update(ctx context.Context, doc *Account, actor workflow.Actor) error {
	current, err := s.repo.GetByID(ctx, doc.ID)
	if err != nil {
		return err
	}

	if !CanEdit(current, actor) {
		return apperror.NewForbidden("actor may not edit this billing account")
	}

	if err := s.hooks.RunBeforeUpdate(ctx, doc); err != nil {
		return err
	}

	// Owner, number, state, contract reference and review comment are
	// not client-editable.
	doc.OwnerID = current.OwnerID
	doc.Document.Number = current.Document.Number
	doc.State = current.State
	doc.ContractID = current.ContractID
	doc.ReviewComment = current.ReviewComment

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	override := actor.IsPrivileged() && !current.IsOwnedBy(actor.ID)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return err
		}
		if err := s.repo.SaveActivities(ctx, doc.ID, doc.Activities); err != nil {
			return fmt.Errorf("save activities: %w", err)
		}
		if override {
			return s.reviews.Record(ctx, doc, actor, review.ActionAdminOverride, "edited billing account fields", doc)
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

// Delete hard-deletes a billing account and its activities. Allowed for
// the owner while the account is still in borrador and for administrators
// in any state.
func (s *Service) Delete(ctx context.Context, docID id.ID, actor workflow.Actor) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	if !CanDelete(doc, actor) {
		return apperror.NewForbidden("actor may not delete this billing account")
	}

	override := actor.IsPrivileged() && !(doc.IsOwnedBy(actor.ID) && doc.GetState() == StateBorrador)

	if err := s.hooks.RunBeforeDelete(ctx, doc); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, docID); err != nil {
			return err
		}
		if override {
			return s.reviews.Record(ctx, doc, actor, review.ActionAdminOverride, "deleted billing account", doc)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.RunAfterDelete(ctx, doc); err != nil {
		logger.Warn(ctx, "after-delete hook failed", "error", err)
	}

	logger.Info(ctx, "billing account deleted",
		"id", docID,
		"actor_id", actor.ID)

	return nil
}

// RequestTransition applies a named transition on behalf of the actor.
// Submission is completeness-gated; approve and reject append one review
// ledger entry inside the same transaction as the state write.
func (s *Service) RequestTransition(ctx context.Context, docID id.ID, name workflow.Transition, actor workflow.Actor, payload workflow.Payload) (*Account, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	activities, err := s.repo.GetActivities(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}
	doc.Activities = activities

	from := doc.GetState()

	outcome, err := s.engine.Decide(doc, name, actor, payload, func() *workflow.CompletenessReport {
		return Completeness(doc)
	})
	if err != nil {
		return nil, err
	}

	if outcome.Rule.Deletes {
		if err := s.hooks.RunBeforeDelete(ctx, doc); err != nil {
			return nil, err
		}

		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return s.repo.Delete(ctx, docID)
		})
		if err != nil {
			return nil, err
		}

		if err := s.hooks.RunAfterDelete(ctx, doc); err != nil {
			logger.Warn(ctx, "after-delete hook failed", "error", err)
		}

		logger.Info(ctx, "billing account deleted by transition",
			"id", docID,
			"actor_id", actor.ID)

		// Nothing left to return.
		return nil, nil
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
			if name == workflow.TransitionReject {
				action = review.ActionRejected
			}
			return s.reviews.Record(ctx, doc, actor, action, outcome.Comment, doc)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "billing account transition applied",
		"id", doc.ID,
		"transition", string(name),
		"from", string(from),
		"to", string(outcome.To),
		"actor_id", actor.ID)

	return doc, nil
}

// AuthorizedTransitions returns the transitions the actor may request on
// the account from its current state, in table order.
func (s *Service) AuthorizedTransitions(ctx context.Context, docID id.ID, actor workflow.Actor) ([]workflow.Transition, error) {
	doc, err := s.Get(ctx, docID, actor)
	if err != nil {
		return nil, err
	}
	return s.engine.Resolver().Authorized(doc, actor), nil
}

// Completeness evaluates the account's required sections for UI progress
// display. Read-only; submission runs the same evaluation as its gate.
func (s *Service) Completeness(ctx context.Context, docID id.ID, actor workflow.Actor) (*workflow.CompletenessReport, error) {
	doc, err := s.Get(ctx, docID, actor)
	if err != nil {
		return nil, err
	}
	return Completeness(doc), nil
}

// AttachPlanillaFile uploads the planilla document and records its path.
// Subject to the same edit permission as field changes.
func (s *Service) AttachPlanillaFile(ctx context.Context, docID id.ID, actor workflow.Actor, filename string, r io.Reader, size int64, contentType string) (*Account, error) {
	return s.attach(ctx, docID, actor, filename, r, size, contentType, "planilla", func(doc *Account, stored string) {
		doc.Planilla.FilePath = &stored
	})
}

// AttachSignature uploads the contractor's signature image and records
// its path. Subject to the same edit permission as field changes.
func (s *Service) AttachSignature(ctx context.Context, docID id.ID, actor workflow.Actor, filename string, r io.Reader, size int64, contentType string) (*Account, error) {
	return s.attach(ctx, docID, actor, filename, r, size, contentType, "signatures", func(doc *Account, stored string) {
		doc.SignaturePath = &stored
	})
}

func (s *Service) attach(
	ctx context.Context,
	docID id.ID,
	actor workflow.Actor,
	filename string,
	r io.Reader,
	size int64,
	contentType string,
	folder string,
	apply func(doc *Account, stored string),
) (*Account, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(doc, actor) {
		return nil, apperror.NewForbidden("actor may not edit this billing account")
	}

	objectPath := path.Join(folder, doc.ID.String(), filename)
	stored, err := s.files.Upload(ctx, objectPath, r, size, contentType)
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", folder, err)
	}

	apply(doc, stored)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "billing account attachment stored",
		"id", doc.ID,
		"folder", folder,
		"path", stored)

	return doc, nil
}

// FileURL issues a time-limited download link for a stored artifact path.
func (s *Service) FileURL(ctx context.Context, docID id.ID, actor workflow.Actor, storedPath string) (string, error) {
	doc, err := s.Get(ctx, docID, actor)
	if err != nil {
		return "", err
	}

	owned := (doc.Planilla.FilePath != nil && *doc.Planilla.FilePath == storedPath) ||
		(doc.SignaturePath != nil && *doc.SignaturePath == storedPath)
	if !owned {
		return "", apperror.NewNotFound("attachment", storedPath)
	}

	return s.files.SignedURL(ctx, storedPath, signedURLTTL)
}

// List retrieves billing accounts with filtering. Employees see only
// their own.
func (s *Service) List(ctx context.Context, filter ListFilter, actor workflow.Actor) (domain.ListResult[*Account], error) {
	if actor.Role == workflow.RoleEmployee {
		filter.OwnerID = actor.ID
	}
	return s.repo.List(ctx, filter)
}

// ListByContract retrieves every billing account billed against one
// contract, oldest first.
func (s *Service) ListByContract(ctx context.Context, contractID id.ID, actor workflow.Actor) (domain.ListResult[*Account], error) {
	filter := ListFilter{ListFilter: domain.DefaultListFilter(), ContractID: &contractID}
	filter.OrderBy = "created_at"
	return s.List(ctx, filter, actor)
}
