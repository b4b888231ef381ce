package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"contratia/internal/core/id"
	"contratia/internal/domain"
	"contratia/internal/domain/documents/billing"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/storage/postgres"
)

const (
	billingTable    = "doc_billing_accounts"
	activitiesTable = "doc_billing_activities"
)

// BillingRepo implements billing.Repository.
type BillingRepo struct {
	*BaseDocumentRepo[*billing.Account]
	batch *postgres.BatchExecutor
}

// NewBillingRepo creates a billing account repository.
func NewBillingRepo(txManager *postgres.TxManager) *BillingRepo {
	return &BillingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			billingTable,
			postgres.ExtractDBColumns[billing.Account](),
			func() *billing.Account { return &billing.Account{} },
			txManager,
		),
		batch: postgres.NewBatchExecutor(txManager),
	}
}

// UpdateState implements billing.Repository.
func (r *BillingRepo) UpdateState(ctx context.Context, doc *billing.Account, from workflow.State) error {
	version, err := r.BaseDocumentRepo.UpdateState(ctx, doc.ID, string(from), doc.State, doc.ReviewComment)
	if err != nil {
		return err
	}
	doc.SetVersion(version)
	return nil
}

// Delete hard-deletes the account and cascades to its activities.
func (r *BillingRepo) Delete(ctx context.Context, docID id.ID) error {
	if err := r.deleteActivities(ctx, docID); err != nil {
		return err
	}
	return r.BaseDocumentRepo.Delete(ctx, docID)
}

// GetActivities returns the account's activities in position order.
func (r *BillingRepo) GetActivities(ctx context.Context, docID id.ID) ([]billing.Activity, error) {
	q := r.Builder().
		Select("id", "account_id", "position", "description").
		From(activitiesTable).
		Where(squirrel.Eq{"account_id": docID}).
		OrderBy("position ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var activities []billing.Activity
	if err := pgxscan.Select(ctx, r.Querier(ctx), &activities, sql, args...); err != nil {
		return nil, fmt.Errorf("get activities: %w", err)
	}

	return activities, nil
}

// SaveActivities replaces the account's activity list. Positions are
// renumbered from the slice order. Runs delete plus inserts as one batch
// inside the caller's transaction.
func (r *BillingRepo) SaveActivities(ctx context.Context, docID id.ID, activities []billing.Activity) error {
	deleteSQL, deleteArgs, err := r.Builder().
		Delete(activitiesTable).
		Where(squirrel.Eq{"account_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete activities: %w", err)
	}

	queries := []postgres.BatchQuery{{SQL: deleteSQL, Args: deleteArgs}}

	for i, act := range activities {
		if id.IsNil(act.ID) {
			act.ID = id.New()
		}
		insertSQL, insertArgs, err := r.Builder().
			Insert(activitiesTable).
			Columns("id", "account_id", "position", "description").
			Values(act.ID, docID, i+1, act.Description).
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert activity: %w", err)
		}
		queries = append(queries, postgres.BatchQuery{SQL: insertSQL, Args: insertArgs})
	}

	return r.batch.ExecuteBatch(ctx, queries)
}

func (r *BillingRepo) deleteActivities(ctx context.Context, docID id.ID) error {
	sql, args, err := r.Builder().
		Delete(activitiesTable).
		Where(squirrel.Eq{"account_id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete activities: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}
	return nil
}

// List implements billing.Repository with document-specific filters.
func (r *BillingRepo) List(ctx context.Context, filter billing.ListFilter) (domain.ListResult[*billing.Account], error) {
	q := r.baseSelect()

	if filter.ContractID != nil {
		q = q.Where(squirrel.Eq{"contract_id": *filter.ContractID})
	}
	if filter.PeriodFrom != nil {
		q = q.Where(squirrel.GtOrEq{"billing_start_date": *filter.PeriodFrom})
	}
	if filter.PeriodTo != nil {
		q = q.Where(squirrel.LtOrEq{"billing_end_date": *filter.PeriodTo})
	}

	return r.ListWith(ctx, q, filter.ListFilter)
}

// Ensure interface compliance at compile time.
var _ billing.Repository = (*BillingRepo)(nil)
