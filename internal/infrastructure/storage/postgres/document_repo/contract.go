package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"contratia/internal/domain"
	"contratia/internal/domain/documents/contract"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/storage/postgres"
)

const contractTable = "doc_contracts"

// ContractRepo implements contract.Repository.
type ContractRepo struct {
	*BaseDocumentRepo[*contract.Contract]
}

// NewContractRepo creates a contract repository.
func NewContractRepo(txManager *postgres.TxManager) *ContractRepo {
	return &ContractRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			contractTable,
			postgres.ExtractDBColumns[contract.Contract](),
			func() *contract.Contract { return &contract.Contract{} },
			txManager,
		),
	}
}

// UpdateState implements contract.Repository.
func (r *ContractRepo) UpdateState(ctx context.Context, doc *contract.Contract, from workflow.State) error {
	version, err := r.BaseDocumentRepo.UpdateState(ctx, doc.ID, string(from), doc.State, doc.ReviewComment)
	if err != nil {
		return err
	}
	doc.SetVersion(version)
	return nil
}

// List implements contract.Repository with document-specific filters.
func (r *ContractRepo) List(ctx context.Context, filter contract.ListFilter) (domain.ListResult[*contract.Contract], error) {
	q := r.baseSelect()

	if filter.ClientName != nil {
		q = q.Where(squirrel.ILike{"client_name": "%" + *filter.ClientName + "%"})
	}
	if filter.StartDateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"start_date": *filter.StartDateFrom})
	}
	if filter.EndDateTo != nil {
		q = q.Where(squirrel.LtOrEq{"end_date": *filter.EndDateTo})
	}

	return r.ListWith(ctx, q, filter.ListFilter)
}

// SweepExpired promotes active contracts past their end date to completed
// in one conditional update. Naturally idempotent: an already-completed
// contract no longer matches the predicate, and concurrent sweeps cannot
// double-apply under at-most-one-write semantics.
func (r *ContractRepo) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.sweepExpiredQuery(now).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sweep: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("sweep expired contracts: %w", err)
	}

	return result.RowsAffected(), nil
}

// sweepExpiredQuery builds the conditional promotion. Only rows still in
// active with a past end date match, which keeps repeated sweeps no-ops.
func (r *ContractRepo) sweepExpiredQuery(now time.Time) squirrel.UpdateBuilder {
	return r.Builder().
		Update(contractTable).
		Set("state", string(contract.StateCompleted)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"state": string(contract.StateActive)}).
		Where(squirrel.Lt{"end_date": now})
}

// Ensure interface compliance at compile time.
var _ contract.Repository = (*ContractRepo)(nil)
