// Package review_repo provides the PostgreSQL review ledger store.
// The ledger is append-only: there is no update or delete path, and
// entries deliberately carry no foreign key so they outlive deleted
// documents.
package review_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"

	"contratia/internal/core/id"
	"contratia/internal/domain/review"
	"contratia/internal/domain/workflow"
	"contratia/internal/infrastructure/storage/postgres"
)

const ledgerTable = "review_ledger"

// compressThreshold: snapshots below this size are stored verbatim.
const compressThreshold = 4 * 1024

type compressionAlgo string

const (
	compressionNone compressionAlgo = "none"
	compressionZstd compressionAlgo = "zstd"
)

// LedgerRepo implements review.Repository.
type LedgerRepo struct {
	txManager *postgres.TxManager
	encoder   *zstd.Encoder
	decoder   *zstd.Decoder
}

// NewLedgerRepo creates a review ledger repository.
func NewLedgerRepo(txManager *postgres.TxManager) (*LedgerRepo, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &LedgerRepo{
		txManager: txManager,
		encoder:   encoder,
		decoder:   decoder,
	}, nil
}

func (r *LedgerRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Append inserts one ledger entry. Large snapshots are zstd-compressed.
func (r *LedgerRepo) Append(ctx context.Context, entry *review.Entry) error {
	snapshot := []byte(entry.Snapshot)
	algo := compressionNone
	if len(snapshot) > compressThreshold {
		snapshot = r.encoder.EncodeAll(snapshot, nil)
		algo = compressionZstd
	}

	q := r.builder().
		Insert(ledgerTable).
		Columns(
			"id", "document_kind", "document_id",
			"reviewer_id", "reviewer_role", "action", "comment",
			"snapshot", "compression_algo", "created_at",
		).
		Values(
			entry.ID, string(entry.DocumentKind), entry.DocumentID,
			entry.ReviewerID, string(entry.ReviewerRole), string(entry.Action), entry.Comment,
			snapshot, string(algo), entry.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("append review entry: %w", err)
	}

	return nil
}

// ledgerRow is the raw table row before snapshot decompression.
type ledgerRow struct {
	ID              id.ID     `db:"id"`
	DocumentKind    string    `db:"document_kind"`
	DocumentID      id.ID     `db:"document_id"`
	ReviewerID      string    `db:"reviewer_id"`
	ReviewerRole    string    `db:"reviewer_role"`
	Action          string    `db:"action"`
	Comment         string    `db:"comment"`
	Snapshot        []byte    `db:"snapshot"`
	CompressionAlgo string    `db:"compression_algo"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r *LedgerRepo) selectRows(ctx context.Context, q squirrel.SelectBuilder) ([]review.Entry, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []ledgerRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select review entries: %w", err)
	}

	entries := make([]review.Entry, 0, len(rows))
	for _, row := range rows {
		snapshot := row.Snapshot
		if compressionAlgo(row.CompressionAlgo) == compressionZstd {
			snapshot, err = r.decoder.DecodeAll(row.Snapshot, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot %s: %w", row.ID, err)
			}
		}
		entries = append(entries, review.Entry{
			ID:           row.ID,
			DocumentKind: workflow.Kind(row.DocumentKind),
			DocumentID:   row.DocumentID,
			ReviewerID:   row.ReviewerID,
			ReviewerRole: workflow.Role(row.ReviewerRole),
			Action:       review.Action(row.Action),
			Comment:      row.Comment,
			Snapshot:     snapshot,
			CreatedAt:    row.CreatedAt,
		})
	}

	return entries, nil
}

func (r *LedgerRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().
		Select(
			"id", "document_kind", "document_id",
			"reviewer_id", "reviewer_role", "action", "comment",
			"snapshot", "compression_algo", "created_at",
		).
		From(ledgerTable)
}

// ListByDocument returns the document's entries, oldest first.
func (r *LedgerRepo) ListByDocument(ctx context.Context, kind workflow.Kind, docID id.ID) ([]review.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"document_kind": string(kind)}).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("created_at ASC")

	return r.selectRows(ctx, q)
}

// ListByReviewer returns the reviewer's entries, newest first.
func (r *LedgerRepo) ListByReviewer(ctx context.Context, reviewerID string, limit int) ([]review.Entry, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"reviewer_id": reviewerID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit))

	return r.selectRows(ctx, q)
}

// Ensure interface compliance at compile time.
var _ review.Repository = (*LedgerRepo)(nil)
