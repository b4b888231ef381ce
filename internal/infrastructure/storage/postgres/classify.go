package postgres

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"contratia/internal/core/apperror"
)

// IsTransient reports whether err is a transient store failure: the
// connection dropped, the server is shutting down or out of resources,
// or the statement timed out. Business failures (constraint violations,
// no rows) are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if pgconn.Timeout(err) {
		return true
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// Class 08 - connection exception, class 53 - insufficient
		// resources, 57P* - server shutdown/crash.
		return strings.HasPrefix(pgErr.Code, "08") ||
			strings.HasPrefix(pgErr.Code, "53") ||
			strings.HasPrefix(pgErr.Code, "57P")
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// ClassifyError maps transient store failures to STORE_UNAVAILABLE so
// callers and clients can tell a retryable outage from a bug. Errors that
// already carry an application code pass through unchanged, as does
// everything non-transient.
func ClassifyError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}
	if IsTransient(err) {
		return apperror.NewStoreUnavailable(err)
	}
	return err
}

// classifyQuerier wraps a Querier so every query error passes through
// ClassifyError before reaching the repositories.
type classifyQuerier struct {
	q Querier
}

func (c classifyQuerier) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	tag, err := c.q.Exec(ctx, sql, arguments...)
	return tag, ClassifyError(err)
}

func (c classifyQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	rows, err := c.q.Query(ctx, sql, args...)
	return rows, ClassifyError(err)
}

func (c classifyQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return classifyRow{row: c.q.QueryRow(ctx, sql, args...)}
}

type classifyRow struct {
	row pgx.Row
}

func (r classifyRow) Scan(dest ...any) error {
	return ClassifyError(r.row.Scan(dest...))
}
