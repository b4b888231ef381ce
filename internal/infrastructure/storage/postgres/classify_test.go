package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"contratia/internal/core/apperror"
)

func TestClassifyError_TransientBecomesStoreUnavailable(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"connection reset", &net.OpError{Op: "read", Err: errors.New("connection reset by peer")}},
		{"deadline exceeded", context.DeadlineExceeded},
		{"server shutdown", &pgconn.PgError{Code: "57P01"}},
		{"connection exception", &pgconn.PgError{Code: "08006"}},
		{"out of resources", &pgconn.PgError{Code: "53300"}},
		{"wrapped by repo", fmt.Errorf("list doc_contracts: %w", &pgconn.PgError{Code: "08006"})},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appErr, ok := apperror.AsAppError(ClassifyError(tc.err))
			if assert.True(t, ok, "expected an AppError") {
				assert.Equal(t, apperror.CodeStoreUnavailable, appErr.Code)
				assert.Equal(t, 503, appErr.HTTPStatus)
			}
		})
	}
}

func TestClassifyError_BusinessErrorsPassThrough(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"no rows", pgx.ErrNoRows},
		{"unique violation", &pgconn.PgError{Code: "23505"}},
		{"plain error", errors.New("boom")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyError(tc.err)
			if appErr, ok := apperror.AsAppError(got); ok {
				t.Fatalf("should not classify as %s", appErr.Code)
			}
			assert.ErrorIs(t, got, tc.err)
		})
	}
}

func TestClassifyError_ExistingAppErrorUnchanged(t *testing.T) {
	in := apperror.NewConcurrentModification("doc_contracts", "x")
	got := ClassifyError(in)
	appErr, ok := apperror.AsAppError(got)
	assert.True(t, ok)
	assert.Equal(t, apperror.CodeConcurrentModification, appErr.Code)
}

func TestClassifyError_Nil(t *testing.T) {
	assert.NoError(t, ClassifyError(nil))
}
