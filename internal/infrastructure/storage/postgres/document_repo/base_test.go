package document_repo

import (
	"testing"

	"contratia/internal/domain"
)

func newTestRepo() *BaseDocumentRepo[any] {
	return NewBaseDocumentRepo[any](
		"test_docs",
		[]string{"id", "number", "state", "owner_id", "created_at"},
		func() any { return nil },
		nil,
	)
}

func TestApplyListFilter(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name     string
		filter   domain.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "Search",
			filter:   domain.ListFilter{Search: "CT-2026"},
			wantSQL:  "SELECT id, number, state, owner_id, created_at FROM test_docs WHERE number ILIKE $1",
			wantArgs: []any{"%CT-2026%"},
		},
		{
			name:     "OwnerID",
			filter:   domain.ListFilter{OwnerID: "user-1"},
			wantSQL:  "SELECT id, number, state, owner_id, created_at FROM test_docs WHERE owner_id = $1",
			wantArgs: []any{"user-1"},
		},
		{
			name:     "States",
			filter:   domain.ListFilter{States: []string{"draft", "returned"}},
			wantSQL:  "SELECT id, number, state, owner_id, created_at FROM test_docs WHERE state IN ($1,$2)",
			wantArgs: []any{"draft", "returned"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := repo.applyListFilter(repo.baseSelect(), tt.filter)

			sql, args, err := q.ToSql()
			if err != nil {
				t.Fatalf("ToSql failed: %v", err)
			}

			if sql != tt.wantSQL {
				t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", tt.wantSQL, sql)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(tt.wantArgs), len(args))
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, tt.wantArgs[i], args[i])
				}
			}
		})
	}
}

func TestParseOrderBy(t *testing.T) {
	repo := newTestRepo()

	tests := []struct {
		name    string
		orderBy string
		want    string
		wantErr bool
	}{
		{"Default", "", "created_at DESC", false},
		{"Ascending", "number", "number ASC", false},
		{"ExplicitAscending", "+number", "number ASC", false},
		{"Descending", "-created_at", "created_at DESC", false},
		{"UnknownColumn", "password_hash", "", true},
		{"Injection", "number; DROP TABLE test_docs", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.parseOrderBy(tt.orderBy)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.orderBy, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseOrderBy(%q) failed: %v", tt.orderBy, err)
			}
			if got != tt.want {
				t.Errorf("parseOrderBy(%q) = %q, want %q", tt.orderBy, got, tt.want)
			}
		})
	}
}
