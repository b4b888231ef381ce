package document_repo

import (
	"testing"
	"time"
)

func TestSweepExpiredQuery(t *testing.T) {
	repo := NewContractRepo(nil)
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	sql, args, err := repo.sweepExpiredQuery(now).ToSql()
	if err != nil {
		t.Fatalf("ToSql failed: %v", err)
	}

	wantSQL := "UPDATE doc_contracts SET state = $1, version = version + 1, updated_at = NOW() WHERE state = $2 AND end_date < $3"
	if sql != wantSQL {
		t.Errorf("SQL mismatch\nwant: %s\ngot:  %s", wantSQL, sql)
	}

	wantArgs := []any{"completed", "active", now}
	if len(args) != len(wantArgs) {
		t.Fatalf("Args count mismatch\nwant: %d\ngot:  %d", len(wantArgs), len(args))
	}
	for i := range args {
		if args[i] != wantArgs[i] {
			t.Errorf("Arg %d mismatch\nwant: %v\ngot:  %v", i, wantArgs[i], args[i])
		}
	}
}
