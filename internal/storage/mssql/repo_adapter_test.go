package mssql

import (
	"context"
	"strings"
	"testing"
	"time"

	"layoffs/internal/layoff"
	"layoffs/internal/storage"
)

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var closed bool
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}
	repo, err := storage.New(context.Background(), storage.Config{Kind: "mssql", DSN: "sqlserver://x", Table: "dbo.layoffs"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if n, err := repo.CopyFrom(context.Background(), []string{"a"}, nil); n != 0 || err != nil {
		t.Fatalf("empty CopyFrom = %d, %v", n, err)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call closeFn")
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "sqlserver://%zz"}); err == nil {
		t.Fatal("want DSN error")
	}
}

func TestCheckRows_CanonicalEvents(t *testing.T) {
	t.Parallel()

	company, total := "Acme", int64(50)
	date := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	rows := [][]any{
		layoff.Event{Company: &company, TotalLaidOff: &total, Date: &date}.Values(),
		layoff.Event{}.Values(),
	}
	if err := checkRows(layoff.Columns, rows); err != nil {
		t.Fatalf("checkRows(canonical) = %v", err)
	}

	tests := map[string]struct {
		columns []string
		rows    [][]any
		want    string
	}{
		"no columns": {columns: nil, rows: rows, want: "columns must not be empty"},
		"short row":  {columns: layoff.Columns, rows: [][]any{rows[0][:8]}, want: "row 0 has 8 values, want 9"},
	}
	for name, tc := range tests {
		err := checkRows(tc.columns, tc.rows)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: checkRows = %v, want %q", name, err, tc.want)
		}
	}
}

func TestCopyFrom_RejectsMisalignedBatchBeforeTx(t *testing.T) {
	t.Parallel()

	// No database: the batch must be rejected before a transaction starts.
	r := &Repository{cfg: Config{Table: "dbo.layoffs"}}
	if _, err := r.CopyFrom(context.Background(), layoff.Columns, [][]any{{"Acme"}}); err == nil {
		t.Fatal("want width error")
	}
}

func TestBulkOptions_KeepsNulls(t *testing.T) {
	t.Parallel()

	opt := bulkOptions(6)
	if !opt.KeepNulls || opt.RowsPerBatch != 6 {
		t.Fatalf("bulkOptions(6) = %+v, want KeepNulls and RowsPerBatch 6", opt)
	}
}
