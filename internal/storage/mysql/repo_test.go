package mysql

import (
	"context"
	"reflect"
	"testing"

	"layoffs/internal/storage"
)

func TestInsertSQL(t *testing.T) {
	t.Parallel()

	query, args, err := insertSQL("db.layoffs", []string{"company", "total"}, [][]any{{"Acme", int64(1)}, {"Beta", nil}})
	if err != nil {
		t.Fatalf("insertSQL: %v", err)
	}
	want := "INSERT INTO `db`.`layoffs` (`company`, `total`) VALUES (?, ?), (?, ?)"
	if query != want {
		t.Fatalf("query = %s, want %s", query, want)
	}
	if !reflect.DeepEqual(args, []any{"Acme", int64(1), "Beta", nil}) {
		t.Fatalf("args = %#v", args)
	}
	if _, _, err := insertSQL("t", []string{"a"}, [][]any{{1, 2}}); err == nil {
		t.Fatal("want width error")
	}
}

func TestRegistrationUsesNewRepositoryHook(t *testing.T) {
	orig := newRepository
	defer func() { newRepository = orig }()

	var (
		gotCfg Config
		closed bool
	)
	newRepository = func(_ context.Context, cfg Config) (*Repository, func(), error) {
		gotCfg = cfg
		return &Repository{cfg: cfg}, func() { closed = true }, nil
	}

	repo, err := storage.New(context.Background(), storage.Config{Kind: "mysql", DSN: "u:p@tcp(h)/db", Table: "layoffs"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	if gotCfg != (Config{DSN: "u:p@tcp(h)/db", Table: "layoffs"}) {
		t.Fatalf("hook cfg = %+v", gotCfg)
	}
	repo.Close()
	if !closed {
		t.Fatal("Close did not call closeFn")
	}
}

func TestNewRepository_BadDSN(t *testing.T) {
	t.Parallel()

	if _, _, err := NewRepository(context.Background(), Config{DSN: "not a dsn"}); err == nil {
		t.Fatal("want DSN error")
	}
}
