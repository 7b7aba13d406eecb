// This adapter wires the Postgres backend into the storage-agnostic factory
// and registers its DDL helpers, so callers only ever branch on storage.kind.
package postgres

import (
	"context"

	"layoffs/internal/storage"
	pgddl "layoffs/internal/storage/postgres/ddl"
)

// newRepository is a test hook that points to NewRepository by default.
var newRepository = NewRepository

// wrappedRepo implements storage.Repository by delegating to *Repository and
// calling the close function returned by NewRepository.
type wrappedRepo struct {
	*Repository
	closeFn func()
}

var _ storage.Repository = (*wrappedRepo)(nil)

// Close implements storage.Repository.Close.
func (w *wrappedRepo) Close() {
	if w.closeFn != nil {
		w.closeFn()
	}
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		r, closeFn, err := newRepository(ctx, Config{DSN: cfg.DSN, Table: cfg.Table})
		if err != nil {
			return nil, err
		}
		return &wrappedRepo{Repository: r, closeFn: closeFn}, nil
	})

	storage.RegisterDDL("postgres", storage.DDL{
		MapType:     pgddl.MapType,
		CreateTable: pgddl.BuildCreateTableSQL,
		Truncate:    pgddl.TruncateSQL,
	})
}
