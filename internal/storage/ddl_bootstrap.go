package storage

import (
	"context"
	"fmt"
	"sync"

	"layoffs/internal/ddl"
)

// DDL bundles the dialect-specific statements a backend contributes.
type DDL struct {
	// MapType turns a logical type ("text", "int", "date") into a SQL type.
	MapType func(logical string) string
	// CreateTable renders an idempotent CREATE TABLE statement.
	CreateTable func(t ddl.TableDef) (string, error)
	// Truncate renders a statement removing every row of table.
	Truncate func(table string) string
}

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDL{}
)

// RegisterDDL registers (or replaces) the DDL helpers for a storage kind. It
// is typically called from backend packages' init functions.
func RegisterDDL(kind string, d DDL) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = d
}

func lookupDDL(kind string) (DDL, error) {
	ddlMu.RLock()
	d, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return DDL{}, fmt.Errorf("no DDL registered for storage.kind=%q", kind)
	}
	return d, nil
}

// TableDef builds the table definition for kind from logical column types.
func TableDef(kind, table string, cols []string, types map[string]string) (ddl.TableDef, error) {
	d, err := lookupDDL(kind)
	if err != nil {
		return ddl.TableDef{}, err
	}
	return ddl.FromColumns(table, cols, types, d.MapType)
}

// EnsureTable creates the table described by td when it does not exist.
func EnsureTable(ctx context.Context, kind string, repo Repository, td ddl.TableDef) error {
	d, err := lookupDDL(kind)
	if err != nil {
		return err
	}
	stmt, err := d.CreateTable(td)
	if err != nil {
		return fmt.Errorf("render DDL: %w", err)
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("apply DDL: %w", err)
	}
	return nil
}

// Truncate removes every row from table.
func Truncate(ctx context.Context, kind string, repo Repository, table string) error {
	d, err := lookupDDL(kind)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, d.Truncate(table)); err != nil {
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	return nil
}
