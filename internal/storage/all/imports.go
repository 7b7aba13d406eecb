// Package all wires every built-in storage backend into the storage factory.
//
// It exists for side effects: importing it runs the init functions of the
// backends, which register their factories and DDL helpers. After
//
//	import _ "layoffs/internal/storage/all"
//
// the kinds "sqlite", "postgres", "mssql" and "mysql" are available through
// storage.New, storage.EnsureTable and storage.Truncate. A binary that needs
// only a subset can import the backend packages directly instead.
package all

import (
	_ "layoffs/internal/storage/mssql"
	_ "layoffs/internal/storage/mysql"
	_ "layoffs/internal/storage/postgres"
	_ "layoffs/internal/storage/sqlite"
)
