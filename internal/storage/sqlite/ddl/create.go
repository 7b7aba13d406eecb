package ddl

import (
	"fmt"
	"strings"

	gddl "layoffs/internal/ddl"
)

// BuildCreateTableSQL returns a SQLite CREATE TABLE IF NOT EXISTS statement
// for t, with double-quoted identifiers:
//
//	CREATE TABLE IF NOT EXISTS "layoffs" (
//	  "company" TEXT,
//	  "total_laid_off" INTEGER
//	);
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns(t, gddl.DoubleQuote)
	if err != nil {
		return "", fmt.Errorf("sqlite %w", err)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		gddl.QuoteFQN(t.FQN, gddl.DoubleQuote),
		strings.Join(cols, ",\n  "),
	), nil
}

// TruncateSQL returns the statement that empties table. SQLite has no
// TRUNCATE; an unqualified DELETE uses the truncate optimization.
func TruncateSQL(table string) string {
	return "DELETE FROM " + gddl.QuoteFQN(table, gddl.DoubleQuote)
}
