package ddl

import (
	"fmt"
	"strings"

	gddl "layoffs/internal/ddl"
)

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS with quoted
// identifiers; "public.layoffs" becomes "public"."layoffs".
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns(t, gddl.DoubleQuote)
	if err != nil {
		return "", fmt.Errorf("postgres %w", err)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		gddl.QuoteFQN(t.FQN, gddl.DoubleQuote),
		strings.Join(cols, ",\n  "),
	), nil
}

// TruncateSQL returns a TRUNCATE statement for table.
func TruncateSQL(table string) string {
	return "TRUNCATE TABLE " + gddl.QuoteFQN(table, gddl.DoubleQuote)
}
