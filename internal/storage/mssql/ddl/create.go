package ddl

import (
	"fmt"
	"strings"

	gddl "layoffs/internal/ddl"
)

// BuildCreateTableSQL returns a T-SQL script that creates t if it does not
// already exist. T-SQL has no CREATE TABLE IF NOT EXISTS, so the statement is
// wrapped in an OBJECT_ID guard:
//
//	IF OBJECT_ID(N'[dbo].[layoffs]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [dbo].[layoffs] (
//	    [company] NVARCHAR(MAX),
//	    ...
//	  );
//	END;
func BuildCreateTableSQL(t gddl.TableDef) (string, error) {
	cols, err := gddl.RenderColumns(t, quoteIdent)
	if err != nil {
		return "", fmt.Errorf("mssql %w", err)
	}
	fqn := gddl.QuoteFQN(t.FQN, quoteIdent)
	return fmt.Sprintf(
		"IF OBJECT_ID(N'%s', N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		strings.ReplaceAll(fqn, "'", "''"),
		fqn,
		strings.Join(cols, ",\n    "),
	), nil
}

// TruncateSQL returns a TRUNCATE statement for table.
func TruncateSQL(table string) string {
	return "TRUNCATE TABLE " + gddl.QuoteFQN(table, quoteIdent)
}

// quoteIdent quotes one identifier with brackets, escaping ']'.
//
//	name     -> [name]
//	weird]id -> [weird]]id]
func quoteIdent(id string) string {
	return "[" + strings.ReplaceAll(id, "]", "]]") + "]"
}
