// Package ddl defines a small, backend-agnostic model for SQL DDL and helpers
// shared by the dialect packages under internal/storage/*/ddl.
//
// The model does not assume a dialect. Backends supply a MapType function
// turning logical types ("text", "int", "date") into SQL types and a quoting
// function for identifiers, and render their own CREATE TABLE wrapper around
// RenderColumns.
package ddl

import (
	"fmt"
	"strings"
)

// FromColumns builds a TableDef for table with one nullable column per name
// in cols. types maps column name to logical type; missing entries are
// "text". mapType converts logical types to the backend's SQL types.
func FromColumns(table string, cols []string, types map[string]string, mapType func(string) string) (TableDef, error) {
	table = strings.TrimSpace(table)
	if table == "" {
		return TableDef{}, fmt.Errorf("ddl: table must not be empty")
	}
	if len(cols) == 0 {
		return TableDef{}, fmt.Errorf("ddl: at least one column is required")
	}
	if mapType == nil {
		return TableDef{}, fmt.Errorf("ddl: mapType must not be nil")
	}

	defs := make([]ColumnDef, len(cols))
	for i, c := range cols {
		logical := types[c]
		if logical == "" {
			logical = "text"
		}
		defs[i] = ColumnDef{Name: c, SQLType: mapType(logical), Nullable: true}
	}
	return TableDef{FQN: table, Columns: defs}, nil
}

// RenderColumns validates t and renders one "<quoted name> <type> [NOT NULL]"
// line per column, in order.
func RenderColumns(t TableDef, quote func(string) string) ([]string, error) {
	if strings.TrimSpace(t.FQN) == "" {
		return nil, fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return nil, fmt.Errorf("ddl: at least one column is required")
	}

	lines := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, fmt.Errorf("ddl: column with empty name in table %s", t.FQN)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return nil, fmt.Errorf("ddl: column %s missing SQLType", name)
		}
		line := quote(name) + " " + typ
		if !c.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// QuoteFQN quotes every dot-separated segment of fqn with quote, skipping
// empty segments.
func QuoteFQN(fqn string, quote func(string) string) string {
	parts := strings.Split(fqn, ".")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, quote(p))
	}
	return strings.Join(out, ".")
}

// DoubleQuote quotes an identifier ANSI style, doubling embedded quotes.
func DoubleQuote(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
