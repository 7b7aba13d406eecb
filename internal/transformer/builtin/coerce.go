package builtin

import (
	"strconv"
	"time"

	"layoffs/pkg/records"
)

// Coerce converts string values into typed values.
//
// Supported types: "int" (int64), "bool", "date" (time.Time, parsed with
// Layout), "string" or "text" (left as-is). Coercion is lenient: empty
// strings and Null tokens become nil silently; values that fail to parse
// are reported through OnError and set to nil so a single bad cell never
// aborts the run.
type Coerce struct {
	Types  map[string]string // field -> int, bool, date, text
	Layout string            // date layout, e.g. "1/2/2006"

	// Null lists exact tokens meaning absent, e.g. "None".
	Null []string

	// OnError is called for every value that cannot be parsed.
	OnError func(field, value string, err error)
}

// Apply mutates records in place and returns the same slice.
func (c Coerce) Apply(in []records.Record) []records.Record {
	if len(c.Types) == 0 {
		return in
	}
	null := make(map[string]struct{}, len(c.Null))
	for _, s := range c.Null {
		null[s] = struct{}{}
	}

	for _, r := range in {
		for field, typ := range c.Types {
			s, isStr := r[field].(string)
			if !isStr {
				continue
			}
			if _, ok := null[s]; ok || s == "" {
				if typ != "string" && typ != "text" {
					r[field] = nil
				}
				continue
			}

			var (
				v   any
				err error
			)
			switch typ {
			case "int":
				v, err = strconv.ParseInt(s, 10, 64)
			case "bool":
				v, err = strconv.ParseBool(s)
			case "date":
				v, err = time.Parse(c.Layout, s)
			default:
				continue
			}
			if err != nil {
				if c.OnError != nil {
					c.OnError(field, s, err)
				}
				r[field] = nil
				continue
			}
			r[field] = v
		}
	}
	return in
}
