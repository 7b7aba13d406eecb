package builtin

import (
	"strings"

	"layoffs/pkg/records"
)

// Normalize trims leading and trailing Unicode whitespace (NO-BREAK SPACE
// included) from string values. Interior characters are never touched.
// When Fields is empty every string value of the record is trimmed.
type Normalize struct {
	Fields []string
}

// Apply mutates records in place and returns the same slice.
func (n Normalize) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		if len(n.Fields) == 0 {
			for k, v := range r {
				if s, ok := v.(string); ok {
					r[k] = strings.TrimSpace(s)
				}
			}
			continue
		}
		for _, f := range n.Fields {
			if s, ok := r[f].(string); ok {
				r[f] = strings.TrimSpace(s)
			}
		}
	}
	return in
}
