package builtin

import (
	"strings"

	"layoffs/pkg/records"
)

// Canonicalize rewrites values of Field that begin with Prefix (case
// sensitive). When Replace is set the whole value becomes Replace, which
// collapses variants such as "Crypto Currency" into "Crypto". Otherwise every
// trailing character contained in TrimRight is stripped, e.g. "United States."
// becomes "United States".
type Canonicalize struct {
	Field     string
	Prefix    string
	Replace   string
	TrimRight string
}

// Apply mutates records in place and returns the same slice.
func (c Canonicalize) Apply(in []records.Record) []records.Record {
	if c.Field == "" || c.Prefix == "" {
		return in
	}
	for _, r := range in {
		s, ok := r[c.Field].(string)
		if !ok || !strings.HasPrefix(s, c.Prefix) {
			continue
		}
		switch {
		case c.Replace != "":
			r[c.Field] = c.Replace
		case c.TrimRight != "":
			r[c.Field] = strings.TrimRight(s, c.TrimRight)
		}
	}
	return in
}
