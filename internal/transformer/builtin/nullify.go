package builtin

import (
	"strings"

	"layoffs/pkg/records"
)

// Nullify replaces a sentinel token with an absent (nil) value.
//
// Only string values are inspected; typed values (ints, dates) are left
// alone, so a case-folding sweep can run after coercion without touching
// already parsed fields.
type Nullify struct {
	// Fields to inspect.
	Fields []string

	// Token is the sentinel text, e.g. "none".
	Token string

	// FoldCase matches Token case-insensitively ("None", "NONE", ...).
	FoldCase bool
}

// Apply mutates records in place and returns the same slice.
func (n Nullify) Apply(in []records.Record) []records.Record {
	if n.Token == "" {
		return in
	}
	for _, r := range in {
		for _, f := range n.Fields {
			s, ok := r[f].(string)
			if !ok {
				continue
			}
			if s == n.Token || (n.FoldCase && strings.EqualFold(s, n.Token)) {
				r[f] = nil
			}
		}
	}
	return in
}
