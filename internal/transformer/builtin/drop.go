package builtin

import "layoffs/pkg/records"

// Drop deletes bookkeeping columns, such as the dedup row number, from every
// record.
type Drop struct {
	Fields []string
}

// Apply mutates records in place and returns the same slice.
func (d Drop) Apply(in []records.Record) []records.Record {
	for _, r := range in {
		for _, f := range d.Fields {
			delete(r, f)
		}
	}
	return in
}
