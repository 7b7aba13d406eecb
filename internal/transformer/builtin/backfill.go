package builtin

import "layoffs/pkg/records"

// Backfill fills an absent categorical Field from another record that shares
// the same Keys values and has a non-empty Field.
//
// Donors are collected from a snapshot taken before any fill is applied, so
// a value filled earlier in the pass never becomes a donor. When a key has
// several candidate values the first one in input order wins. Records whose
// key contains an absent component never match (SQL NULL semantics). Targets
// without a donor end up nil.
type Backfill struct {
	Keys  []string
	Field string

	// OnFill is called once per filled record.
	OnFill func(r records.Record, value any)
}

// Apply mutates records in place and returns the same slice.
func (b Backfill) Apply(in []records.Record) []records.Record {
	if b.Field == "" || len(b.Keys) == 0 {
		return in
	}

	donors := make(map[string]any)
	for _, r := range in {
		if r.Absent(b.Field) {
			continue
		}
		k, ok := b.key(r)
		if !ok {
			continue
		}
		if _, seen := donors[k]; !seen {
			donors[k] = r[b.Field]
		}
	}

	for _, r := range in {
		if !r.Absent(b.Field) {
			continue
		}
		r[b.Field] = nil
		k, ok := b.key(r)
		if !ok {
			continue
		}
		if v, found := donors[k]; found {
			r[b.Field] = v
			if b.OnFill != nil {
				b.OnFill(r, v)
			}
		}
	}
	return in
}

func (b Backfill) key(r records.Record) (string, bool) {
	for _, k := range b.Keys {
		if r.Absent(k) {
			return "", false
		}
	}
	return identityKey(r, b.Keys), true
}
