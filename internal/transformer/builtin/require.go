package builtin

import "layoffs/pkg/records"

// Require filters records on the presence of Fields.
//
// Mode "all" (default) keeps records that have every field present; mode
// "any" keeps records that have at least one of them, i.e. it drops only the
// records where all listed fields are absent. A field is absent when missing,
// nil, or "".
type Require struct {
	Fields []string
	Mode   string

	// OnDrop is called for every removed record.
	OnDrop func(r records.Record)
}

// Apply returns a filtered slice reusing the input's backing array.
func (r Require) Apply(in []records.Record) []records.Record {
	if len(r.Fields) == 0 {
		return in
	}
	out := in[:0]
	for _, rec := range in {
		if r.keep(rec) {
			out = append(out, rec)
			continue
		}
		if r.OnDrop != nil {
			r.OnDrop(rec)
		}
	}
	return out
}

func (r Require) keep(rec records.Record) bool {
	if r.Mode == "any" {
		for _, f := range r.Fields {
			if !rec.Absent(f) {
				return true
			}
		}
		return false
	}
	for _, f := range r.Fields {
		if rec.Absent(f) {
			return false
		}
	}
	return true
}
