// Package records defines the loosely-typed row representation that flows
// through the transformer chain.
//
// A Record maps column name to value. Values start out as strings (or nil when
// a column is missing from the source) and are progressively typed by the
// coerce transformer (int64, time.Time). A nil value, or a missing key, means
// the field is absent.
package records

// Record is a single row keyed by column name.
type Record map[string]any

// Absent reports whether field is missing, nil, or an empty string.
func (r Record) Absent(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return true
	}
	if s, ok := v.(string); ok && s == "" {
		return true
	}
	return false
}

// String returns the string value of field. ok is false when the field is
// absent or holds a non-string value.
func (r Record) String(field string) (string, bool) {
	s, ok := r[field].(string)
	return s, ok
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
