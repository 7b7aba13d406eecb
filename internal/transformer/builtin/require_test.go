package builtin

import (
	"testing"

	"layoffs/pkg/records"
)

func TestRequire_Any(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"t": int64(1), "p": nil},
		{"t": nil, "p": "0.5"},
		{"t": nil, "p": nil},
		{"t": nil, "p": ""},
		{"x": "only"},
	}
	var dropped int
	r := Require{Fields: []string{"t", "p"}, Mode: "any", OnDrop: func(records.Record) { dropped++ }}
	out := r.Apply(in)

	if len(out) != 2 {
		t.Fatalf("len = %d, want 2: %#v", len(out), out)
	}
	if dropped != 3 {
		t.Fatalf("dropped = %d, want 3", dropped)
	}
	for _, rec := range out {
		if rec.Absent("t") && rec.Absent("p") {
			t.Fatalf("record with both fields absent survived: %#v", rec)
		}
	}
}

func TestRequire_All(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"a": "1", "b": "2"},
		{"a": "1", "b": ""},
		{"a": "1"},
	}
	out := Require{Fields: []string{"a", "b"}}.Apply(in)
	if len(out) != 1 || out[0]["b"] != "2" {
		t.Fatalf("Require all = %#v, want only the complete record", out)
	}
}
