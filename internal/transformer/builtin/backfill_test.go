package builtin

import (
	"testing"

	"layoffs/pkg/records"
)

func ind(company, location string, industry any) records.Record {
	return records.Record{"company": company, "location": location, "industry": industry}
}

func TestBackfill(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		ind("Beta", "NY", "Fintech"),
		ind("Beta", "NY", nil),
		ind("Beta", "SF", ""),
		ind("Gamma", "LA", ""),
		ind("Gamma", "LA", "Travel"),
	}
	var fills int
	b := Backfill{
		Keys:   []string{"company", "location"},
		Field:  "industry",
		OnFill: func(records.Record, any) { fills++ },
	}
	out := b.Apply(in)

	want := []any{"Fintech", "Fintech", nil, "Travel", "Travel"}
	for i, w := range want {
		if got := out[i]["industry"]; got != w {
			t.Errorf("out[%d].industry = %v, want %v", i, got, w)
		}
	}
	if fills != 2 {
		t.Fatalf("fills = %d, want 2", fills)
	}
}

func TestBackfill_UsesSnapshot(t *testing.T) {
	t.Parallel()

	// The second record is filled from the first; the third must not see
	// a value through a chain of fills because donors come from the
	// pre-pass state only.
	in := []records.Record{
		ind("Acme", "SF", nil),
		ind("Acme", "SF", nil),
	}
	out := Backfill{Keys: []string{"company", "location"}, Field: "industry"}.Apply(in)
	for i, r := range out {
		if r["industry"] != nil {
			t.Errorf("out[%d].industry = %v, want nil (no donor)", i, r["industry"])
		}
	}
}

func TestBackfill_AbsentKeyNeverMatches(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		{"company": "Acme", "location": nil, "industry": "Retail"},
		{"company": "Acme", "location": nil, "industry": nil},
	}
	out := Backfill{Keys: []string{"company", "location"}, Field: "industry"}.Apply(in)
	if out[1]["industry"] != nil {
		t.Fatalf("industry = %v, want nil for a NULL join key", out[1]["industry"])
	}
}

func TestBackfill_FirstDonorWins(t *testing.T) {
	t.Parallel()

	in := []records.Record{
		ind("Acme", "SF", "Retail"),
		ind("Acme", "SF", "Food"),
		ind("Acme", "SF", nil),
	}
	out := Backfill{Keys: []string{"company", "location"}, Field: "industry"}.Apply(in)
	if out[2]["industry"] != "Retail" {
		t.Fatalf("industry = %v, want first donor Retail", out[2]["industry"])
	}
}
