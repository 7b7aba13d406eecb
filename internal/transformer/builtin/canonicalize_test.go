package builtin

import (
	"testing"

	"layoffs/pkg/records"
)

func TestCanonicalize_Replace(t *testing.T) {
	t.Parallel()

	c := Canonicalize{Field: "industry", Prefix: "Crypto", Replace: "Crypto"}
	tests := []struct {
		in   any
		want any
	}{
		{"Crypto", "Crypto"},
		{"Crypto Currency", "Crypto"},
		{"CryptoCurrency", "Crypto"},
		{"crypto", "crypto"},
		{"Fintech", "Fintech"},
		{nil, nil},
	}
	for _, tc := range tests {
		out := c.Apply([]records.Record{{"industry": tc.in}})
		if got := out[0]["industry"]; got != tc.want {
			t.Errorf("industry %v -> %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalize_TrimRight(t *testing.T) {
	t.Parallel()

	c := Canonicalize{Field: "country", Prefix: "United States", TrimRight: "."}
	tests := []struct {
		in   string
		want string
	}{
		{"United States.", "United States"},
		{"United States..", "United States"},
		{"United States", "United States"},
		{"United Kingdom.", "United Kingdom."},
		{"Canada.", "Canada."},
	}
	for _, tc := range tests {
		out := c.Apply([]records.Record{{"country": tc.in}})
		if got := out[0]["country"]; got != tc.want {
			t.Errorf("country %q -> %v, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalize_Disabled(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"x": "abc"}}
	if out := (Canonicalize{Field: "x"}).Apply(in); out[0]["x"] != "abc" {
		t.Fatalf("Canonicalize without prefix changed value: %v", out[0]["x"])
	}
}
