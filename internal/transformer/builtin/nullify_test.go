package builtin

import (
	"reflect"
	"testing"
	"time"

	"layoffs/pkg/records"
)

func TestNullify(t *testing.T) {
	t.Parallel()

	d := time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		n    Nullify
		in   records.Record
		want records.Record
	}{
		{
			name: "exact_match_only",
			n:    Nullify{Fields: []string{"a", "b", "c"}, Token: "none"},
			in:   records.Record{"a": "none", "b": "None", "c": "NONE"},
			want: records.Record{"a": nil, "b": "None", "c": "NONE"},
		},
		{
			name: "fold_case",
			n:    Nullify{Fields: []string{"a", "b", "c", "d"}, Token: "none", FoldCase: true},
			in:   records.Record{"a": "none", "b": "None", "c": "NONE", "d": "nOnE"},
			want: records.Record{"a": nil, "b": nil, "c": nil, "d": nil},
		},
		{
			name: "only_listed_fields",
			n:    Nullify{Fields: []string{"a"}, Token: "none", FoldCase: true},
			in:   records.Record{"a": "None", "b": "None"},
			want: records.Record{"a": nil, "b": "None"},
		},
		{
			name: "substrings_and_typed_values_untouched",
			n:    Nullify{Fields: []string{"a", "b", "c"}, Token: "none", FoldCase: true},
			in:   records.Record{"a": "Nonesuch", "b": d, "c": int64(3)},
			want: records.Record{"a": "Nonesuch", "b": d, "c": int64(3)},
		},
		{
			name: "empty_token_disabled",
			n:    Nullify{Fields: []string{"a"}},
			in:   records.Record{"a": ""},
			want: records.Record{"a": ""},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tc.n.Apply([]records.Record{tc.in})
			if !reflect.DeepEqual(got[0], tc.want) {
				t.Fatalf("Nullify.Apply = %#v, want %#v", got[0], tc.want)
			}
		})
	}
}
