package builtin

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"

	"layoffs/pkg/records"
)

func TestCoerceApply_Basics(t *testing.T) {
	t.Parallel()

	c := Coerce{
		Types: map[string]string{
			"i": "int",
			"b": "bool",
			"d": "date",
			"s": "string",
		},
		Layout: "1/2/2006",
	}

	out := c.Apply([]records.Record{{
		"i": "42",
		"b": "true",
		"d": "1/5/2023",
		"s": "hello",
	}})
	want := records.Record{
		"i": int64(42),
		"b": true,
		"d": time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
		"s": "hello",
	}
	if !reflect.DeepEqual(out[0], want) {
		t.Fatalf("Coerce.Apply = %#v, want %#v", out[0], want)
	}
}

func TestCoerceApply_DateLayoutAcceptsPadded(t *testing.T) {
	t.Parallel()

	c := Coerce{Types: map[string]string{"d": "date"}, Layout: "1/2/2006"}
	out := c.Apply([]records.Record{{"d": "03/14/2022"}, {"d": "12/1/2020"}})

	want := []time.Time{
		time.Date(2022, 3, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		if got, ok := out[i]["d"].(time.Time); !ok || !got.Equal(w) {
			t.Errorf("out[%d].d = %#v, want %v", i, out[i]["d"], w)
		}
	}
}

func TestCoerceApply_Lenient(t *testing.T) {
	t.Parallel()

	type failure struct{ field, value string }
	var failures []failure

	c := Coerce{
		Types:  map[string]string{"d": "date", "n": "int"},
		Layout: "1/2/2006",
		Null:   []string{"None"},
		OnError: func(field, value string, err error) {
			if err == nil {
				t.Errorf("OnError called with nil error")
			}
			failures = append(failures, failure{field, value})
		},
	}

	in := []records.Record{
		{"d": "None", "n": "None"},
		{"d": "", "n": ""},
		{"d": "2023-13-45", "n": "12a"},
		{"d": nil, "n": int64(7)},
	}
	out := c.Apply(in)

	want := []records.Record{
		{"d": nil, "n": nil},
		{"d": nil, "n": nil},
		{"d": nil, "n": nil},
		{"d": nil, "n": int64(7)},
	}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("Coerce.Apply = %#v, want %#v", out, want)
	}
	if len(failures) != 2 {
		t.Fatalf("OnError calls = %v, want 2 (only unparseable values)", failures)
	}
	for _, f := range failures {
		if f.value != "2023-13-45" && f.value != "12a" {
			t.Errorf("unexpected failure %+v", f)
		}
	}
}

func TestCoerceApply_NoTypes(t *testing.T) {
	t.Parallel()

	in := []records.Record{{"a": "1"}}
	if out := (Coerce{}).Apply(in); out[0]["a"] != "1" {
		t.Fatalf("Coerce with no types changed record: %#v", out[0])
	}
}

func TestCoerceApply_ReportsParseError(t *testing.T) {
	t.Parallel()

	var got error
	c := Coerce{
		Types:   map[string]string{"n": "int"},
		OnError: func(_, _ string, err error) { got = err },
	}
	c.Apply([]records.Record{{"n": "x"}})

	var numErr *strconv.NumError
	if !errors.As(got, &numErr) {
		t.Fatalf("OnError err = %v, want *strconv.NumError", got)
	}
}
