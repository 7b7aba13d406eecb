package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/caarlos0/env/v11"

	"layoffs/internal/layoff"
)

// -----------------------------------------------------------------------------
// Pipeline decoding tests
// -----------------------------------------------------------------------------
//
// The JSON and YAML forms of a pipeline file must decode into the same struct
// graph, including the free-form Options bags.

const pipelineJSON = `{
  "job": "layoffs",
  "source": { "kind": "file", "file": { "path": "testdata/layoffs.csv" } },
  "parser": {
    "kind": "csv",
    "options": { "has_header": true, "comma": ",", "header_map": { "Company": "company" } }
  },
  "transform": [
    { "kind": "dedupe", "options": { "keys": ["company", "location"], "rank_field": "row_num" } },
    { "kind": "coerce", "options": { "layout": "1/2/2006", "types": { "date": "date", "total_laid_off": "int" } } },
    { "kind": "require", "options": { "fields": ["total_laid_off", "percentage_laid_off"], "mode": "any" } }
  ],
  "storage": {
    "kind": "sqlite",
    "db": { "dsn": "file:layoffs.db", "table": "layoffs", "auto_create_table": true, "truncate": true }
  },
  "report": { "enabled": true, "format": "json", "top_n": 3 },
  "runtime": { "batch_size": 500, "lock_file": "/tmp/layoffs.lock", "metrics_backend": "none" }
}`

const pipelineYAML = `
job: layoffs
source:
  kind: file
  file:
    path: testdata/layoffs.csv
parser:
  kind: csv
  options:
    has_header: true
    comma: ","
    header_map:
      Company: company
transform:
  - kind: dedupe
    options:
      keys: [company, location]
      rank_field: row_num
  - kind: coerce
    options:
      layout: 1/2/2006
      types:
        date: date
        total_laid_off: int
  - kind: require
    options:
      fields: [total_laid_off, percentage_laid_off]
      mode: any
storage:
  kind: sqlite
  db:
    dsn: file:layoffs.db
    table: layoffs
    auto_create_table: true
    truncate: true
report:
  enabled: true
  format: json
  top_n: 3
runtime:
  batch_size: 500
  lock_file: /tmp/layoffs.lock
  metrics_backend: none
`

func checkDecodedPipeline(t *testing.T, p Pipeline) {
	t.Helper()

	if p.Job != "layoffs" {
		t.Fatalf("job = %q, want layoffs", p.Job)
	}
	if p.Source.Kind != "file" || p.Source.File.Path != "testdata/layoffs.csv" {
		t.Fatalf("source decoded = %#v", p.Source)
	}
	if p.Parser.Kind != "csv" || !p.Parser.Options.Bool("has_header", false) {
		t.Fatalf("parser decoded = %#v", p.Parser)
	}
	if got := p.Parser.Options.Rune("comma", ';'); got != ',' {
		t.Fatalf("parser.options.comma = %q, want ','", got)
	}
	if hm := p.Parser.Options.StringMap("header_map"); hm["Company"] != "company" {
		t.Fatalf("header_map = %#v", hm)
	}

	if len(p.Transform) != 3 || p.Transform[0].Kind != "dedupe" {
		t.Fatalf("transform decoded = %#v, want 3 steps with dedupe first", p.Transform)
	}
	if got := p.Transform[0].Options.StringSlice("keys"); !reflect.DeepEqual(got, []string{"company", "location"}) {
		t.Fatalf("dedupe.keys = %#v", got)
	}
	if tt := p.Transform[1].Options.StringMap("types"); tt["date"] != "date" || tt["total_laid_off"] != "int" {
		t.Fatalf("coerce.types = %#v", tt)
	}
	if got := p.Transform[2].Options.String("mode", ""); got != "any" {
		t.Fatalf("require.mode = %q, want any", got)
	}

	want := DBConfig{DSN: "file:layoffs.db", Table: "layoffs", AutoCreateTable: true, Truncate: true}
	if p.Storage.Kind != "sqlite" || p.Storage.DB != want {
		t.Fatalf("storage decoded = %#v", p.Storage)
	}
	if p.Report != (Report{Enabled: true, Format: "json", TopN: 3}) {
		t.Fatalf("report decoded = %#v", p.Report)
	}
	if p.Runtime.BatchSize != 500 || p.Runtime.LockFile != "/tmp/layoffs.lock" || p.Runtime.MetricsBackend != "none" {
		t.Fatalf("runtime decoded = %#v", p.Runtime)
	}
}

func TestPipeline_DecodeJSON(t *testing.T) {
	t.Parallel()

	var p Pipeline
	if err := json.Unmarshal([]byte(pipelineJSON), &p); err != nil {
		t.Fatalf("json.Unmarshal(Pipeline): %v", err)
	}
	checkDecodedPipeline(t, p)
}

func TestLoad_ByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cases := map[string]string{
		"p.json": pipelineJSON,
		"p.yaml": pipelineYAML,
		"p.yml":  pipelineYAML,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		p, err := Load(path)
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		checkDecodedPipeline(t, p)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("Load(missing) = nil error, want error")
	}

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load(bad json) = nil error, want error")
	}
}

func TestDefault_IsValid(t *testing.T) {
	t.Parallel()

	p := Default()
	if issues := ValidatePipeline(p); len(issues) != 0 {
		t.Fatalf("Default() has issues: %+v", issues)
	}

	kinds := make([]string, len(p.Transform))
	for i, tr := range p.Transform {
		kinds[i] = tr.Kind
	}
	want := []string{
		"dedupe", "nullify", "normalize", "canonicalize", "canonicalize",
		"coerce", "nullify", "backfill", "require", "drop",
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("Default() transform kinds = %v, want %v", kinds, want)
	}
	if got := p.Transform[0].Options.StringSlice("keys"); !reflect.DeepEqual(got, layoff.Columns) {
		t.Fatalf("dedupe keys = %v, want %v", got, layoff.Columns)
	}
	if got := p.Transform[6].Options.StringSlice("fields"); !reflect.DeepEqual(got, layoff.TextColumns) {
		t.Fatalf("text nullify fields = %v, want %v", got, layoff.TextColumns)
	}
}

func TestApplyEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Parallel()

	p := Default()
	p.Runtime.LockFile = "from-file.lock"

	err := applyEnv(&p, env.Options{Environment: map[string]string{
		"LAYOFFS_BATCH_SIZE":      "42",
		"LAYOFFS_METRICS_BACKEND": "pushgateway",
		"LAYOFFS_PUSHGATEWAY_URL": "http://pgw:9091",
		"LAYOFFS_DSN":             "file:other.db",
	}})
	if err != nil {
		t.Fatalf("applyEnv: %v", err)
	}
	if p.Runtime.BatchSize != 42 {
		t.Errorf("batch_size = %d, want 42", p.Runtime.BatchSize)
	}
	if p.Runtime.MetricsBackend != "pushgateway" || p.Runtime.PushgatewayURL != "http://pgw:9091" {
		t.Errorf("metrics = %q %q", p.Runtime.MetricsBackend, p.Runtime.PushgatewayURL)
	}
	if p.Storage.DB.DSN != "file:other.db" {
		t.Errorf("dsn = %q, want file:other.db", p.Storage.DB.DSN)
	}
	if p.Runtime.LockFile != "from-file.lock" {
		t.Errorf("lock_file = %q, want untouched file value", p.Runtime.LockFile)
	}
}

func TestApplyEnv_BadInt(t *testing.T) {
	t.Parallel()

	p := Default()
	err := applyEnv(&p, env.Options{Environment: map[string]string{"LAYOFFS_BATCH_SIZE": "many"}})
	if err == nil {
		t.Fatal("applyEnv(bad int) = nil error, want error")
	}
}

// -----------------------------------------------------------------------------
// Options helper tests
// -----------------------------------------------------------------------------

func TestOptions_String_Bool_Int_Rune_DefaultsAndCoercion(t *testing.T) {
	t.Parallel()

	o := Options{
		"s":  "hello",
		"b":  true,
		"i":  float64(42), // encoding/json decodes numbers as float64
		"iy": 7,           // yaml.v3 decodes integers as int
		"r":  ",",
	}

	if got := o.String("s", "def"); got != "hello" {
		t.Fatalf("String(s) = %q, want hello", got)
	}
	if got := o.String("missing", "def"); got != "def" {
		t.Fatalf("String(missing) = %q, want def", got)
	}
	if got := o.Bool("b", false); got != true {
		t.Fatalf("Bool(b) = %v, want true", got)
	}
	if got := o.Bool("missing", true); got != true {
		t.Fatalf("Bool(missing) = %v, want true", got)
	}
	if got := o.Int("i", 0); got != 42 {
		t.Fatalf("Int(i) = %d, want 42", got)
	}
	if got := o.Int("iy", 0); got != 7 {
		t.Fatalf("Int(iy) = %d, want 7", got)
	}
	if got := o.Int("missing", 7); got != 7 {
		t.Fatalf("Int(missing) = %d, want 7", got)
	}
	if got := o.Rune("r", ';'); got != ',' {
		t.Fatalf("Rune(r) = %q, want ','", got)
	}
	if got := o.Rune("missing", 'X'); got != 'X' {
		t.Fatalf("Rune(missing) = %q, want 'X'", got)
	}

	o["r2"] = "ž"
	r := o.Rune("r2", 'x')
	if !utf8.ValidRune(r) || string(r) != "ž" {
		t.Fatalf("Rune(r2) = %#U, want ž", r)
	}
}

func TestOptions_StringMap_StringSlice_Any(t *testing.T) {
	t.Parallel()

	o := Options{
		"m":      map[string]any{"A": "a", "B": "b", "X": 1},
		"s1":     []any{"alpha", "beta", 3},
		"s2":     []string{"gamma", "delta"},
		"nested": map[string]any{"k": "v"},
	}

	if sm := o.StringMap("m"); !reflect.DeepEqual(sm, map[string]string{"A": "a", "B": "b"}) {
		t.Fatalf("StringMap(m) = %#v, want {A:a B:b}", sm)
	}
	if sm := o.StringMap("missing"); sm == nil || len(sm) != 0 {
		t.Fatalf("StringMap(missing) = %#v, want empty map", sm)
	}
	if ss := o.StringSlice("s1"); !reflect.DeepEqual(ss, []string{"alpha", "beta"}) {
		t.Fatalf("StringSlice(s1) = %#v, want [alpha beta]", ss)
	}
	if ss := o.StringSlice("s2"); !reflect.DeepEqual(ss, []string{"gamma", "delta"}) {
		t.Fatalf("StringSlice(s2) = %#v, want [gamma delta]", ss)
	}
	if got := o.StringSlice("missing"); got != nil {
		t.Fatalf("StringSlice(missing) = %#v, want nil", got)
	}
	if m, ok := o.Any("nested").(map[string]any); !ok || m["k"] != "v" {
		t.Fatalf("Any(nested) = %#v, want map with k=v", o.Any("nested"))
	}
	if o.Any("missing") != nil {
		t.Fatalf("Any(missing) should be nil when key absent")
	}
}

func TestOptions_UnmarshalJSON_NullYieldsEmptyMap(t *testing.T) {
	t.Parallel()

	var w struct {
		Opts Options `json:"options"`
	}
	if err := json.Unmarshal([]byte(`{"options": null}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts == nil || len(w.Opts) != 0 {
		t.Fatalf("Opts after null unmarshal = %#v, want non-nil empty map", w.Opts)
	}
}

func TestOptions_UnmarshalJSON_ObjectDecodesAsMap(t *testing.T) {
	t.Parallel()

	var w struct {
		Opts Options `json:"options"`
	}
	if err := json.Unmarshal([]byte(`{"options": {"a":"x","b":true,"n": 3}}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.Opts.String("a", "") != "x" || !w.Opts.Bool("b", false) || w.Opts.Int("n", 0) != 3 {
		t.Fatalf("Opts = %#v", w.Opts)
	}
}

func TestShippedPipelines(t *testing.T) {
	t.Parallel()

	want := Default()
	for _, name := range []string{"layoffs.json", "layoffs_postgres.yaml"} {
		p, err := Load(filepath.Join("..", "..", "configs", "pipelines", name))
		if err != nil {
			t.Fatalf("Load(%s): %v", name, err)
		}
		if issues := ValidatePipeline(p); HasErrors(issues) {
			t.Fatalf("%s: %v", name, issues)
		}
		if len(p.Transform) != len(want.Transform) {
			t.Fatalf("%s: %d transforms, want %d", name, len(p.Transform), len(want.Transform))
		}
		for i, tr := range p.Transform {
			w := want.Transform[i]
			if tr.Kind != w.Kind {
				t.Fatalf("%s: transform[%d] kind %q, want %q", name, i, tr.Kind, w.Kind)
			}
			for _, key := range []string{"keys", "fields", "null"} {
				if got, exp := tr.Options.StringSlice(key), w.Options.StringSlice(key); !reflect.DeepEqual(got, exp) {
					t.Errorf("%s: transform[%d].%s = %v, want %v", name, i, key, got, exp)
				}
			}
			if got, exp := tr.Options.StringMap("types"), w.Options.StringMap("types"); !reflect.DeepEqual(got, exp) {
				t.Errorf("%s: transform[%d].types = %v, want %v", name, i, got, exp)
			}
		}
	}
}
