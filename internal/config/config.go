// Package config defines the JSON/YAML-serializable configuration model of the
// layoffs cleaning pipeline.
//
// A pipeline file describes where the raw extract comes from, how it is
// parsed, the ordered list of cleaning transforms, where the canonical table
// is written, and which reports are produced. Field names in Go mirror the
// keys used in configs/pipelines/*.json and *.yaml.
//
// Example (trimmed):
//
//	{
//	  "job":       "layoffs",
//	  "source":    { "kind": "file", "file": { "path": "layoffs.csv" } },
//	  "parser":    { "kind": "csv", "options": { "has_header": true } },
//	  "transform": [
//	    { "kind": "dedupe", "options": { "keys": ["company", "location"] } }
//	  ],
//	  "storage":   { "kind": "sqlite", "db": { "dsn": "layoffs.db", "table": "layoffs" } }
//	}
package config

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the run; it labels metrics and logs.
	Job string `json:"job" yaml:"job"`

	// Source describes where the raw extract comes from.
	Source Source `json:"source" yaml:"source"`

	// Parser configures how raw bytes are turned into records.
	Parser Parser `json:"parser" yaml:"parser"`

	// Transform lists the ordered cleaning passes. Order is significant:
	// later passes depend on the output of earlier ones.
	Transform []Transform `json:"transform" yaml:"transform"`

	// Storage describes where canonical records are written.
	Storage Storage `json:"storage" yaml:"storage"`

	// Report selects the read-only reports computed after cleaning.
	Report Report `json:"report" yaml:"report"`

	Runtime RuntimeConfig `json:"runtime" yaml:"runtime"`
}

// RuntimeConfig controls batching, locking and metrics.
type RuntimeConfig struct {
	// BatchSize is the number of rows per storage write.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// LockFile guards the output against concurrent runs. Empty disables
	// locking.
	LockFile string `json:"lock_file" yaml:"lock_file"`

	// MetricsBackend selects "pushgateway", "datadog" or "none".
	MetricsBackend string `json:"metrics_backend" yaml:"metrics_backend"`
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`
	DogStatsDAddr  string `json:"dogstatsd_addr" yaml:"dogstatsd_addr"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind" yaml:"kind"`

	File SourceFile `json:"file" yaml:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path" yaml:"path"`
}

// Parser selects how to parse the raw source into records.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind" yaml:"kind"`

	// Options is interpreted by the parser. For CSV: has_header (bool),
	// comma (string), lazy_quotes (bool), header_map (object).
	Options Options `json:"options" yaml:"options"`
}

// Transform defines a single cleaning pass.
type Transform struct {
	// Kind selects the transform implementation: "dedupe", "nullify",
	// "normalize", "canonicalize", "coerce", "backfill", "require", "drop".
	Kind string `json:"kind" yaml:"kind"`

	Options Options `json:"options" yaml:"options"`
}

// Storage selects the sink for the canonical table.
type Storage struct {
	// Kind selects the backend: "sqlite", "postgres", "mssql", "mysql" or
	// "none" to skip persistence.
	Kind string `json:"kind" yaml:"kind"`

	DB DBConfig `json:"db" yaml:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the driver-specific connection string.
	DSN string `json:"dsn" yaml:"dsn"`

	// Table is the (optionally schema-qualified) canonical table name.
	Table string `json:"table" yaml:"table"`

	// AutoCreateTable creates the table when it does not exist.
	AutoCreateTable bool `json:"auto_create_table" yaml:"auto_create_table"`

	// Truncate empties the table before writing so a re-run replaces the
	// previous canonical set instead of appending to it.
	Truncate bool `json:"truncate" yaml:"truncate"`
}

// Report selects the reports computed over the canonical set.
type Report struct {
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Format is "text" or "json".
	Format string `json:"format" yaml:"format"`

	// TopN is the number of ranks kept per year in the top-companies report.
	TopN int `json:"top_n" yaml:"top_n"`

	// Output is a file path; empty writes to stdout.
	Output string `json:"output" yaml:"output"`
}

// Options is a small helper to fetch typed values from a free-form map. It
// performs minimal type coercion and returns provided defaults when a key is
// absent or of an unexpected type.
type Options map[string]any

// String returns the string value for key or def.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers decode as float64
// and YAML integers as int; both are accepted.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		case int64:
			return int(n)
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object.
// Non-string values are ignored. Returns an empty map when missing.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// StringSlice returns a []string for key when the value is an array of
// strings. Returns nil when the key is missing or not an array.
func (o Options) StringSlice(key string) []string {
	if v, ok := o[key]; ok {
		switch vv := v.(type) {
		case []any:
			out := make([]string, 0, len(vv))
			for _, x := range vv {
				if s, ok := x.(string); ok {
					out = append(out, s)
				}
			}
			return out
		case []string:
			return vv
		}
	}
	return nil
}

// Any returns the raw value for key.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}

// UnmarshalJSON decodes a missing or null "options" object to an empty,
// non-nil Options map.
func (o *Options) UnmarshalJSON(b []byte) error {
	var tmp map[string]any
	if len(b) == 0 || string(b) == "null" {
		*o = Options{}
		return nil
	}
	if err := json.Unmarshal(b, &tmp); err != nil {
		return err
	}
	*o = Options(tmp)
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML pipeline files.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var tmp map[string]any
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}
