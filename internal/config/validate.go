// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a finding that should be surfaced to users
	// but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "storage.kind",
// "transform[1].options.keys"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether issues contains at least one SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation / linting of a Pipeline.
//
// It does not mutate the pipeline. Callers decide whether warnings are fatal.
//
//	p, err := config.Load(path)
//	if err != nil { ... }
//	for _, iss := range config.ValidatePipeline(p) {
//	    fmt.Printf("%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
//	}
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p.Source)...)
	issues = append(issues, validateParser(p.Parser)...)
	issues = append(issues, validateTransforms(p.Transform)...)
	issues = append(issues, validateStorage(p.Storage)...)
	issues = append(issues, validateReport(p.Report)...)
	issues = append(issues, validateRuntime(p.Runtime)...)

	return issues
}

func validateSource(s Source) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  "source.kind must not be empty",
		})
	}

	switch s.Kind {
	case "file":
		if strings.TrimSpace(s.File.Path) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "source.file.path",
				Message:  "file source requires a non-empty path",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source.kind",
			Message:  fmt.Sprintf("unsupported source kind %q", s.Kind),
		})
	}

	return issues
}

func validateParser(p Parser) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  "parser.kind must not be empty",
		})
	}
	if p.Kind != "csv" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.kind",
			Message:  fmt.Sprintf("unsupported parser kind %q", p.Kind),
		})
	}

	if c := p.Options.String("comma", ","); len([]rune(c)) != 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "parser.options.comma",
			Message:  fmt.Sprintf("comma must be a single character, got %q", c),
		})
	}
	if !p.Options.Bool("has_header", true) && len(p.Options.StringMap("header_map")) > 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "parser.options.header_map",
			Message:  "header_map is ignored when has_header is false; columns map positionally",
		})
	}

	return issues
}

// transformKinds lists the transform kinds understood by the chain builder.
var transformKinds = map[string]struct{}{
	"dedupe":       {},
	"nullify":      {},
	"normalize":    {},
	"canonicalize": {},
	"coerce":       {},
	"backfill":     {},
	"require":      {},
	"drop":         {},
}

func validateTransforms(ts []Transform) []Issue {
	var issues []Issue

	if len(ts) == 0 {
		return append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transform",
			Message:  "no transforms configured; raw parsed records will be written as-is",
		})
	}

	dedupeAt, firstEditAt := -1, -1
	for i, t := range ts {
		path := fmt.Sprintf("transform[%d]", i)
		if strings.TrimSpace(t.Kind) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  "transform kind must not be empty",
			})
			continue
		}
		if _, ok := transformKinds[t.Kind]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".kind",
				Message:  fmt.Sprintf("unknown transform kind %q", t.Kind),
			})
			continue
		}

		switch t.Kind {
		case "dedupe":
			if dedupeAt < 0 {
				dedupeAt = i
			}
			if len(t.Options.StringSlice("keys")) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Path:     path + ".options.keys",
					Message:  "dedupe has no keys; it will pass records through unchanged",
				})
			}
		case "nullify", "normalize", "canonicalize", "coerce", "backfill":
			if firstEditAt < 0 {
				firstEditAt = i
			}
		}

		issues = append(issues, validateTransformOptions(path, t)...)
	}

	// Rows differing only in whitespace or sentinel spelling are distinct
	// events; dedupe must see them before any normalization.
	if dedupeAt >= 0 && firstEditAt >= 0 && firstEditAt < dedupeAt {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     fmt.Sprintf("transform[%d]", dedupeAt),
			Message:  fmt.Sprintf("dedupe must run before value-editing transforms (transform[%d] edits values first)", firstEditAt),
		})
	}

	return issues
}

func validateTransformOptions(path string, t Transform) []Issue {
	var issues []Issue
	missing := func(key, msg string) {
		issues = append(issues, Issue{Severity: SeverityError, Path: path + ".options." + key, Message: msg})
	}

	switch t.Kind {
	case "nullify":
		if len(t.Options.StringSlice("fields")) == 0 {
			missing("fields", "nullify requires a non-empty fields list")
		}
		if t.Options.String("token", "") == "" {
			missing("token", "nullify requires a token")
		}
	case "canonicalize":
		if t.Options.String("field", "") == "" {
			missing("field", "canonicalize requires a field")
		}
		if t.Options.String("prefix", "") == "" {
			missing("prefix", "canonicalize requires a prefix")
		}
	case "coerce":
		types := t.Options.StringMap("types")
		if len(types) == 0 {
			missing("types", "coerce requires a types object")
		}
		for f, typ := range types {
			switch typ {
			case "int", "date", "bool", "text":
			default:
				missing("types."+f, fmt.Sprintf("unsupported coerce type %q", typ))
			}
		}
	case "backfill":
		if len(t.Options.StringSlice("keys")) == 0 {
			missing("keys", "backfill requires join keys")
		}
		if t.Options.String("field", "") == "" {
			missing("field", "backfill requires a field")
		}
	case "require":
		if len(t.Options.StringSlice("fields")) == 0 {
			missing("fields", "require needs at least one field")
		}
		switch m := t.Options.String("mode", "all"); m {
		case "all", "any":
		default:
			missing("mode", fmt.Sprintf("mode must be \"all\" or \"any\", got %q", m))
		}
	case "drop":
		if len(t.Options.StringSlice("fields")) == 0 {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     path + ".options.fields",
				Message:  "drop has no fields; it is a no-op",
			})
		}
	}
	return issues
}

func validateStorage(s Storage) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Kind) == "" {
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.kind",
			Message:  "storage.kind must not be empty",
		})
	}
	if s.Kind == "none" {
		return issues
	}

	known := map[string]struct{}{
		"postgres": {},
		"mysql":    {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[s.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "storage.kind",
			Message:  fmt.Sprintf("unknown storage kind %q; ensure a matching backend is registered", s.Kind),
		})
	}
	if strings.TrimSpace(s.DB.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.dsn",
			Message:  "storage.db.dsn must not be empty",
		})
	}
	if strings.TrimSpace(s.DB.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "storage.db.table",
			Message:  "storage.db.table must not be empty",
		})
	}

	return issues
}

func validateReport(r Report) []Issue {
	var issues []Issue
	if !r.Enabled {
		return nil
	}
	switch r.Format {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.format",
			Message:  fmt.Sprintf("report.format must be \"text\" or \"json\", got %q", r.Format),
		})
	}
	if r.TopN < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "report.top_n",
			Message:  "top_n must not be negative",
		})
	}
	return issues
}

// validateRuntime validates RuntimeConfig for obvious misconfigurations.
func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; the whole set will be written in one batch", r.BatchSize),
		})
	}
	switch r.MetricsBackend {
	case "", "none":
	case "pushgateway":
		if r.PushgatewayURL == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "runtime.pushgateway_url",
				Message:  "pushgateway metrics backend requires pushgateway_url",
			})
		}
	case "datadog":
		if r.DogStatsDAddr == "" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "runtime.dogstatsd_addr",
				Message:  "dogstatsd_addr is empty; the client default address will be used",
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.metrics_backend",
			Message:  fmt.Sprintf("unknown metrics backend %q", r.MetricsBackend),
		})
	}

	return issues
}
