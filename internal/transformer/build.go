package transformer

import (
	"fmt"

	"layoffs/internal/config"
	"layoffs/internal/transformer/builtin"
	"layoffs/pkg/records"
)

// Hooks receives per-record events from the built transforms. Nil hooks are
// ignored.
type Hooks struct {
	// CoerceError is called for values that could not be parsed.
	CoerceError func(field, value string, err error)
	// Filled is called for every record whose field was backfilled.
	Filled func(r records.Record, value any)
	// Dropped is called for every record removed by a require step.
	Dropped func(r records.Record)
}

// Build turns the configured transform list into named steps. A step's name
// is options.name when set, otherwise its kind.
func Build(ts []config.Transform, h Hooks) (Steps, error) {
	steps := make(Steps, 0, len(ts))
	for i, t := range ts {
		tr, err := build(t, h)
		if err != nil {
			return nil, fmt.Errorf("transform[%d] %s: %w", i, t.Kind, err)
		}
		steps = append(steps, Step{Name: t.Options.String("name", t.Kind), Transformer: tr})
	}
	return steps, nil
}

func build(t config.Transform, h Hooks) (Transformer, error) {
	o := t.Options
	switch t.Kind {
	case "dedupe":
		return builtin.DeDup{Keys: o.StringSlice("keys"), RankField: o.String("rank_field", "")}, nil
	case "nullify":
		return builtin.Nullify{
			Fields:   o.StringSlice("fields"),
			Token:    o.String("token", ""),
			FoldCase: o.Bool("fold_case", false),
		}, nil
	case "normalize":
		return builtin.Normalize{Fields: o.StringSlice("fields")}, nil
	case "canonicalize":
		return builtin.Canonicalize{
			Field:     o.String("field", ""),
			Prefix:    o.String("prefix", ""),
			Replace:   o.String("replace", ""),
			TrimRight: o.String("trim_right", ""),
		}, nil
	case "coerce":
		types := o.StringMap("types")
		if len(types) == 0 {
			return nil, fmt.Errorf("types must not be empty")
		}
		return builtin.Coerce{
			Types:   types,
			Layout:  o.String("layout", "2006-01-02"),
			Null:    o.StringSlice("null"),
			OnError: h.CoerceError,
		}, nil
	case "backfill":
		return builtin.Backfill{
			Keys:   o.StringSlice("keys"),
			Field:  o.String("field", ""),
			OnFill: h.Filled,
		}, nil
	case "require":
		mode := o.String("mode", "all")
		if mode != "all" && mode != "any" {
			return nil, fmt.Errorf("unknown mode %q", mode)
		}
		return builtin.Require{Fields: o.StringSlice("fields"), Mode: mode, OnDrop: h.Dropped}, nil
	case "drop":
		return builtin.Drop{Fields: o.StringSlice("fields")}, nil
	default:
		return nil, fmt.Errorf("unknown transform kind")
	}
}
