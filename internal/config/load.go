package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"layoffs/internal/layoff"
)

// Load reads a pipeline file. Files ending in .yaml or .yml are decoded with
// yaml.v3; everything else is treated as JSON.
func Load(path string) (Pipeline, error) {
	var p Pipeline
	b, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("parse yaml config %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(b, &p); err != nil {
			return p, fmt.Errorf("parse json config %s: %w", path, err)
		}
	}
	return p, nil
}

// Default returns the canonical layoffs pipeline: a headered CSV file, the
// fixed cleaning chain and a sqlite sink. Callers typically override the
// source path and DSN.
func Default() Pipeline {
	numeric := []any{layoff.TotalLaidOff, layoff.PercentageLaidOff, layoff.FundsRaisedMillions}
	text := anySlice(layoff.TextColumns)
	identity := anySlice(layoff.Columns)

	return Pipeline{
		Job:    "layoffs",
		Source: Source{Kind: "file", File: SourceFile{Path: "layoffs.csv"}},
		Parser: Parser{Kind: "csv", Options: Options{"has_header": true, "comma": ","}},
		Transform: []Transform{
			{Kind: "dedupe", Options: Options{"keys": identity, "rank_field": layoff.RankColumn}},
			{Kind: "nullify", Options: Options{"fields": numeric, "token": "none"}},
			{Kind: "normalize", Options: Options{"fields": []any{"company"}}},
			{Kind: "canonicalize", Options: Options{"field": "industry", "prefix": "Crypto", "replace": "Crypto"}},
			{Kind: "canonicalize", Options: Options{"field": "country", "prefix": "United States", "trim_right": "."}},
			{Kind: "coerce", Options: Options{
				"layout": "1/2/2006",
				"null":   []any{"None"},
				"types": map[string]any{
					"date":                  "date",
					"total_laid_off":        "int",
					"funds_raised_millions": "int",
				},
			}},
			{Kind: "nullify", Options: Options{"fields": text, "token": "none", "fold_case": true}},
			{Kind: "backfill", Options: Options{"keys": []any{"company", "location"}, "field": "industry"}},
			{Kind: "require", Options: Options{"fields": []any{"total_laid_off", "percentage_laid_off"}, "mode": "any"}},
			{Kind: "drop", Options: Options{"fields": []any{layoff.RankColumn}}},
		},
		Storage: Storage{
			Kind: "sqlite",
			DB: DBConfig{
				DSN:             "layoffs.db",
				Table:           "layoffs",
				AutoCreateTable: true,
				Truncate:        true,
			},
		},
		Report: Report{Enabled: true, Format: "text", TopN: 5},
		Runtime: RuntimeConfig{
			BatchSize:      1000,
			MetricsBackend: "none",
		},
	}
}

// anySlice converts a column list into the []any shape decoded option
// lists have.
func anySlice(cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = c
	}
	return out
}

// envOverrides lists the environment variables that may override file
// settings. Unset variables leave the file value in place.
type envOverrides struct {
	BatchSize      *int    `env:"LAYOFFS_BATCH_SIZE"`
	MetricsBackend *string `env:"LAYOFFS_METRICS_BACKEND"`
	PushgatewayURL *string `env:"LAYOFFS_PUSHGATEWAY_URL"`
	DogStatsDAddr  *string `env:"LAYOFFS_DOGSTATSD_ADDR"`
	LockFile       *string `env:"LAYOFFS_LOCK_FILE"`
	DSN            *string `env:"LAYOFFS_DSN"`
}

// ApplyEnv overlays LAYOFFS_* environment variables onto p.
func ApplyEnv(p *Pipeline) error {
	return applyEnv(p, env.Options{})
}

func applyEnv(p *Pipeline, opts env.Options) error {
	var o envOverrides
	if err := env.ParseWithOptions(&o, opts); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	if o.BatchSize != nil {
		p.Runtime.BatchSize = *o.BatchSize
	}
	if o.MetricsBackend != nil {
		p.Runtime.MetricsBackend = *o.MetricsBackend
	}
	if o.PushgatewayURL != nil {
		p.Runtime.PushgatewayURL = *o.PushgatewayURL
	}
	if o.DogStatsDAddr != nil {
		p.Runtime.DogStatsDAddr = *o.DogStatsDAddr
	}
	if o.LockFile != nil {
		p.Runtime.LockFile = *o.LockFile
	}
	if o.DSN != nil {
		p.Storage.DB.DSN = *o.DSN
	}
	return nil
}
