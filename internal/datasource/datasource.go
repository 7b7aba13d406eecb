// Package datasource abstracts where the raw extract is read from.
package datasource

import (
	"context"
	"fmt"
	"io"

	"layoffs/internal/config"
	"layoffs/internal/datasource/file"
)

// Source opens the raw byte stream of an extract.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// New returns the Source described by cfg.
func New(cfg config.Source) (Source, error) {
	switch cfg.Kind {
	case "file":
		return file.NewLocal(cfg.File.Path), nil
	default:
		return nil, fmt.Errorf("datasource: unsupported kind %q", cfg.Kind)
	}
}
