// Package csv loads a delimited extract into an ordered collection of
// records. Loading is all-or-nothing: any read or parse error aborts and no
// records are returned.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"layoffs/internal/config"
	"layoffs/pkg/records"
)

// Options configures the loader. Zero values get sensible defaults.
type Options struct {
	// HasHeader indicates whether the first row contains column headers.
	// Without a header, cells map to columns by position.
	HasHeader bool

	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field.
	LazyQuotes bool

	// HeaderMap maps source header names to column names. Lookups use the
	// raw header (BOM stripped, trimmed) first and then its normalized form.
	HeaderMap map[string]string
}

// OptionsFrom reads parser options from a pipeline's parser block.
func OptionsFrom(o config.Options) Options {
	return Options{
		HasHeader:  o.Bool("has_header", true),
		Comma:      o.Rune("comma", ','),
		LazyQuotes: o.Bool("lazy_quotes", false),
		HeaderMap:  o.StringMap("header_map"),
	}
}

// checkEvery is how many rows are read between context checks.
const checkEvery = 1024

// ReadRecords reads every row of r into a record keyed by columns.
//
// Cell text is kept exactly as read: no trimming, and empty cells stay "".
// Every target column must resolve to a header cell, otherwise the load
// fails before any row is read. Source columns that do not map to a target
// column are ignored.
func ReadRecords(ctx context.Context, r io.Reader, columns []string, opt Options) ([]records.Record, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.LazyQuotes = opt.LazyQuotes
	cr.ReuseRecord = true

	// pos[i] is the source cell index of columns[i], or -1.
	pos := make([]int, len(columns))
	if opt.HasHeader {
		header, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv: empty input, missing header")
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read header: %w", err)
		}
		pos = headerPositions(header, columns, opt.HeaderMap)
		if missing := missingColumns(columns, pos); len(missing) > 0 {
			return nil, fmt.Errorf("csv: header is missing required columns %s", strings.Join(missing, ", "))
		}
	} else {
		for i := range pos {
			pos[i] = i
		}
		cr.FieldsPerRecord = len(columns)
	}

	var out []records.Record
	for n := 0; ; n++ {
		if n%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: %w", err)
		}

		rec := make(records.Record, len(columns))
		for i, c := range columns {
			if p := pos[i]; p >= 0 && p < len(row) {
				rec[c] = row[p]
			} else {
				rec[c] = nil
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

// headerPositions resolves each target column to its index in header.
func headerPositions(header, columns []string, headerMap map[string]string) []int {
	header = StripHeaderBOM(header)

	index := make(map[string]int, len(header))
	for i, h := range header {
		name := resolveHeader(h, headerMap)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	pos := make([]int, len(columns))
	for i, c := range columns {
		if p, ok := index[c]; ok {
			pos[i] = p
		} else {
			pos[i] = -1
		}
	}
	return pos
}

// missingColumns lists the target columns with no header position.
func missingColumns(columns []string, pos []int) []string {
	var missing []string
	for i, p := range pos {
		if p < 0 {
			missing = append(missing, columns[i])
		}
	}
	return missing
}

func resolveHeader(h string, headerMap map[string]string) string {
	key := trimHeader(h)
	if m, ok := headerMap[key]; ok {
		return m
	}
	name := NormalizeHeader(key)
	if m, ok := headerMap[name]; ok {
		return m
	}
	return name
}
