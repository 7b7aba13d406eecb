// Package builtin contains the reusable transformers of the cleaning chain.
//
// DeDup removes exact duplicates. Every record is numbered within the group
// of records sharing its key (ROW_NUMBER() OVER (PARTITION BY keys) in input
// order, starting at 1) and only the rank-1 record of each group survives.
//
// Keys: a record's key is the concatenation of the configured fields as
// strings (nil -> "\x00", separator "\x1f"). Keys are bucketed by their xxh3
// hash; the full key is compared inside a bucket so hash collisions never
// merge distinct records.
package builtin

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"layoffs/pkg/records"
)

// DeDup implements keep-first de-duplication over a full-field identity key.
type DeDup struct {
	// Keys are the field names forming the identity key. Empty Keys disables
	// de-duplication.
	Keys []string

	// RankField, when set, receives the 1-based row number of each record
	// inside its key group before duplicates are removed.
	RankField string
}

// Apply numbers every record and returns the rank-1 records in input order.
// Records are never modified other than RankField.
func (d DeDup) Apply(in []records.Record) []records.Record {
	if len(in) == 0 || len(d.Keys) == 0 {
		return in
	}

	ranks := RowNumbers(in, d.Keys)
	out := make([]records.Record, 0, len(in))
	for i, r := range in {
		if d.RankField != "" {
			r[d.RankField] = ranks[i]
		}
		if ranks[i] == 1 {
			out = append(out, r)
		}
	}
	return out
}

// RowNumbers returns, for each record of in, its 1-based position among the
// records sharing the same key, counted in input order.
func RowNumbers(in []records.Record, keys []string) []int {
	type group struct {
		key   string
		count int
	}
	buckets := make(map[uint64][]*group, len(in))
	ranks := make([]int, len(in))

	for i, r := range in {
		key := identityKey(r, keys)
		h := xxh3.HashString(key)

		var g *group
		for _, cand := range buckets[h] {
			if cand.key == key {
				g = cand
				break
			}
		}
		if g == nil {
			g = &group{key: key}
			buckets[h] = append(buckets[h], g)
		}
		g.count++
		ranks[i] = g.count
	}
	return ranks
}

// identityKey encodes the key fields of r into a single comparable string.
func identityKey(r records.Record, keys []string) string {
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := r[k].(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		case time.Time:
			b.WriteString(t.Format(time.RFC3339Nano))
		default:
			b.WriteString(fmt.Sprint(t))
		}
	}
	return b.String()
}
