// This file implements the batched writer: rows are cut into batches and
// handed to a backend's bulk-insert function (CopyFn) one batch at a time.
//
// Logging: on every successful flush, a concise progress line is emitted with
// running totals and rows/sec since the previous flush.
package storage

import (
	"context"
	"fmt"
	"log"
	"time"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// WriteBatches writes rows in batches of batchSize through copyFn and
// returns the total reported by copyFn and the first error. A non-positive
// batchSize writes everything in one batch. onBatch, when set, is called
// after each successful batch with the rows it wrote.
func WriteBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
	onBatch func(n int64),
) (int64, error) {
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if batchSize <= 0 {
		batchSize = len(rows)
	}

	var (
		total     int64
		batches   int
		start     = time.Now()
		lastFlush = start
	)
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			log.Printf("loader: copy failed batch=%d after=%d total=%d err=%v", batches+1, n, total, err)
			return total, fmt.Errorf("batch %d: %w", batches+1, err)
		}

		batches++
		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.Printf("loader: batch=%d rps=%.0f inserted=%d total_inserted=%d elapsed=%s",
			batches, rps, n, total, now.Sub(start).Truncate(time.Millisecond))
		lastFlush = now

		if onBatch != nil {
			onBatch(n)
		}
	}
	return total, nil
}
