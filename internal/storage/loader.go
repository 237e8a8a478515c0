package storage

import (
	"context"
	"fmt"
	"iter"
	"time"

	"dplace2cldf/internal/logging"
)

// CopyFn inserts rows aligned to columns and returns how many were inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches drains rows into batches of batchSize and calls copyFn for each
// non-empty batch. It returns the number of rows copyFn reported and the first
// error from rows, copyFn or ctx.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows iter.Seq2[[]any, error],
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}

	var (
		total   int64
		batches int
		batch   = make([][]any, 0, batchSize)
		start   = time.Now()
		log     = logging.L()
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := copyFn(ctx, columns, batch)
		total += n
		batch = make([][]any, 0, batchSize)
		if err != nil {
			log.Error("loader: copy failed", "inserted", n, "total", total, "err", err)
			return err
		}
		batches++
		log.Debug("loader: batch flushed",
			"batch", batches,
			"inserted", n,
			"total", total,
			"elapsed", time.Since(start).Truncate(time.Millisecond),
		)
		return nil
	}

	for row, err := range rows {
		if err != nil {
			return total, err
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
		batch = append(batch, row)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
