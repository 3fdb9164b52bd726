package rescache

import (
	"context"
	"fmt"
	"time"
)

const DefaultSweepBatchSize = 25

// Sweep deletes persistent-tier entries older than the configured
// TTL, in bounded-size batches. It is idempotent and safe to run
// concurrently with reads and writes: an entry deleted between scan
// and delete is simply a no-op for the delete.
func (c *Cache) Sweep(ctx context.Context, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	cutoff := time.Now().Add(-c.cfg.PersistTTL)

	deleted := 0
	for {
		expired, err := c.persist.ListExpired(ctx, cutoff, batchSize)
		if err != nil {
			return deleted, fmt.Errorf("failed to list expired cache entries: %w", err)
		}
		if len(expired) == 0 {
			break
		}
		if err := c.persist.DeleteBatch(ctx, expired); err != nil {
			return deleted, fmt.Errorf("failed to delete expired cache entries: %w", err)
		}
		deleted += len(expired)
		c.logger.Info("swept expired cache entries",
			"batch", len(expired), "total", deleted)
		if len(expired) < batchSize {
			break
		}
	}
	return deleted, nil
}
