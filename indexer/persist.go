package indexer

import (
	"context"

	"erc20-token-indexer/logger"
)

// Event records are written in fixed-size sub-batches so a transient
// store failure resumes from the first un-persisted record instead of
// re-writing records that already succeeded.
const persistBatchSize = 100

func (ix *TokenIndexer) persistInBatches(
	ctx context.Context, total int, create func(start, end int) error,
) error {
	start := 0
	for start < total {
		end := min(start+persistBatchSize, total)

		if err := create(start, end); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("Saving events failed, waiting %v before resuming: %s", ix.errorCooldown, err)
			if err := sleepCtx(ctx, ix.errorCooldown); err != nil {
				return err
			}
			continue
		}

		start = end
	}

	return nil
}
