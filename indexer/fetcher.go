package indexer

import (
	"context"
	"math/big"

	"erc20-token-indexer/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// fetchLogs retrieves all logs with the given topic emitted by the token
// contract between fromBlock and toBlock (both inclusive). The range is
// partitioned into MaxBlocks-sized windows; the windows of one governed
// batch are requested concurrently and joined before the next batch
// starts. Any error in a batch triggers a fixed cooldown and a retry of
// the same unadvanced windows; retries are unbounded.
func (ix *TokenIndexer) fetchLogs(
	ctx context.Context, topic common.Hash, fromBlock, toBlock uint64,
) ([]types.Log, error) {
	span := uint64(ix.params.MaxBlocks)
	var accumulated []types.Log

	windowStart := fromBlock
	for windowStart <= toBlock {
		remainingWindows := int((toBlock-windowStart)/span) + 1
		granted, err := ix.governor.Reserve(ctx, remainingWindows)
		if err != nil {
			return nil, err
		}

		results := make([][]types.Log, granted)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < granted; i++ {
			start := windowStart + uint64(i)*span
			end := min(start+span-1, toBlock)
			g.Go(func() error {
				logs, err := ix.client.FilterLogs(gctx, ethereum.FilterQuery{
					FromBlock: new(big.Int).SetUint64(start),
					ToBlock:   new(big.Int).SetUint64(end),
					Addresses: []common.Address{ix.contractAddress},
					Topics:    [][]common.Hash{{topic}},
				})
				if err != nil {
					return errors.Wrap(err, "client.FilterLogs")
				}
				results[i] = logs
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("Log fetch failed, waiting %v before resuming: %s", ix.errorCooldown, err)
			if err := sleepCtx(ctx, ix.errorCooldown); err != nil {
				return nil, err
			}
			continue
		}

		// flatten in window order, so logs are block-sorted within a batch
		for _, logs := range results {
			accumulated = append(accumulated, logs...)
		}

		scannedTo := min(windowStart+uint64(granted)*span-1, toBlock)
		logger.Debug("Fetched logs from block %d to %d", windowStart, scannedTo)
		windowStart += uint64(granted) * span
	}

	return accumulated, nil
}

// resolveTimestamps fetches the containing block timestamp for every log,
// one governed remote call per distinct block number. Failures within a
// batch are retried after the cooldown without re-fetching blocks already
// resolved.
func (ix *TokenIndexer) resolveTimestamps(
	ctx context.Context, logs []types.Log,
) (map[uint64]uint64, error) {
	var blocks []uint64
	seen := make(map[uint64]bool)
	for i := range logs {
		if n := logs[i].BlockNumber; !seen[n] {
			seen[n] = true
			blocks = append(blocks, n)
		}
	}

	timestamps := make(map[uint64]uint64, len(blocks))

	next := 0
	for next < len(blocks) {
		granted, err := ix.governor.Reserve(ctx, len(blocks)-next)
		if err != nil {
			return nil, err
		}

		results := make([]uint64, granted)
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < granted; i++ {
			number := blocks[next+i]
			g.Go(func() error {
				timestamp, err := ix.client.BlockTimestamp(gctx, number)
				if err != nil {
					return errors.Wrap(err, "client.BlockTimestamp")
				}
				results[i] = timestamp
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Error("Block timestamp fetch failed, waiting %v before resuming: %s", ix.errorCooldown, err)
			if err := sleepCtx(ctx, ix.errorCooldown); err != nil {
				return nil, err
			}
			continue
		}

		for i := 0; i < granted; i++ {
			timestamps[blocks[next+i]] = results[i]
		}
		next += granted
	}

	return timestamps, nil
}

// currentHead observes the chain head once per cycle; blocks appended
// during a long fetch are picked up on the next cycle.
func (ix *TokenIndexer) currentHead(ctx context.Context) (uint64, error) {
	head, err := ix.client.LatestBlockNumber(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "client.LatestBlockNumber")
	}

	return head, nil
}
