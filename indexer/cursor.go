package indexer

import (
	"context"

	"erc20-token-indexer/boff"
	"erc20-token-indexer/database"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// The fetch cursor is derived, not separately persisted: one past the
// highest block number among stored events of that type, or the block of
// the genesis transaction when no events exist. After a successful pass
// the in-memory cursor always advances to scannedTo+1, so empty ranges are
// not re-scanned within the process lifetime.
//
// Every cursor read captures the current generation and every cursor write
// presents it back. A refresh trigger bumps the generation, so a pass that
// was already in flight when the trigger arrived cannot store its stale
// cursor over the cleared one.

func (ix *TokenIndexer) transferCursor(ctx context.Context) (uint64, uint64, error) {
	ix.mu.Lock()
	cached := ix.nextTransferBlock
	generation := ix.generation
	ix.mu.Unlock()

	if cached != nil {
		return *cached, generation, nil
	}

	block, err := ix.deriveCursor(ctx, database.MaxTransferBlock)

	return block, generation, err
}

func (ix *TokenIndexer) approvalCursor(ctx context.Context) (uint64, uint64, error) {
	ix.mu.Lock()
	cached := ix.nextApprovalBlock
	generation := ix.generation
	ix.mu.Unlock()

	if cached != nil {
		return *cached, generation, nil
	}

	block, err := ix.deriveCursor(ctx, database.MaxApprovalBlock)

	return block, generation, err
}

func (ix *TokenIndexer) deriveCursor(
	ctx context.Context, maxBlock func(*gorm.DB) (uint64, bool, error),
) (uint64, error) {
	block, found, err := maxBlock(ix.db)
	if err != nil {
		return 0, errors.Wrap(err, "deriveCursor")
	}
	if found {
		return block + 1, nil
	}

	genesisBlock, err := boff.RetryWithMaxElapsed(
		ctx,
		func() (uint64, error) {
			return ix.client.TransactionBlockNumber(ctx, ix.genesisTxHash)
		},
		"TransactionBlockNumber",
	)
	if err != nil {
		return 0, errors.Wrap(err, "deriveCursor: genesis transaction")
	}

	return genesisBlock, nil
}

func (ix *TokenIndexer) setTransferCursor(generation, next uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if generation != ix.generation {
		return
	}
	ix.nextTransferBlock = &next
}

func (ix *TokenIndexer) setApprovalCursor(generation, next uint64) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if generation != ix.generation {
		return
	}
	ix.nextApprovalBlock = &next
}
