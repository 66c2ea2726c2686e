package indexer

import (
	"context"
	"math/big"

	"erc20-token-indexer/database"
	"erc20-token-indexer/indexer/abi"
	"erc20-token-indexer/logger"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ProjectTransfers fetches all Transfer logs since the cursor, persists
// them as durable event records and folds them into balance deltas and
// mint/burn supply changes.
func (ix *TokenIndexer) ProjectTransfers(ctx context.Context) error {
	logger.Info("Updating Transfer events...")

	fromBlock, generation, err := ix.transferCursor(ctx)
	if err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}

	head, err := ix.currentHead(ctx)
	if err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}
	if fromBlock > head {
		logger.Debug("Transfer events up to date, head %d", head)
		return nil
	}

	logs, err := ix.fetchLogs(ctx, abi.TransferTopic, fromBlock, head)
	if err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}
	logger.Info("Fetched %d Transfer events from block %d to %d", len(logs), fromBlock, head)

	// Decode everything up front: a malformed log is a validation failure
	// and aborts the whole step before any store mutation.
	args := make([]abi.TransferArgs, len(logs))
	for i := range logs {
		args[i], err = abi.ParseTransfer(&logs[i])
		if err != nil {
			return errors.Wrap(err, "ProjectTransfers")
		}
	}

	timestamps, err := ix.resolveTimestamps(ctx, logs)
	if err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}

	events := make([]*database.TransferEvent, len(logs))
	for i := range logs {
		events[i] = &database.TransferEvent{
			Sender:         database.AddressOf(args[i].From),
			Recipient:      database.AddressOf(args[i].To),
			Amount:         database.NewBigInt(args[i].Amount),
			BlockNumber:    logs[i].BlockNumber,
			BlockTimestamp: timestamps[logs[i].BlockNumber],
		}
	}

	err = ix.persistInBatches(ctx, len(events), func(start, end int) error {
		return database.CreateTransferEvents(ix.db, events[start:end])
	})
	if err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}
	logger.Info("Saved %d Transfer events", len(events))

	if err := ix.applyTransferDeltas(ctx, args); err != nil {
		return errors.Wrap(err, "ProjectTransfers")
	}

	ix.setTransferCursor(generation, head+1)

	return nil
}

// applyTransferDeltas folds a batch of decoded Transfer arguments into one
// signed delta per touched address and applies them to the Balance store.
// The zero address marks mint (sender) and burn (recipient); its negated
// delta goes to the contract's total supply instead of a balance row.
func (ix *TokenIndexer) applyTransferDeltas(ctx context.Context, args []abi.TransferArgs) error {
	logger.Info("Updating balances and total supply...")

	deltas := make(map[database.Address]*big.Int)
	deltaFor := func(owner database.Address) *big.Int {
		if delta, ok := deltas[owner]; ok {
			return delta
		}
		delta := new(big.Int)
		deltas[owner] = delta
		return delta
	}

	for i := range args {
		sender := database.AddressOf(args[i].From)
		recipient := database.AddressOf(args[i].To)
		deltaFor(sender).Sub(deltaFor(sender), args[i].Amount)
		deltaFor(recipient).Add(deltaFor(recipient), args[i].Amount)
	}

	g, _ := errgroup.WithContext(ctx)
	for owner, delta := range deltas {
		if owner == database.ZeroAddress {
			continue
		}
		g.Go(func() error {
			return database.AddToBalance(ix.db, owner, delta)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "AddToBalance")
	}

	if zeroDelta, ok := deltas[database.ZeroAddress]; ok {
		supplyDelta := new(big.Int).Neg(zeroDelta)
		if err := database.AddToTotalSupply(ix.db, supplyDelta); err != nil {
			return errors.Wrap(err, "AddToTotalSupply")
		}
	}

	logger.Info("Updated %d balances", len(deltas))

	return nil
}
