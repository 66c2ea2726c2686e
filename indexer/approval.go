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

// ProjectApprovals fetches all Approval logs since the cursor, persists
// them as durable event records and upserts the latest amount per
// (owner, spender) pair. Approvals replace, they do not accumulate.
func (ix *TokenIndexer) ProjectApprovals(ctx context.Context) error {
	logger.Info("Updating Approval events...")

	fromBlock, generation, err := ix.approvalCursor(ctx)
	if err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}

	head, err := ix.currentHead(ctx)
	if err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}
	if fromBlock > head {
		logger.Debug("Approval events up to date, head %d", head)
		return nil
	}

	logs, err := ix.fetchLogs(ctx, abi.ApprovalTopic, fromBlock, head)
	if err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}
	logger.Info("Fetched %d Approval events from block %d to %d", len(logs), fromBlock, head)

	args := make([]abi.ApprovalArgs, len(logs))
	for i := range logs {
		args[i], err = abi.ParseApproval(&logs[i])
		if err != nil {
			return errors.Wrap(err, "ProjectApprovals")
		}
	}

	timestamps, err := ix.resolveTimestamps(ctx, logs)
	if err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}

	events := make([]*database.ApprovalEvent, len(logs))
	for i := range logs {
		events[i] = &database.ApprovalEvent{
			Owner:          database.AddressOf(args[i].Owner),
			Spender:        database.AddressOf(args[i].Spender),
			Amount:         database.NewBigInt(args[i].Amount),
			BlockNumber:    logs[i].BlockNumber,
			BlockTimestamp: timestamps[logs[i].BlockNumber],
		}
	}

	err = ix.persistInBatches(ctx, len(events), func(start, end int) error {
		return database.CreateApprovalEvents(ix.db, events[start:end])
	})
	if err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}
	logger.Info("Saved %d Approval events", len(events))

	if err := ix.applyAllowances(ctx, args); err != nil {
		return errors.Wrap(err, "ProjectApprovals")
	}

	ix.setApprovalCursor(generation, head+1)

	return nil
}

type allowancePair struct {
	owner   database.Address
	spender database.Address
}

func (ix *TokenIndexer) applyAllowances(ctx context.Context, args []abi.ApprovalArgs) error {
	logger.Info("Updating allowances...")

	// Later logs overwrite earlier ones, only the latest amount per pair
	// survives the batch.
	latest := make(map[allowancePair]*big.Int)
	for i := range args {
		pair := allowancePair{
			owner:   database.AddressOf(args[i].Owner),
			spender: database.AddressOf(args[i].Spender),
		}
		latest[pair] = args[i].Amount
	}

	g, _ := errgroup.WithContext(ctx)
	for pair, amount := range latest {
		g.Go(func() error {
			return database.SetAllowance(ix.db, pair.owner, pair.spender, amount)
		})
	}
	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "SetAllowance")
	}

	logger.Info("Updated %d allowances", len(latest))

	return nil
}
