package indexer

import (
	"context"
	"sync"
	"time"

	"erc20-token-indexer/config"
	"erc20-token-indexer/database"
	"erc20-token-indexer/governor"
	"erc20-token-indexer/logger"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const errorCooldownDefault = 30 * time.Second

// Source is the read-only remote log source the indexer consumes. It is
// implemented by chain.Client and by the mock chain used in tests.
type Source interface {
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
	BlockTimestamp(ctx context.Context, number uint64) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	TransactionBlockNumber(ctx context.Context, txHash common.Hash) (uint64, error)
	CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error)
}

// TokenIndexer drives the reconciliation cycle: contract static-field
// refresh, then Transfer projection, then Approval projection, in that
// fixed order, on start and on every interval tick or external trigger.
type TokenIndexer struct {
	db       *gorm.DB
	client   Source
	params   config.IndexerConfig
	governor *governor.Governor

	contractAddress common.Address
	genesisTxHash   common.Hash

	errorCooldown time.Duration

	// Cursors live in memory only; on first use they are re-derived from
	// the stored events (or the genesis transaction), so restarts and
	// purges fall back to the durable state. The generation counter guards
	// cursor writes against a reset that lands while a pass is in flight.
	mu                sync.Mutex
	generation        uint64
	nextTransferBlock *uint64
	nextApprovalBlock *uint64

	refreshCh chan struct{}
}

func CreateTokenIndexer(cfg *config.Config, db *gorm.DB, client Source) (*TokenIndexer, error) {
	contractAddress, err := database.ParseAddress(cfg.Token.Address)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token contract address")
	}

	params := cfg.Indexer
	if params.MaxBlocks < 1 {
		params.MaxBlocks = 1
	}
	if params.UpdateIntervalMinutes < 1 {
		params.UpdateIntervalMinutes = config.UpdateIntervalMinutesDef
	}

	return &TokenIndexer{
		db:              db,
		client:          client,
		params:          params,
		governor:        governor.New(params.MaxQueriesPerSecond, params.MaxQueriesPerMinute),
		contractAddress: common.HexToAddress(contractAddress.Hex()),
		genesisTxHash:   common.HexToHash(cfg.Token.GenesisTxHash),
		errorCooldown:   errorCooldownDefault,
		refreshCh:       make(chan struct{}, 1),
	}, nil
}

// Run executes one reconciliation pass immediately, then re-enters a pass
// on every interval tick or refresh trigger until the context is canceled.
func (ix *TokenIndexer) Run(ctx context.Context) error {
	for {
		ix.RunCycle(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logger.Info("Next data update in %d minutes", ix.params.UpdateIntervalMinutes)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(ix.params.UpdateInterval()):
		case <-ix.refreshCh:
			logger.Info("Immediate data update requested")
		}
	}
}

// RunCycle performs one pass. A failing step is logged and does not block
// the remaining steps or the next scheduled cycle.
func (ix *TokenIndexer) RunCycle(ctx context.Context) {
	logger.Info("Updating data...")

	if err := ix.RefreshContract(ctx); err != nil {
		logger.Error("Contract update failed: %s", err)
	}
	if ctx.Err() != nil {
		return
	}

	if err := ix.ProjectTransfers(ctx); err != nil {
		logger.Error("Transfer update failed: %s", err)
	}
	if ctx.Err() != nil {
		return
	}

	if err := ix.ProjectApprovals(ctx); err != nil {
		logger.Error("Approval update failed: %s", err)
	}

	logger.Info("Data updated")
}

// TriggerRefresh requests an immediate reconciliation run and discards the
// in-memory cursors so they are re-derived from the store. It never
// interrupts an in-flight pass; the trigger takes effect once the current
// pass (if any) completes. Bumping the generation invalidates the in-flight
// pass's closing cursor write, otherwise it would land after the clear and
// mask the reset.
func (ix *TokenIndexer) TriggerRefresh() {
	ix.mu.Lock()
	ix.generation++
	ix.nextTransferBlock = nil
	ix.nextApprovalBlock = nil
	ix.mu.Unlock()

	select {
	case ix.refreshCh <- struct{}{}:
	default:
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
