// Package chain wraps a read-only Ethereum JSON-RPC endpoint. Every call is
// bounded by the configured per-call timeout; retry policy is left to the
// callers, which own the cooldown behavior.
package chain

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

type Client struct {
	eth     *ethclient.Client
	timeout time.Duration
}

func Dial(nodeURL string, timeout time.Duration) (*Client, error) {
	eth, err := ethclient.Dial(nodeURL)
	if err != nil {
		return nil, errors.Wrap(err, "ethclient.Dial")
	}

	return &Client{eth: eth, timeout: timeout}, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

func (c *Client) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	logs, err := c.eth.FilterLogs(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "eth.FilterLogs")
	}

	return logs, nil
}

// BlockTimestamp returns the unix timestamp of the block with the given
// number, via a header request.
func (c *Client) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	header, err := c.eth.HeaderByNumber(ctx, new(big.Int).SetUint64(number))
	if err != nil {
		return 0, errors.Wrap(err, "eth.HeaderByNumber")
	}

	return header.Time, nil
}

func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	header, err := c.eth.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, "eth.HeaderByNumber latest")
	}

	return header.Number.Uint64(), nil
}

// TransactionBlockNumber resolves the block containing the given
// transaction. Used once per event type to seed the fetch cursor from the
// contract deployment transaction.
func (c *Client) TransactionBlockNumber(ctx context.Context, txHash common.Hash) (uint64, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	receipt, err := c.eth.TransactionReceipt(ctx, txHash)
	if err != nil {
		return 0, errors.Wrap(err, "eth.TransactionReceipt")
	}

	return receipt.BlockNumber.Uint64(), nil
}

// CallContract performs a read-only eth_call against the given contract
// with pre-packed call data.
func (c *Client) CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	out, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &contract, Data: data}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "eth.CallContract")
	}

	return out, nil
}
