// Package testing provides a scripted in-memory chain source, standing in
// for a JSON-RPC node in indexer and API tests.
package testing

import (
	"bytes"
	"context"
	"math/big"
	"sync"

	tokenabi "erc20-token-indexer/indexer/abi"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// LogRange records the block span of one FilterLogs call.
type LogRange struct {
	From uint64
	To   uint64
}

type MockChain struct {
	mu sync.Mutex

	head       uint64
	timestamps map[uint64]uint64
	logs       []types.Log
	txBlocks   map[common.Hash]uint64

	TokenName     string
	TokenSymbol   string
	TokenDecimals uint8
	TokenOwner    common.Address

	// FilterLogsCalls records every issued range query, in issue order.
	FilterLogsCalls []LogRange

	// FilterLogsHook, when set, runs at the start of every FilterLogs
	// call, letting tests act while a fetch is in flight.
	FilterLogsHook func()

	failFilterLogs int
}

func NewMockChain(head uint64) *MockChain {
	return &MockChain{
		head:          head,
		timestamps:    make(map[uint64]uint64),
		txBlocks:      make(map[common.Hash]uint64),
		TokenName:     "Mock Token",
		TokenSymbol:   "MOCK",
		TokenDecimals: 18,
	}
}

func (m *MockChain) SetHead(head uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.head = head
}

func (m *MockChain) SetBlockTimestamp(number, timestamp uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timestamps[number] = timestamp
}

func (m *MockChain) SetTransactionBlock(txHash common.Hash, number uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txBlocks[txHash] = number
}

// FailNextFilterLogs makes the next n FilterLogs calls return an error,
// for exercising the cooldown-and-retry path.
func (m *MockChain) FailNextFilterLogs(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failFilterLogs = n
}

func (m *MockChain) AddTransferLog(contract common.Address, block uint64, from, to common.Address, amount *big.Int) {
	m.addEventLog(contract, block, tokenabi.TransferTopic, from, to, amount)
}

func (m *MockChain) AddApprovalLog(contract common.Address, block uint64, owner, spender common.Address, amount *big.Int) {
	m.addEventLog(contract, block, tokenabi.ApprovalTopic, owner, spender, amount)
}

// AddRawLog injects an arbitrary log, e.g. a malformed one.
func (m *MockChain) AddRawLog(log types.Log) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
}

func (m *MockChain) addEventLog(contract common.Address, block uint64, topic0 common.Hash, first, second common.Address, amount *big.Int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = append(m.logs, types.Log{
		Address: contract,
		Topics: []common.Hash{
			topic0,
			common.BytesToHash(common.LeftPadBytes(first.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(second.Bytes(), 32)),
		},
		Data:        common.BigToHash(amount).Bytes(),
		BlockNumber: block,
	})
}

// Source implementation.

func (m *MockChain) FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error) {
	if m.FilterLogsHook != nil {
		m.FilterLogsHook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failFilterLogs > 0 {
		m.failFilterLogs--
		return nil, errors.New("mock chain: injected FilterLogs failure")
	}

	from := q.FromBlock.Uint64()
	to := q.ToBlock.Uint64()
	m.FilterLogsCalls = append(m.FilterLogsCalls, LogRange{From: from, To: to})

	var matched []types.Log
	for _, log := range m.logs {
		if log.BlockNumber < from || log.BlockNumber > to {
			continue
		}
		if len(q.Addresses) > 0 && q.Addresses[0] != log.Address {
			continue
		}
		if len(q.Topics) > 0 && len(q.Topics[0]) > 0 && len(log.Topics) > 0 && q.Topics[0][0] != log.Topics[0] {
			continue
		}
		matched = append(matched, log)
	}

	return matched, nil
}

func (m *MockChain) BlockTimestamp(ctx context.Context, number uint64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if timestamp, ok := m.timestamps[number]; ok {
		return timestamp, nil
	}

	// synthetic but deterministic
	return 1_000_000 + number, nil
}

func (m *MockChain) LatestBlockNumber(ctx context.Context) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.head, nil
}

func (m *MockChain) TransactionBlockNumber(ctx context.Context, txHash common.Hash) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if number, ok := m.txBlocks[txHash]; ok {
		return number, nil
	}

	return 0, errors.Errorf("mock chain: unknown transaction %s", txHash)
}

func (m *MockChain) CallContract(ctx context.Context, contract common.Address, data []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for name, method := range tokenabi.TokenABI.Methods {
		if !bytes.Equal(data, method.ID) {
			continue
		}

		switch name {
		case tokenabi.MethodName:
			return method.Outputs.Pack(m.TokenName)
		case tokenabi.MethodSymbol:
			return method.Outputs.Pack(m.TokenSymbol)
		case tokenabi.MethodDecimals:
			return method.Outputs.Pack(m.TokenDecimals)
		case tokenabi.MethodOwner:
			return method.Outputs.Pack(m.TokenOwner)
		}
	}

	return nil, errors.New("mock chain: unsupported call")
}
