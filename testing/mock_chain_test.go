package testing

import (
	"context"
	"math/big"
	"testing"

	tokenabi "erc20-token-indexer/indexer/abi"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

var (
	contract = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	sender   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	receiver = common.HexToAddress("0x2222222222222222222222222222222222222222")
)

func TestFilterLogsByRangeAndTopic(t *testing.T) {
	ctx := context.Background()

	mock := NewMockChain(200)
	mock.AddTransferLog(contract, 110, sender, receiver, big.NewInt(100))
	mock.AddTransferLog(contract, 150, sender, receiver, big.NewInt(200))
	mock.AddApprovalLog(contract, 110, sender, receiver, big.NewInt(300))

	logs, err := mock.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(100),
		ToBlock:   big.NewInt(120),
		Addresses: []common.Address{contract},
		Topics:    [][]common.Hash{{tokenabi.TransferTopic}},
	})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, uint64(110), logs[0].BlockNumber)

	args, err := tokenabi.ParseTransfer(&logs[0])
	require.NoError(t, err)
	require.Equal(t, sender, args.From)
	require.Equal(t, receiver, args.To)
	require.Equal(t, int64(100), args.Amount.Int64())

	require.Equal(t, []LogRange{{From: 100, To: 120}}, mock.FilterLogsCalls)
}

func TestCallContractMetadata(t *testing.T) {
	ctx := context.Background()

	mock := NewMockChain(200)
	mock.TokenSymbol = "GLD"

	data, err := tokenabi.PackCall(tokenabi.MethodSymbol)
	require.NoError(t, err)

	out, err := mock.CallContract(ctx, contract, data)
	require.NoError(t, err)

	symbol, err := tokenabi.UnpackString(tokenabi.MethodSymbol, out)
	require.NoError(t, err)
	require.Equal(t, "GLD", symbol)
}
