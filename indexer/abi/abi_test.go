package abi

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestEventTopics(t *testing.T) {
	// canonical ERC20 signature hashes
	require.Equal(t,
		common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"),
		TransferTopic,
	)
	require.Equal(t,
		common.HexToHash("0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925"),
		ApprovalTopic,
	)
}

func transferLog(from, to common.Address, amount *big.Int) types.Log {
	return types.Log{
		Topics: []common.Hash{
			TransferTopic,
			common.BytesToHash(common.LeftPadBytes(from.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(to.Bytes(), 32)),
		},
		Data: common.BigToHash(amount).Bytes(),
	}
}

func TestParseTransfer(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")
	amount := new(big.Int).SetUint64(123_456_789)

	log := transferLog(from, to, amount)

	args, err := ParseTransfer(&log)
	require.NoError(t, err)
	require.Equal(t, from, args.From)
	require.Equal(t, to, args.To)
	require.Equal(t, amount, args.Amount)
}

func TestParseApproval(t *testing.T) {
	owner := common.HexToAddress("0x3333333333333333333333333333333333333333")
	spender := common.HexToAddress("0x4444444444444444444444444444444444444444")
	amount, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	log := types.Log{
		Topics: []common.Hash{
			ApprovalTopic,
			common.BytesToHash(common.LeftPadBytes(owner.Bytes(), 32)),
			common.BytesToHash(common.LeftPadBytes(spender.Bytes(), 32)),
		},
		Data: common.BigToHash(amount).Bytes(),
	}

	args, err := ParseApproval(&log)
	require.NoError(t, err)
	require.Equal(t, owner, args.Owner)
	require.Equal(t, spender, args.Spender)
	require.Equal(t, amount, args.Amount)
}

func TestParseTransferRejectsMalformed(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	to := common.HexToAddress("0x2222222222222222222222222222222222222222")

	t.Run("missing indexed topic", func(t *testing.T) {
		log := transferLog(from, to, big.NewInt(1))
		log.Topics = log.Topics[:2]

		_, err := ParseTransfer(&log)
		require.Error(t, err)
	})

	t.Run("wrong event topic", func(t *testing.T) {
		log := transferLog(from, to, big.NewInt(1))
		log.Topics[0] = ApprovalTopic

		_, err := ParseTransfer(&log)
		require.Error(t, err)
	})

	t.Run("truncated data", func(t *testing.T) {
		log := transferLog(from, to, big.NewInt(1))
		log.Data = log.Data[:16]

		_, err := ParseTransfer(&log)
		require.Error(t, err)
	})
}

func TestPackCall(t *testing.T) {
	data, err := PackCall(MethodName)
	require.NoError(t, err)
	require.Equal(t, common.FromHex("0x06fdde03"), data)

	data, err = PackCall(MethodDecimals)
	require.NoError(t, err)
	require.Equal(t, common.FromHex("0x313ce567"), data)
}
