package database

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	t.Run("with prefix", func(t *testing.T) {
		a, err := ParseAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B")
		require.NoError(t, err)
		require.Equal(t, Address("ab5801a7d398351b8be11c439e05c5b3259aec9b"), a)
	})

	t.Run("without prefix", func(t *testing.T) {
		a, err := ParseAddress("ab5801a7d398351b8be11c439e05c5b3259aec9b")
		require.NoError(t, err)
		require.Equal(t, Address("ab5801a7d398351b8be11c439e05c5b3259aec9b"), a)
	})

	t.Run("rejects invalid", func(t *testing.T) {
		for _, s := range []string{
			"",
			"0x",
			"0xab5801",
			"ab5801a7d398351b8be11c439e05c5b3259aec9bff",
			"zz5801a7d398351b8be11c439e05c5b3259aec9b",
		} {
			_, err := ParseAddress(s)
			require.Error(t, err, "input %q", s)
		}
	})
}

func TestAddressOf(t *testing.T) {
	a := AddressOf(common.HexToAddress("0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"))
	require.Equal(t, Address("ab5801a7d398351b8be11c439e05c5b3259aec9b"), a)
	require.Equal(t, "0xab5801a7d398351b8be11c439e05c5b3259aec9b", a.Hex())
}

func TestBigIntJSON(t *testing.T) {
	amount, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	data, err := json.Marshal(NewBigInt(amount))
	require.NoError(t, err)
	require.Equal(t, `"115792089237316195423570985008687907853269984665640564039457584007913129639935"`, string(data))

	var decoded BigInt
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, 0, decoded.Int.Cmp(amount))
}

func TestBigIntZeroValue(t *testing.T) {
	data, err := json.Marshal(NewBigInt(nil))
	require.NoError(t, err)
	require.Equal(t, `"0"`, string(data))
}

func TestBigIntScanValue(t *testing.T) {
	amount := new(big.Int).SetUint64(987654321)

	v, err := NewBigInt(amount).Value()
	require.NoError(t, err)
	require.Equal(t, "987654321", v)

	var b BigInt
	require.NoError(t, b.Scan("987654321"))
	require.Equal(t, 0, b.Int.Cmp(amount))

	require.NoError(t, b.Scan([]byte("42")))
	require.Equal(t, int64(42), b.Int.Int64())

	require.Error(t, b.Scan(3.14))
	require.Error(t, b.Scan("not a number"))
}
