package database

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testOwner   Address = "1111111111111111111111111111111111111111"
	testSpender Address = "2222222222222222222222222222222222222222"
)

func TestAddToBalance(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	balance, err := GetBalance(db, testOwner)
	require.NoError(t, err)
	require.Nil(t, balance)

	// first delta creates the row
	require.NoError(t, AddToBalance(db, testOwner, big.NewInt(1000)))
	balance, err = GetBalance(db, testOwner)
	require.NoError(t, err)
	require.NotNil(t, balance)
	require.Equal(t, int64(1000), balance.Amount.Int.Int64())

	// subsequent deltas accumulate, negative ones included
	require.NoError(t, AddToBalance(db, testOwner, big.NewInt(-300)))
	balance, err = GetBalance(db, testOwner)
	require.NoError(t, err)
	require.Equal(t, int64(700), balance.Amount.Int.Int64())
}

func TestSetAllowanceReplaces(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	allowance, err := GetAllowance(db, testOwner, testSpender)
	require.NoError(t, err)
	require.Nil(t, allowance)

	require.NoError(t, SetAllowance(db, testOwner, testSpender, big.NewInt(500)))
	require.NoError(t, SetAllowance(db, testOwner, testSpender, big.NewInt(200)))

	allowance, err = GetAllowance(db, testOwner, testSpender)
	require.NoError(t, err)
	require.NotNil(t, allowance)
	require.Equal(t, int64(200), allowance.Amount.Int.Int64())

	// the reverse direction is a distinct pair
	allowance, err = GetAllowance(db, testSpender, testOwner)
	require.NoError(t, err)
	require.Nil(t, allowance)
}

func TestContractSingleton(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	contract, err := GetOrInitContract(db)
	require.NoError(t, err)
	require.Equal(t, ZeroAddress, contract.Owner)
	require.Equal(t, int64(0), contract.TotalSupply.Int.Int64())

	again, err := GetOrInitContract(db)
	require.NoError(t, err)
	require.Equal(t, contract.ID, again.ID)

	require.NoError(t, SetContractFields(db, "Test Token", "TST", testOwner, 18))
	require.NoError(t, AddToTotalSupply(db, big.NewInt(1_000_000)))
	require.NoError(t, AddToTotalSupply(db, big.NewInt(-250_000)))

	contract, err = GetOrInitContract(db)
	require.NoError(t, err)
	require.Equal(t, "Test Token", contract.Name)
	require.Equal(t, "TST", contract.Symbol)
	require.Equal(t, testOwner, contract.Owner)
	require.Equal(t, uint8(18), contract.Decimals)
	require.Equal(t, int64(750_000), contract.TotalSupply.Int.Int64())
}

func TestSetContractFieldsKeepsSupply(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	require.NoError(t, AddToTotalSupply(db, big.NewInt(42)))
	require.NoError(t, SetContractFields(db, "Test Token", "TST", testOwner, 6))

	contract, err := GetOrInitContract(db)
	require.NoError(t, err)
	require.Equal(t, int64(42), contract.TotalSupply.Int.Int64())
}
