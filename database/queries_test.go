package database

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransferEventQueries(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	_, found, err := MaxTransferBlock(db)
	require.NoError(t, err)
	require.False(t, found)

	events := []*TransferEvent{
		{Sender: testOwner, Recipient: testSpender, Amount: NewBigInt(big.NewInt(10)), BlockNumber: 100, BlockTimestamp: 1000},
		{Sender: testOwner, Recipient: testSpender, Amount: NewBigInt(big.NewInt(20)), BlockNumber: 105, BlockTimestamp: 1050},
		{Sender: testSpender, Recipient: testOwner, Amount: NewBigInt(big.NewInt(30)), BlockNumber: 102, BlockTimestamp: 1020},
	}
	require.NoError(t, CreateTransferEvents(db, events))
	require.NoError(t, CreateTransferEvents(db, nil))

	listed, err := ListTransferEvents(db)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// newest block first
	require.Equal(t, uint64(105), listed[0].BlockNumber)
	require.Equal(t, uint64(102), listed[1].BlockNumber)
	require.Equal(t, uint64(100), listed[2].BlockNumber)

	block, found, err := MaxTransferBlock(db)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(105), block)
}

func TestApprovalEventQueries(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	events := []*ApprovalEvent{
		{Owner: testOwner, Spender: testSpender, Amount: NewBigInt(big.NewInt(500)), BlockNumber: 50, BlockTimestamp: 500},
		{Owner: testOwner, Spender: testSpender, Amount: NewBigInt(big.NewInt(200)), BlockNumber: 51, BlockTimestamp: 510},
	}
	require.NoError(t, CreateApprovalEvents(db, events))

	listed, err := ListApprovalEvents(db)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, uint64(51), listed[0].BlockNumber)

	block, found, err := MaxApprovalBlock(db)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(51), block)
}

func TestPurgeAll(t *testing.T) {
	db, err := ConnectTestDB()
	require.NoError(t, err)

	require.NoError(t, CreateTransferEvents(db, []*TransferEvent{
		{Sender: testOwner, Recipient: testSpender, Amount: NewBigInt(big.NewInt(10)), BlockNumber: 100},
	}))
	require.NoError(t, AddToBalance(db, testSpender, big.NewInt(10)))
	require.NoError(t, SetAllowance(db, testOwner, testSpender, big.NewInt(5)))
	require.NoError(t, AddToTotalSupply(db, big.NewInt(10)))

	require.NoError(t, PurgeAll(db))

	listed, err := ListTransferEvents(db)
	require.NoError(t, err)
	require.Empty(t, listed)

	balance, err := GetBalance(db, testSpender)
	require.NoError(t, err)
	require.Nil(t, balance)

	allowance, err := GetAllowance(db, testOwner, testSpender)
	require.NoError(t, err)
	require.Nil(t, allowance)

	// contract singleton is recreated from scratch on next access
	contract, err := GetOrInitContract(db)
	require.NoError(t, err)
	require.Equal(t, int64(0), contract.TotalSupply.Int.Int64())

	_, found, err := MaxTransferBlock(db)
	require.NoError(t, err)
	require.False(t, found)
}
