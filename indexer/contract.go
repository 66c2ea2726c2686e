package indexer

import (
	"context"

	"erc20-token-indexer/database"
	"erc20-token-indexer/indexer/abi"
	"erc20-token-indexer/logger"

	"github.com/pkg/errors"
)

// RefreshContract reads the token's identity fields from current on-chain
// state and overwrites them idempotently. TotalSupply is never read from
// the chain; it only changes through mint/burn deltas in the Transfer
// projection.
func (ix *TokenIndexer) RefreshContract(ctx context.Context) error {
	logger.Info("Updating contract data...")

	if _, err := database.GetOrInitContract(ix.db); err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	name, err := ix.callString(ctx, abi.MethodName)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	symbol, err := ix.callString(ctx, abi.MethodSymbol)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	decimalsOut, err := ix.call(ctx, abi.MethodDecimals)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}
	decimals, err := abi.UnpackUint8(abi.MethodDecimals, decimalsOut)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	ownerOut, err := ix.call(ctx, abi.MethodOwner)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}
	owner, err := abi.UnpackAddress(abi.MethodOwner, ownerOut)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	err = database.SetContractFields(ix.db, name, symbol, database.AddressOf(owner), decimals)
	if err != nil {
		return errors.Wrap(err, "RefreshContract")
	}

	logger.Info("Contract data updated: %s (%s)", name, symbol)

	return nil
}

func (ix *TokenIndexer) call(ctx context.Context, method string) ([]byte, error) {
	data, err := abi.PackCall(method)
	if err != nil {
		return nil, err
	}

	return ix.client.CallContract(ctx, ix.contractAddress, data)
}

func (ix *TokenIndexer) callString(ctx context.Context, method string) (string, error) {
	out, err := ix.call(ctx, method)
	if err != nil {
		return "", err
	}

	return abi.UnpackString(method, out)
}
