// Package abi holds the ERC20 contract interface: event topics, log
// decoding and call packing for the token's read-only methods.
package abi

import (
	"math/big"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

const (
	EventTransfer string = "Transfer"
	EventApproval string = "Approval"

	MethodName     string = "name"
	MethodSymbol   string = "symbol"
	MethodDecimals string = "decimals"
	MethodOwner    string = "owner"
)

var (
	TokenABI      ethabi.ABI
	TransferTopic common.Hash
	ApprovalTopic common.Hash
)

func init() {
	var err error
	TokenABI, err = ethabi.JSON(strings.NewReader(erc20ABIJSON))
	if err != nil {
		panic(errors.Wrap(err, "parsing embedded ERC20 ABI"))
	}

	TransferTopic = TokenABI.Events[EventTransfer].ID
	ApprovalTopic = TokenABI.Events[EventApproval].ID
}

// TransferArgs are the decoded arguments of one Transfer log.
type TransferArgs struct {
	From   common.Address
	To     common.Address
	Amount *big.Int
}

// ApprovalArgs are the decoded arguments of one Approval log.
type ApprovalArgs struct {
	Owner   common.Address
	Spender common.Address
	Amount  *big.Int
}

// ParseTransfer decodes a raw Transfer log. Malformed logs (wrong topic
// arity, missing amount) are a validation failure and abort the whole
// projection step upstream.
func ParseTransfer(log *types.Log) (TransferArgs, error) {
	amount, err := parseEventAmount(log, EventTransfer, TransferTopic)
	if err != nil {
		return TransferArgs{}, err
	}

	return TransferArgs{
		From:   common.BytesToAddress(log.Topics[1].Bytes()),
		To:     common.BytesToAddress(log.Topics[2].Bytes()),
		Amount: amount,
	}, nil
}

// ParseApproval decodes a raw Approval log.
func ParseApproval(log *types.Log) (ApprovalArgs, error) {
	amount, err := parseEventAmount(log, EventApproval, ApprovalTopic)
	if err != nil {
		return ApprovalArgs{}, err
	}

	return ApprovalArgs{
		Owner:   common.BytesToAddress(log.Topics[1].Bytes()),
		Spender: common.BytesToAddress(log.Topics[2].Bytes()),
		Amount:  amount,
	}, nil
}

func parseEventAmount(log *types.Log, event string, topic common.Hash) (*big.Int, error) {
	if len(log.Topics) != 3 {
		return nil, errors.Errorf("%s log has %d topics, expected 3", event, len(log.Topics))
	}
	if log.Topics[0] != topic {
		return nil, errors.Errorf("log topic %s does not match %s", log.Topics[0], event)
	}

	values, err := TokenABI.Unpack(event, log.Data)
	if err != nil {
		return nil, errors.Wrapf(err, "unpacking %s log data", event)
	}
	if len(values) != 1 {
		return nil, errors.Errorf("%s log data has %d values, expected 1", event, len(values))
	}

	amount, ok := values[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("%s log amount is not a big integer", event)
	}

	return amount, nil
}

// PackCall packs a zero-argument read method of the token contract.
func PackCall(method string) ([]byte, error) {
	data, err := TokenABI.Pack(method)
	if err != nil {
		return nil, errors.Wrapf(err, "packing %s call", method)
	}

	return data, nil
}

func UnpackString(method string, out []byte) (string, error) {
	values, err := TokenABI.Unpack(method, out)
	if err != nil {
		return "", errors.Wrapf(err, "unpacking %s result", method)
	}

	s, ok := values[0].(string)
	if !ok {
		return "", errors.Errorf("%s result is not a string", method)
	}

	return s, nil
}

func UnpackUint8(method string, out []byte) (uint8, error) {
	values, err := TokenABI.Unpack(method, out)
	if err != nil {
		return 0, errors.Wrapf(err, "unpacking %s result", method)
	}

	v, ok := values[0].(uint8)
	if !ok {
		return 0, errors.Errorf("%s result is not a uint8", method)
	}

	return v, nil
}

func UnpackAddress(method string, out []byte) (common.Address, error) {
	values, err := TokenABI.Unpack(method, out)
	if err != nil {
		return common.Address{}, errors.Wrapf(err, "unpacking %s result", method)
	}

	a, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, errors.Errorf("%s result is not an address", method)
	}

	return a, nil
}
