package database

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Address is a 40-character lowercase hex string without the 0x prefix.
// Every value stored or compared goes through ParseAddress first.
type Address string

const ZeroAddress Address = "0000000000000000000000000000000000000000"

var addressPattern = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)

func ParseAddress(s string) (Address, error) {
	if !addressPattern.MatchString(s) {
		return "", errors.Errorf("%q is not a valid address", s)
	}

	s = strings.TrimPrefix(s, "0x")

	return Address(strings.ToLower(s)), nil
}

// AddressOf converts a decoded log argument to the stored form. The result
// is valid by construction, no pattern check needed.
func AddressOf(a common.Address) Address {
	return Address(hex.EncodeToString(a[:]))
}

func (a Address) Hex() string {
	return "0x" + string(a)
}

// BigInt stores an arbitrary-precision unsigned integer as a decimal string
// column, wide enough for any uint256 value.
type BigInt struct {
	big.Int
}

func NewBigInt(x *big.Int) BigInt {
	var b BigInt
	if x != nil {
		b.Int.Set(x)
	}

	return b
}

func (b BigInt) BigInt() *big.Int {
	return new(big.Int).Set(&b.Int)
}

func (BigInt) GormDataType() string {
	return "varchar(78)"
}

func (b BigInt) Value() (driver.Value, error) {
	return b.Int.String(), nil
}

func (b *BigInt) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return errors.Errorf("cannot scan %T into BigInt", value)
	}

	if _, ok := b.Int.SetString(s, 10); !ok {
		return errors.Errorf("%q is not a valid big integer", s)
	}

	return nil
}

// Amounts are serialized as decimal strings, uint256 does not fit in a
// JSON number.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", b.Int.String())), nil
}

func (b *BigInt) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if _, ok := b.Int.SetString(s, 10); !ok {
		return errors.Errorf("%q is not a valid big integer", s)
	}

	return nil
}
