package database

import (
	"math/big"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetBalance returns the Balance row for owner, or nil if none exists.
func GetBalance(db *gorm.DB, owner Address) (*Balance, error) {
	var balance Balance
	err := db.Where(&Balance{Owner: owner}).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &balance, nil
}

// AddToBalance applies a signed delta to the owner's balance using exact
// big-integer arithmetic. A missing row is created with the delta as its
// initial amount. The read-modify-write is not atomic across rows; each
// row is its own unit of work.
func AddToBalance(db *gorm.DB, owner Address, delta *big.Int) error {
	var balance Balance
	err := db.Where(&Balance{Owner: owner}).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = Balance{Owner: owner, Amount: NewBigInt(delta)}
		return db.Create(&balance).Error
	}
	if err != nil {
		return err
	}

	balance.Amount = NewBigInt(new(big.Int).Add(&balance.Amount.Int, delta))

	return db.Save(&balance).Error
}

// GetAllowance returns the Allowance row for the (owner, spender) pair, or
// nil if none exists.
func GetAllowance(db *gorm.DB, owner, spender Address) (*Allowance, error) {
	var allowance Allowance
	err := db.Where(&Allowance{Owner: owner, Spender: spender}).First(&allowance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &allowance, nil
}

// SetAllowance upserts the pair's row, replacing the prior amount. Approve
// sets, it does not add.
func SetAllowance(db *gorm.DB, owner, spender Address, amount *big.Int) error {
	allowance := Allowance{Owner: owner, Spender: spender, Amount: NewBigInt(amount)}

	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner"}, {Name: "spender"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&allowance).Error
}

// GetOrInitContract returns the singleton contract row, creating it with
// zero supply and placeholder identity fields if none exists yet.
func GetOrInitContract(db *gorm.DB) (*TokenContract, error) {
	var contract TokenContract
	err := db.First(&contract).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		contract = TokenContract{Owner: ZeroAddress, TotalSupply: NewBigInt(nil)}
		if err := db.Create(&contract).Error; err != nil {
			return nil, err
		}
		return &contract, nil
	}
	if err != nil {
		return nil, err
	}

	return &contract, nil
}

// SetContractFields overwrites the identity fields read from current
// on-chain state. TotalSupply is left untouched, it is event-derived only.
func SetContractFields(db *gorm.DB, name, symbol string, owner Address, decimals uint8) error {
	contract, err := GetOrInitContract(db)
	if err != nil {
		return err
	}

	contract.Name = name
	contract.Symbol = symbol
	contract.Owner = owner
	contract.Decimals = decimals

	return db.Save(contract).Error
}

// AddToTotalSupply applies a mint/burn delta to the singleton contract row.
func AddToTotalSupply(db *gorm.DB, delta *big.Int) error {
	contract, err := GetOrInitContract(db)
	if err != nil {
		return err
	}

	contract.TotalSupply = NewBigInt(new(big.Int).Add(&contract.TotalSupply.Int, delta))

	return db.Save(contract).Error
}
