package database

// BaseEntity is an abstract entity, all other entities should be derived from it
type BaseEntity struct {
	ID uint64 `gorm:"primaryKey" json:"-"`
}

// TransferEvent is the immutable record of one on-chain Transfer log.
// Records are append-only; they are removed only by PurgeAll.
type TransferEvent struct {
	BaseEntity
	Sender         Address `gorm:"type:varchar(40);index" json:"sender"`
	Recipient      Address `gorm:"type:varchar(40);index" json:"recipient"`
	Amount         BigInt  `json:"amount"`
	BlockNumber    uint64  `gorm:"index" json:"blockNumber"`
	BlockTimestamp uint64  `json:"blockTimestamp"`
}

// ApprovalEvent is the immutable record of one on-chain Approval log.
type ApprovalEvent struct {
	BaseEntity
	Owner          Address `gorm:"type:varchar(40);index" json:"owner"`
	Spender        Address `gorm:"type:varchar(40);index" json:"spender"`
	Amount         BigInt  `json:"amount"`
	BlockNumber    uint64  `gorm:"index" json:"blockNumber"`
	BlockTimestamp uint64  `json:"blockTimestamp"`
}

// Balance is the derived token balance of one address, maintained by
// folding Transfer events. A row is created lazily on the first delta.
type Balance struct {
	BaseEntity
	Owner  Address `gorm:"type:varchar(40);uniqueIndex" json:"owner"`
	Amount BigInt  `json:"amount"`
}

// Allowance holds the latest approved amount per (owner, spender) pair.
// Unlike Balance it is replaced, not accumulated: approve sets, it does
// not add.
type Allowance struct {
	BaseEntity
	Owner   Address `gorm:"type:varchar(40);uniqueIndex:idx_allowance_pair" json:"owner"`
	Spender Address `gorm:"type:varchar(40);uniqueIndex:idx_allowance_pair" json:"spender"`
	Amount  BigInt  `json:"amount"`
}

// TokenContract is a singleton row. TotalSupply changes only through
// mint/burn deltas derived from Transfer events; the identity fields are
// refreshed from current on-chain state each cycle.
type TokenContract struct {
	BaseEntity
	Name        string  `gorm:"type:varchar(100)" json:"name"`
	Symbol      string  `gorm:"type:varchar(20)" json:"symbol"`
	Owner       Address `gorm:"type:varchar(40)" json:"owner"`
	Decimals    uint8   `json:"decimals"`
	TotalSupply BigInt  `json:"totalSupply"`
}
