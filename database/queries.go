package database

import (
	"database/sql"

	"gorm.io/gorm"
)

func CreateTransferEvents(db *gorm.DB, events []*TransferEvent) error {
	if len(events) == 0 {
		return nil
	}

	return db.Create(events).Error
}

func CreateApprovalEvents(db *gorm.DB, events []*ApprovalEvent) error {
	if len(events) == 0 {
		return nil
	}

	return db.Create(events).Error
}

func ListTransferEvents(db *gorm.DB) ([]TransferEvent, error) {
	var events []TransferEvent
	err := db.Order("block_number DESC, id DESC").Find(&events).Error

	return events, err
}

func ListApprovalEvents(db *gorm.DB) ([]ApprovalEvent, error) {
	var events []ApprovalEvent
	err := db.Order("block_number DESC, id DESC").Find(&events).Error

	return events, err
}

// MaxTransferBlock returns the highest block number among stored Transfer
// events. The second return value is false when no events exist yet.
func MaxTransferBlock(db *gorm.DB) (uint64, bool, error) {
	return maxBlock(db.Model(&TransferEvent{}))
}

func MaxApprovalBlock(db *gorm.DB) (uint64, bool, error) {
	return maxBlock(db.Model(&ApprovalEvent{}))
}

func maxBlock(query *gorm.DB) (uint64, bool, error) {
	var result sql.NullInt64
	err := query.Select("MAX(block_number)").Scan(&result).Error
	if err != nil {
		return 0, false, err
	}
	if !result.Valid {
		return 0, false, nil
	}

	return uint64(result.Int64), true, nil
}

// PurgeAll deletes every durable event record and every aggregate row.
// The next reconciliation cycle recomputes all state from the genesis
// transaction onwards.
func PurgeAll(db *gorm.DB) error {
	for _, entity := range entities {
		err := db.Where("1 = 1").Delete(&entity).Error
		if err != nil {
			return err
		}
	}

	return nil
}
