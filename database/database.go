package database

import (
	"context"
	"fmt"
	"time"

	"erc20-token-indexer/boff"
	"erc20-token-indexer/config"
	"erc20-token-indexer/logger"

	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	gormMysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const tcp = "tcp"

var (
	// List entities to auto-migrate
	entities = []interface{}{
		TransferEvent{},
		ApprovalEvent{},
		Balance{},
		Allowance{},
		TokenContract{},
	}

	// ReadyPollInterval is how often the startup readiness loop re-dials
	// an unreachable store.
	ReadyPollInterval = 5 * time.Second
)

// ConnectAndInitialize blocks until the store is reachable, then migrates
// the schema. The returned handle is created once at process start and
// held for the process lifetime; there is no implicit re-creation on error.
func ConnectAndInitialize(ctx context.Context, cfg *config.DBConfig) (*gorm.DB, error) {
	db, err := boff.RetryConstant(
		ctx,
		func() (*gorm.DB, error) {
			return Connect(cfg)
		},
		"database.Connect",
		ReadyPollInterval,
	)
	if err != nil {
		return nil, fmt.Errorf("ConnectAndInitialize: Connect: %w", err)
	}

	return initialize(db, cfg.DropTableAtStart)
}

func initialize(db *gorm.DB, dropTables bool) (*gorm.DB, error) {
	if dropTables {
		err := db.Migrator().DropTable(entities...)
		if err != nil {
			return nil, err
		}
	}

	// Initialize - auto migrate
	err := db.AutoMigrate(entities...)
	if err != nil {
		return nil, errors.Wrap(err, "ConnectAndInitialize: AutoMigrate")
	}

	return db, nil
}

func Connect(cfg *config.DBConfig) (*gorm.DB, error) {
	// Connect to the database
	dbConfig := mysql.Config{
		User:                 cfg.Username,
		Passwd:               cfg.Password,
		Net:                  tcp,
		Addr:                 fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		DBName:               cfg.Database,
		AllowNativePasswords: true,
		ParseTime:            true,
	}

	gormConfig := gorm.Config{
		Logger: gormlogger.Default.LogMode(getGormLogLevel(cfg)),
	}

	db, err := gorm.Open(gormMysql.Open(dbConfig.FormatDSN()), &gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	logger.Debug("Connected to database %s", cfg.Database)

	return db, nil
}

func getGormLogLevel(cfg *config.DBConfig) gormlogger.LogLevel {
	if cfg.LogQueries {
		return gormlogger.Info
	}

	return gormlogger.Silent
}
