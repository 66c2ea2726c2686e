package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
)

var (
	BackoffMaxElapsedTime time.Duration                = 5 * time.Minute
	GlobalConfigCallback  ConfigCallback[GlobalConfig] = ConfigCallback[GlobalConfig]{}
	CfgFlag                                            = flag.String("config", "config.toml", "Configuration file (toml format)")
)

const (
	TimeoutMillisDefault       = 3000
	UpdateIntervalMinutesDef   = 5
	MaxBlocksDefault           = 1000
	MaxQueriesPerSecondDefault = 5
	MaxQueriesPerMinuteDefault = 100
)

type GlobalConfig interface {
	LoggerConfig() LoggerConfig
	ChainConfig() ChainConfig
}

type Config struct {
	DB      DBConfig      `toml:"db"`
	Logger  LoggerConfig  `toml:"logger"`
	Chain   ChainConfig   `toml:"chain"`
	Token   TokenConfig   `toml:"token"`
	Indexer IndexerConfig `toml:"indexer"`
	API     APIConfig     `toml:"api"`
}

type LoggerConfig struct {
	Level       string `toml:"level"` // valid values are: DEBUG, INFO, WARN, ERROR, DPANIC, PANIC, FATAL (zap)
	File        string `toml:"file"`
	MaxFileSize int    `toml:"max_file_size"` // In megabytes
	Console     bool   `toml:"console"`
}

type DBConfig struct {
	Host             string `toml:"host" envconfig:"DB_HOST"`
	Port             int    `toml:"port" envconfig:"DB_PORT"`
	Database         string `toml:"database" envconfig:"DB_DATABASE"`
	Username         string `toml:"username" envconfig:"DB_USERNAME"`
	Password         string `toml:"password" envconfig:"DB_PASSWORD"`
	LogQueries       bool   `toml:"log_queries"`
	DropTableAtStart bool   `toml:"drop_table_at_start"`
}

type ChainConfig struct {
	NodeURL string `toml:"node_url" envconfig:"CHAIN_NODE_URL"`
}

// TokenConfig identifies the indexed ERC20 contract. GenesisTxHash is the
// deployment transaction, used to seed the fetch cursor when the database
// holds no events yet.
type TokenConfig struct {
	Address       string `toml:"address" envconfig:"TOKEN_ADDRESS"`
	GenesisTxHash string `toml:"genesis_tx_hash" envconfig:"TOKEN_GENESIS_TX_HASH"`
}

type IndexerConfig struct {
	UpdateIntervalMinutes int `toml:"update_interval_minutes"`
	MaxBlocks             int `toml:"max_blocks"` // block span covered by one getLogs call
	MaxQueriesPerSecond   int `toml:"max_queries_per_second"`
	MaxQueriesPerMinute   int `toml:"max_queries_per_minute"`
	TimeoutMillis         int `toml:"timeout_millis"`
}

type APIConfig struct {
	ListenAddress string `toml:"listen_address" envconfig:"API_LISTEN_ADDRESS"`
}

func newConfig() *Config {
	return &Config{
		Indexer: IndexerConfig{
			UpdateIntervalMinutes: UpdateIntervalMinutesDef,
			MaxBlocks:             MaxBlocksDefault,
			MaxQueriesPerSecond:   MaxQueriesPerSecondDefault,
			MaxQueriesPerMinute:   MaxQueriesPerMinuteDefault,
			TimeoutMillis:         TimeoutMillisDefault,
		},
		API: APIConfig{ListenAddress: ":3000"},
	}
}

func BuildConfig() (*Config, error) {
	cfgFileName := *CfgFlag

	cfg := newConfig()
	err := ParseConfigFile(cfg, cfgFileName)
	if err != nil {
		return nil, err
	}
	err = ReadEnv(cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func ParseConfigFile(cfg *Config, fileName string) error {
	content, err := os.ReadFile(fileName)
	if err != nil {
		return fmt.Errorf("error opening config file: %w", err)
	}

	_, err = toml.Decode(string(content), cfg)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	return nil
}

func ReadEnv(cfg interface{}) error {
	err := envconfig.Process("", cfg)
	if err != nil {
		return fmt.Errorf("error reading env config: %w", err)
	}
	return nil
}

func (c Config) LoggerConfig() LoggerConfig {
	return c.Logger
}

func (c Config) ChainConfig() ChainConfig {
	return c.Chain
}

func (c IndexerConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

func (c IndexerConfig) UpdateInterval() time.Duration {
	return time.Duration(c.UpdateIntervalMinutes) * time.Minute
}
