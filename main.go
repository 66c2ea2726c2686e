package main

import (
	"context"
	"flag"
	"fmt"

	"erc20-token-indexer/api"
	"erc20-token-indexer/chain"
	"erc20-token-indexer/config"
	"erc20-token-indexer/database"
	"erc20-token-indexer/indexer"
	"erc20-token-indexer/logger"

	"github.com/joho/godotenv"
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.BuildConfig()
	if err != nil {
		fmt.Println("Config error: ", err)
		return
	}
	config.GlobalConfigCallback.Call(cfg)
	logger.Info("Running with configuration: chain: %s, database: %s, token: %s",
		cfg.Chain.NodeURL, cfg.DB.Database, cfg.Token.Address)

	ctx := context.Background()

	db, err := database.ConnectAndInitialize(ctx, &cfg.DB)
	if err != nil {
		fmt.Println("Database connect and initialize error: ", err)
		return
	}

	client, err := chain.Dial(cfg.Chain.NodeURL, cfg.Indexer.Timeout())
	if err != nil {
		fmt.Println("Chain dial error: ", err)
		return
	}

	tokenIndexer, err := indexer.CreateTokenIndexer(cfg, db, client)
	if err != nil {
		fmt.Println("Indexer init error: ", err)
		return
	}

	server := api.NewServer(db, tokenIndexer)
	go func() {
		logger.Info("API listening on %s", cfg.API.ListenAddress)
		if err := server.ListenAndServe(cfg.API.ListenAddress); err != nil {
			logger.Fatal("API server error: %s", err)
		}
	}()

	if err := tokenIndexer.Run(ctx); err != nil {
		fmt.Println("Run error: ", err)
	}
}
