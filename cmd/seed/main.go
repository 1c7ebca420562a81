package main

import (
	"context"

	"ramana-bouquets/internal/config"
	"ramana-bouquets/internal/db"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/repository/product"
	"ramana-bouquets/internal/seed"
)

func main() {
	cfg := config.Load()
	logger := logging.New("[seed] ", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, product.NewPostgres(pool, logger), logger); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Infof("seed applied")
}
