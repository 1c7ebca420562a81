package main

import (
	"context"

	"ramana-bouquets/internal/config"
	"ramana-bouquets/internal/db"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/migrate"
)

func main() {
	cfg := config.Load()
	logger := logging.New("[migrate] ", cfg.LogLevel)

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	version, err := migrate.Apply(ctx, pool)
	if err != nil {
		logger.Fatalf("apply migrations: %v", err)
	}

	logger.Infof("migrations applied, schema version %d", version)
}
