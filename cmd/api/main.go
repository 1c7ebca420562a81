package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/config"
	"ramana-bouquets/internal/db"
	"ramana-bouquets/internal/httpserver"
	"ramana-bouquets/internal/logging"
	categoryrepo "ramana-bouquets/internal/repository/category"
	productrepo "ramana-bouquets/internal/repository/product"
	"ramana-bouquets/internal/repository/remotelist"
	"ramana-bouquets/internal/service/catalog"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"
)

func main() {
	cfg := config.Load()
	logger := logging.New("[api] ", cfg.LogLevel)

	if cfg.JWTSecret == "" {
		logger.Fatalf("JWT_SECRET is required")
	}
	gin.SetMode(gin.ReleaseMode)

	ctx := context.Background()
	deps := httpserver.Deps{Verifier: auth.NewVerifier(cfg.JWTSecret)}

	switch cfg.RemoteBackend {
	case "postgres":
		dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			logger.Fatalf("connect to db: %v", err)
		}
		defer dbpool.Close()

		deps.DB = dbpool
		deps.Lists = remotelist.NewPostgres(dbpool, logger)
		deps.Catalog = catalog.New(productrepo.NewPostgres(dbpool, logger), categoryrepo.NewPostgres(dbpool))
	case "sqlite":
		sqlDB, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			logger.Fatalf("open sqlite: %v", err)
		}
		sqlDB.SetMaxOpenConns(1)
		defer sqlDB.Close()

		lists := remotelist.NewSQLite(sqlDB, logger)
		if err := lists.EnsureSchema(ctx); err != nil {
			logger.Fatalf("sqlite schema: %v", err)
		}
		deps.DB = lists
		deps.Lists = lists
		logger.Warnf("sqlite backend serves lists only, catalog routes are disabled")
	default:
		logger.Fatalf("unknown REMOTE_BACKEND %q", cfg.RemoteBackend)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, deps)
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("starting http server on %s backend=%s", cfg.HTTPAddr, cfg.RemoteBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Infof("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Errorf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	} else {
		logger.Infof("server stopped")
	}
}
