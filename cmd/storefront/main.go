// Command storefront is an interactive terminal client for the cart and
// favorites lists. Signed out it keeps the lists in a local SQLite file;
// signed in it syncs them with the list API.
package main

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"ramana-bouquets/internal/auth"
	"ramana-bouquets/internal/config"
	"ramana-bouquets/internal/liststore"
	"ramana-bouquets/internal/localstore"
	"ramana-bouquets/internal/logging"
	"ramana-bouquets/internal/repository/remotelist"
	"ramana-bouquets/internal/service/cart"
	"ramana-bouquets/internal/service/favorites"
	"ramana-bouquets/internal/storefront"
)

func main() {
	cfg := config.Load()
	logger := logging.NewWithWriter(os.Stderr, "[storefront] ", cfg.LogLevel)
	ctx := context.Background()

	var local localstore.Storage = localstore.Noop{}
	if cfg.LocalStorePath != "none" {
		kv, err := localstore.OpenSQLite(ctx, cfg.LocalStorePath)
		if err != nil {
			logger.Fatalf("open local store: %v", err)
		}
		defer kv.Close()
		local = kv
	}

	session := auth.NewSession()
	remote := remotelist.NewHTTP(&http.Client{Timeout: 15 * time.Second}, cfg.RemoteBaseURL, session)
	opts := liststore.Options{
		Local:       local,
		Remote:      remote,
		Tokens:      session,
		Logger:      logger,
		ReadTimeout: cfg.RemoteReadTimeout,
	}

	in := bufio.NewReader(os.Stdin)
	resolver, err := newResolver(cfg.ConflictStrategy, in, os.Stdout)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	sf := storefront.New(storefront.Deps{
		Session:   session,
		Cart:      cart.New(opts, resolver),
		Favorites: favorites.New(opts),
		Logger:    logger,
	})
	sf.Wait()

	sh := &shell{sf: sf, out: os.Stdout}
	if cfg.JWTSecret != "" {
		sh.issuer = auth.NewIssuer(cfg.JWTSecret)
		sh.verifier = auth.NewVerifier(cfg.JWTSecret)
	}
	sh.run(ctx, in)

	closeCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := sf.Close(closeCtx); err != nil {
		logger.Errorf("close: %v", err)
	}
}

// newResolver returns nil for "merge", which the cart treats as merge.
func newResolver(strategy string, in *bufio.Reader, out io.Writer) (cart.ConflictResolver, error) {
	if strategy == "prompt" {
		return &promptResolver{in: in, out: out}, nil
	}
	s, err := cart.ParseStrategy(strategy)
	if err != nil {
		return nil, err
	}
	if s == cart.StrategyMerge {
		return nil, nil
	}
	return cart.FixedResolver(s), nil
}
