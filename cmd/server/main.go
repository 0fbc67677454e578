package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/live-draft-backend/internal/catalog"
	"github.com/DoyleJ11/live-draft-backend/internal/cleanup"
	"github.com/DoyleJ11/live-draft-backend/internal/config"
	"github.com/DoyleJ11/live-draft-backend/internal/httpapi"
	"github.com/DoyleJ11/live-draft-backend/internal/hub"
	"github.com/DoyleJ11/live-draft-backend/internal/logging"
	"github.com/DoyleJ11/live-draft-backend/internal/room"
	"github.com/DoyleJ11/live-draft-backend/internal/store"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, cat, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	clock := clockwork.NewRealClock()
	h := hub.NewHub(ctx, room.Deps{
		Catalog:     cat,
		Store:       st,
		Clock:       clock,
		Logger:      log,
		CallTimeout: cfg.CallTimeout,
	})
	defer h.Shutdown()

	cleaner := cleanup.New(st, h, clock, cfg.LobbyTTL, log)
	if err := cleaner.Start(ctx, cfg.CleanupInterval); err != nil {
		return fmt.Errorf("start cleanup: %w", err)
	}
	defer cleaner.Stop()

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:            h,
			Store:          st,
			Catalog:        cat,
			Clock:          clock,
			Logger:         log,
			AllowedOrigins: cfg.AllowedOrigins,
			OutboxSize:     cfg.OutboxSize,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", srv.Addr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// openStorage picks postgres when DATABASE_URL is set and in-memory
// storage otherwise. The player catalog is seeded from PLAYERS_FILE either way.
func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (store.Store, catalog.Catalog, error) {
	var seed []catalog.Player
	if cfg.PlayersFile != "" {
		players, err := catalog.LoadYAML(cfg.PlayersFile)
		if err != nil {
			return nil, nil, err
		}
		seed = players
	}

	if cfg.DatabaseURL == "" {
		log.Warn("DATABASE_URL not set, drafts are kept in memory")
		return store.NewMemory(), catalog.NewMemory(seed...), nil
	}

	db, err := store.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	pg := store.NewPostgres(db)
	if err := pg.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate drafts: %w", err)
	}
	cat := catalog.NewGorm(db)
	if err := cat.Migrate(ctx); err != nil {
		return nil, nil, fmt.Errorf("migrate players: %w", err)
	}
	if len(seed) > 0 {
		if err := cat.Seed(ctx, seed); err != nil {
			return nil, nil, fmt.Errorf("seed players: %w", err)
		}
		log.Info("seeded players", zap.Int("count", len(seed)))
	}
	return pg, cat, nil
}
