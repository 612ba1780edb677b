// Package walletsync implements app.Runner for the wallet sync process.
package walletsync

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/uptrace/bun"
	"go.uber.org/zap"

	apphttp "github.com/chainsafe/wallet-sync/pkg/app/http"
	"github.com/chainsafe/wallet-sync/pkg/config"
	"github.com/chainsafe/wallet-sync/pkg/inspector"
	"github.com/chainsafe/wallet-sync/pkg/migrations/walletdb"
	"github.com/chainsafe/wallet-sync/pkg/store"
	"github.com/chainsafe/wallet-sync/pkg/walletdata"
)

// Server holds cfg to init the wallet sync process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes a new wallet sync server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("wallet sync config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting wallet sync",
		zap.String("store", storeLocation(&cfg.Store)),
		zap.Bool("inspector", cfg.Inspector.Enabled),
	)

	h := store.New(cfg.Store,
		store.WithLogger(logger),
		store.WithMigrations(walletdb.Migrations),
		store.WithMigrationHook(func(_ context.Context, _ *bun.DB, oldVersion, newVersion int) error {
			logger.Info("Wallet schema upgraded",
				zap.Int("old_version", oldVersion),
				zap.Int("new_version", newVersion),
			)
			return nil
		}),
	)
	defer func() { _ = h.Close() }()

	if err := h.Open(ctx); err != nil {
		return fmt.Errorf("open store: %w", err)
	}

	data := walletdata.New(h, cfg, logger)
	s.runInitialPrune(ctx, data, logger)

	if !cfg.Inspector.Enabled {
		logger.Info("Inspector disabled, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	}

	router := inspector.NewRouter(data, logger)
	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Inspector)
}

func (s *Server) runInitialPrune(ctx context.Context, data *walletdata.Data, logger *zap.Logger) {
	if _, err := data.Prune(ctx); err != nil {
		logger.Warn("Initial prune failed", zap.Error(err))
	}
}

func storeLocation(cfg *config.StoreConfig) string {
	if cfg.InMemory {
		return ":memory:"
	}
	return cfg.Path
}
