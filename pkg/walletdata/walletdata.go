// Package walletdata wires every wallet repository over one store handle.
package walletdata

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chainsafe/wallet-sync/pkg/addressbook"
	"github.com/chainsafe/wallet-sync/pkg/config"
	"github.com/chainsafe/wallet-sync/pkg/offline"
	"github.com/chainsafe/wallet-sync/pkg/preferences"
	"github.com/chainsafe/wallet-sync/pkg/store"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
	"github.com/chainsafe/wallet-sync/pkg/tokenlist"
	"github.com/chainsafe/wallet-sync/pkg/txcache"
	"github.com/chainsafe/wallet-sync/pkg/wclog"
)

// Data holds the repositories and the orchestrator.
type Data struct {
	Store         *store.Handle
	AddressBook   *addressbook.Repository
	Tokens        *tokenlist.Repository
	Transactions  *txcache.Repository
	WalletConnect *wclog.Repository
	SyncStatus    *syncstatus.Tracker
	Balances      *syncstatus.Balances
	Preferences   *preferences.Repository
	Orchestrator  *offline.Orchestrator

	retentionDays int
	logger        *zap.Logger
}

// New builds every repository over h. The orchestrator talks to the sync
// tracker through a logging decorator.
func New(h *store.Handle, cfg *config.Config, logger *zap.Logger) *Data {
	tracker := syncstatus.NewTracker(h, syncstatus.WithDefaultMaxAge(cfg.Sync.MaxAge))

	return &Data{
		Store:         h,
		AddressBook:   addressbook.New(h),
		Tokens:        tokenlist.New(h),
		Transactions:  txcache.New(h),
		WalletConnect: wclog.New(h),
		SyncStatus:    tracker,
		Balances:      syncstatus.NewBalances(h),
		Preferences:   preferences.New(h),
		Orchestrator: offline.NewOrchestrator(
			offline.NewLogTracker(tracker, logger),
			offline.WithLogger(logger),
			offline.WithSingleFlight(cfg.Sync.SingleFlight),
		),
		retentionDays: cfg.Transactions.RetentionDays,
		logger:        logger,
	}
}

// WipeResult is the number of rows removed per table.
type WipeResult map[string]int64

// Wipe deletes every wallet record, one record type at a time. It stops at
// the first failure and returns what was removed so far.
func (d *Data) Wipe(ctx context.Context) (WipeResult, error) {
	steps := []struct {
		table  string
		delete func(context.Context) (int64, error)
	}{
		{"address_book", d.AddressBook.DeleteAll},
		{"token_list", d.Tokens.DeleteAll},
		{"transaction_cache", d.Transactions.DeleteAll},
		{"wc_sessions+wc_requests", d.WalletConnect.DeleteAll},
		{"sync_status", d.SyncStatus.DeleteAll},
		{"balance_snapshots", d.Balances.DeleteAll},
		{"user_preferences", d.Preferences.DeleteAll},
	}

	res := make(WipeResult, len(steps))
	for _, step := range steps {
		n, err := step.delete(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to wipe %s: %w", step.table, err)
		}
		res[step.table] = n
	}

	d.logger.Info("wallet data wiped", zap.Any("deleted", res))
	return res, nil
}

// PruneResult reports what Prune removed or expired.
type PruneResult struct {
	Transactions    int64 `json:"transactions"`
	ExpiredSessions int64 `json:"expired_sessions"`
	Sessions        int64 `json:"sessions"`
	Requests        int64 `json:"requests"`
}

// Prune expires lapsed WalletConnect sessions and removes history older than
// the configured retention.
func (d *Data) Prune(ctx context.Context) (PruneResult, error) {
	var res PruneResult
	var err error

	if res.ExpiredSessions, err = d.WalletConnect.MarkExpiredSessions(ctx); err != nil {
		return res, fmt.Errorf("failed to expire sessions: %w", err)
	}
	if res.Transactions, err = d.Transactions.CleanOld(ctx, d.retentionDays); err != nil {
		return res, fmt.Errorf("failed to prune transactions: %w", err)
	}
	cleaned, err := d.WalletConnect.CleanOld(ctx, d.retentionDays)
	if err != nil {
		return res, fmt.Errorf("failed to prune walletconnect log: %w", err)
	}
	res.Sessions, res.Requests = cleaned.Sessions, cleaned.Requests

	d.logger.Info("wallet data pruned",
		zap.Int("retention_days", d.retentionDays),
		zap.Int64("transactions", res.Transactions),
		zap.Int64("expired_sessions", res.ExpiredSessions),
		zap.Int64("sessions", res.Sessions),
		zap.Int64("requests", res.Requests),
	)
	return res, nil
}
