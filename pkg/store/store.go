// Package store owns the process-wide handle to the embedded wallet database.
//
// A Handle is constructed once and injected into every repository. It opens
// lazily: the first call that needs the database triggers the open, and
// concurrent early callers wait on that same in-flight open.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chainsafe/wallet-sync/internal/metrics"
	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/config"
	"github.com/chainsafe/wallet-sync/pkg/sqliteutil"
)

// ErrClosed is returned by every call made after Close.
var ErrClosed = errors.New("store is closed")

// MigrationHook runs once at open when the schema version changed.
type MigrationHook func(ctx context.Context, db *bun.DB, oldVersion, newVersion int) error

// Transform is a field-level data transform applied when an open crosses the
// (From, To] version range.
type Transform struct {
	From  int
	To    int
	Name  string
	Apply func(ctx context.Context, tx bun.Tx) error
}

// Connector opens the underlying database.
type Connector func(ctx context.Context, cfg *config.StoreConfig) (*bun.DB, error)

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Handle) { h.logger = logger }
}

// WithMigrations sets the versioned schema migrations applied at open.
func WithMigrations(m *migrate.Migrations) Option {
	return func(h *Handle) { h.migrations = m }
}

// WithMigrationHook registers the callback run when the schema version changes.
func WithMigrationHook(hook MigrationHook) Option {
	return func(h *Handle) { h.hook = hook }
}

// WithTransforms registers version-range data transforms.
func WithTransforms(transforms ...Transform) Option {
	return func(h *Handle) { h.transforms = append(h.transforms, transforms...) }
}

// WithConnector replaces the SQLite connector, mainly for tests.
func WithConnector(c Connector) Option {
	return func(h *Handle) { h.connect = c }
}

// Handle is the shared, lazily opened store.
type Handle struct {
	cfg        config.StoreConfig
	logger     *zap.Logger
	migrations *migrate.Migrations
	hook       MigrationHook
	transforms []Transform
	connect    Connector

	group singleflight.Group

	mu      sync.RWMutex
	db      *bun.DB
	version int
	closed  bool
}

// New creates a Handle. Nothing is opened until the first call needs it.
func New(cfg config.StoreConfig, opts ...Option) *Handle {
	h := &Handle{
		cfg:     cfg,
		logger:  zap.NewNop(),
		connect: sqliteutil.ConnectDB,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Open opens and migrates the database. It is idempotent. Concurrent callers
// share a single in-flight open; a caller whose ctx ends stops waiting but
// does not abort the open. A failed open is not remembered, so the next call
// retries.
func (h *Handle) Open(ctx context.Context) error {
	_, err := h.DB(ctx)
	return err
}

// DB returns the opened database, opening it first if needed.
func (h *Handle) DB(ctx context.Context) (*bun.DB, error) {
	h.mu.RLock()
	db, closed := h.db, h.closed
	h.mu.RUnlock()
	if closed {
		return nil, apperrors.StorageError(ErrClosed, "store is closed")
	}
	if db != nil {
		return db, nil
	}

	ch := h.group.DoChan("open", func() (any, error) {
		return h.open(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*bun.DB), nil
	}
}

func (h *Handle) open(ctx context.Context) (*bun.DB, error) {
	h.mu.RLock()
	if h.db != nil {
		db := h.db
		h.mu.RUnlock()
		return db, nil
	}
	h.mu.RUnlock()

	start := time.Now()
	db, err := h.connect(ctx, &h.cfg)
	if err != nil {
		metrics.StoreOpenTotal.WithLabelValues("error").Inc()
		return nil, apperrors.StorageError(err, "failed to open store")
	}

	oldVersion, newVersion, err := h.migrate(ctx, db)
	if err != nil {
		_ = db.Close()
		metrics.StoreOpenTotal.WithLabelValues("error").Inc()
		return nil, apperrors.StorageError(err, "failed to migrate store")
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = db.Close()
		return nil, apperrors.StorageError(ErrClosed, "store is closed")
	}
	h.db = db
	h.version = newVersion
	h.mu.Unlock()

	metrics.StoreOpenTotal.WithLabelValues("ok").Inc()
	h.logger.Info("Store opened",
		zap.Int("old_version", oldVersion),
		zap.Int("schema_version", newVersion),
		zap.Duration("duration", time.Since(start)),
	)
	return db, nil
}

// migrate applies pending migrations and, when the version moved, runs the
// hook and the transforms covering the crossed range.
func (h *Handle) migrate(ctx context.Context, db *bun.DB) (int, int, error) {
	if h.migrations == nil {
		return 0, 0, nil
	}

	migrator := migrate.NewMigrator(db, h.migrations)
	if err := migrator.Init(ctx); err != nil {
		return 0, 0, fmt.Errorf("init migrations: %w", err)
	}

	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("read migration status: %w", err)
	}
	oldVersion := len(ms.Applied())
	newVersion := len(ms)
	if oldVersion == newVersion {
		return oldVersion, newVersion, nil
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return oldVersion, oldVersion, fmt.Errorf("apply migrations: %w", err)
	}

	if err := h.runTransforms(ctx, db, oldVersion, newVersion); err != nil {
		return oldVersion, newVersion, err
	}
	if h.hook != nil {
		if err := h.hook(ctx, db, oldVersion, newVersion); err != nil {
			return oldVersion, newVersion, fmt.Errorf("migration hook %d -> %d: %w", oldVersion, newVersion, err)
		}
	}
	return oldVersion, newVersion, nil
}

func (h *Handle) runTransforms(ctx context.Context, db *bun.DB, oldVersion, newVersion int) error {
	for _, tr := range h.transforms {
		if !tr.covers(oldVersion, newVersion) {
			continue
		}
		h.logger.Info("Applying data transform",
			zap.String("transform", tr.Name),
			zap.Int("from", tr.From),
			zap.Int("to", tr.To),
		)
		if err := db.RunInTx(ctx, nil, tr.Apply); err != nil {
			return fmt.Errorf("transform %s: %w", tr.Name, err)
		}
	}
	return nil
}

// covers reports whether the transform's range lies inside (oldVersion, newVersion].
func (t Transform) covers(oldVersion, newVersion int) bool {
	return t.From >= oldVersion && t.To <= newVersion && t.From < t.To
}

// SchemaVersion returns the schema version of the opened store.
func (h *Handle) SchemaVersion(ctx context.Context) (int, error) {
	if _, err := h.DB(ctx); err != nil {
		return 0, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.version, nil
}

// WithWrite runs fn inside one atomic write scope. Errors that already carry
// a category (validation, conflict) pass through untouched; anything else is
// reported as a storage failure.
func (h *Handle) WithWrite(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	db, err := h.DB(ctx)
	if err != nil {
		return err
	}

	err = db.RunInTx(ctx, nil, fn)
	if err == nil || apperrors.IsServiceError(err) {
		return err
	}
	return apperrors.StorageError(err, "write failed")
}

// DeleteAll removes every row of the record type behind model.
func (h *Handle) DeleteAll(ctx context.Context, model any) (int64, error) {
	var affected int64
	err := h.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model(model).Where("1=1").Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete all %T: %w", model, err)
	}
	return affected, nil
}

// Close closes the database. Later calls fail with ErrClosed.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	if err != nil {
		return apperrors.StorageError(err, "failed to close store")
	}
	return nil
}
