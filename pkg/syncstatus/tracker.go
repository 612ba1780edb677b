package syncstatus

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

// Option configures a Tracker or Balances.
type Option func(*options)

type options struct {
	now           func() time.Time
	defaultMaxAge time.Duration
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, defaultMaxAge: DefaultMaxAge}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithDefaultMaxAge sets the threshold NeedsSync uses when called with a
// non-positive maxAge.
func WithDefaultMaxAge(maxAge time.Duration) Option {
	return func(o *options) {
		if maxAge > 0 {
			o.defaultMaxAge = maxAge
		}
	}
}

// Tracker records sync attempts per key. A key starts absent, moves to
// syncing on StartSync and to synced or error when the attempt ends. Any
// state may start syncing again.
type Tracker struct {
	store         *store.Handle
	now           func() time.Time
	defaultMaxAge time.Duration
}

// NewTracker creates a Tracker over h.
func NewTracker(h *store.Handle, opts ...Option) *Tracker {
	o := buildOptions(opts)
	return &Tracker{
		store:         h,
		now:           o.now,
		defaultMaxAge: o.defaultMaxAge,
	}
}

// StartSync marks key as syncing and clears the last error. Cached data is kept.
func (t *Tracker) StartSync(ctx context.Context, key Key) error {
	return t.transition(ctx, key, "start sync", func(row *StatusDao) error {
		row.Status = string(StateSyncing)
		row.ErrorMessage = nil
		return nil
	})
}

// CompleteSync marks key as synced. A non-nil data replaces the cached
// payload; nil keeps the previous one.
func (t *Tracker) CompleteSync(ctx context.Context, key Key, data any) error {
	var payload *string
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return apperrors.BadRequestError(err, "failed to serialize sync payload")
		}
		s := string(raw)
		payload = &s
	}

	return t.transition(ctx, key, "complete sync", func(row *StatusDao) error {
		row.Status = string(StateSynced)
		row.ErrorMessage = nil
		if payload != nil {
			row.Data = payload
		}
		return nil
	})
}

// SyncError marks key as failed with msg. Cached data is kept so it can be
// served as stale.
func (t *Tracker) SyncError(ctx context.Context, key Key, msg string) error {
	return t.transition(ctx, key, "record sync error", func(row *StatusDao) error {
		row.Status = string(StateError)
		row.ErrorMessage = &msg
		return nil
	})
}

func (t *Tracker) transition(ctx context.Context, key Key, action string, apply func(row *StatusDao) error) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := store.Upsert(ctx, t.store, &StatusDao{Key: key.String()}, func(row *StatusDao, exists bool) (bool, error) {
		if !exists {
			row.Type = key.Type
			row.Address = chain.NormalizeAddress(key.Address)
			row.ChainID = key.ChainID
		}
		if err := apply(row); err != nil {
			return false, err
		}
		row.LastSyncAt = store.Millis(t.now())
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("failed to %s for %s: %w", action, key, err)
	}
	return nil
}

// NeedsSync reports whether key should be fetched again: it was never
// synced, it is older than maxAge, or its last attempt failed. A
// non-positive maxAge uses the tracker default.
func (t *Tracker) NeedsSync(ctx context.Context, key Key, maxAge time.Duration) (bool, error) {
	if maxAge <= 0 {
		maxAge = t.defaultMaxAge
	}

	row, err := t.get(ctx, key)
	if err != nil {
		return false, err
	}
	if row == nil {
		return true, nil
	}
	if State(row.Status) == StateError {
		return true, nil
	}
	age := t.now().Sub(store.FromMillis(row.LastSyncAt))
	return age > maxAge, nil
}

// Status returns the sync state of key, or nil when it was never tracked.
func (t *Tracker) Status(ctx context.Context, key Key) (*Status, error) {
	row, err := t.get(ctx, key)
	if err != nil || row == nil {
		return nil, err
	}
	return toStatus(row), nil
}

// CachedData returns the last good payload of key, or nil.
func (t *Tracker) CachedData(ctx context.Context, key Key) (json.RawMessage, error) {
	row, err := t.get(ctx, key)
	if err != nil || row == nil || row.Data == nil {
		return nil, err
	}
	return json.RawMessage(*row.Data), nil
}

// Delete forgets key and reports whether it was tracked.
func (t *Tracker) Delete(ctx context.Context, key Key) (bool, error) {
	var deleted bool
	err := t.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model(&StatusDao{Key: key.String()}).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete sync status %s: %w", key, err)
	}
	return deleted, nil
}

// DeleteAll forgets every key.
func (t *Tracker) DeleteAll(ctx context.Context) (int64, error) {
	return t.store.DeleteAll(ctx, (*StatusDao)(nil))
}

func (t *Tracker) get(ctx context.Context, key Key) (*StatusDao, error) {
	db, err := t.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := &StatusDao{Key: key.String()}
	if err := db.NewSelect().Model(row).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, fmt.Sprintf("failed to read sync status %s", key))
	}
	return row, nil
}

// CachedDataReader is satisfied by Tracker and by its decorators.
type CachedDataReader interface {
	CachedData(ctx context.Context, key Key) (json.RawMessage, error)
}

// GetCachedData decodes the cached payload of key into T. An absent or
// undecodable payload yields nil without an error.
func GetCachedData[T any](ctx context.Context, r CachedDataReader, key Key) (*T, error) {
	raw, err := r.CachedData(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}
	return Decode[T](raw), nil
}

// Decode parses a cached payload, returning nil when it does not fit T.
func Decode[T any](raw json.RawMessage) *T {
	if raw == nil {
		return nil
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil
	}
	return v
}

func validateKey(key Key) error {
	if key.Type == "" {
		return apperrors.BadRequestError(nil, "sync type is required")
	}
	if key.Address == "" {
		return apperrors.BadRequestError(nil, "sync address is required")
	}
	return nil
}
