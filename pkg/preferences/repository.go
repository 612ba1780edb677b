// Package preferences stores user preferences behind an in-memory
// read-through cache. Reads check memory, then the store, then a static
// default table. Writes go to the store first and to memory second, so the
// store stays authoritative and Load can always rebuild the memory map.
package preferences

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// WithDefaults replaces the default table.
func WithDefaults(defaults map[string]any) Option {
	return func(r *Repository) { r.rawDefaults = defaults }
}

// Repository reads and writes user preferences.
type Repository struct {
	store       *store.Handle
	now         func() time.Time
	rawDefaults map[string]any
	defaults    map[string]json.RawMessage

	mu    sync.RWMutex
	cache map[string]json.RawMessage
	// gen changes on every write so a read-through that raced a write does
	// not put an outdated value back into the cache.
	gen uint64
}

// New creates a preferences repository over h. It panics when a default
// value cannot be serialized.
func New(h *store.Handle, opts ...Option) *Repository {
	r := &Repository{
		store:       h,
		now:         time.Now,
		rawDefaults: Defaults,
		cache:       make(map[string]json.RawMessage),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.defaults = make(map[string]json.RawMessage, len(r.rawDefaults))
	for key, value := range r.rawDefaults {
		raw, err := json.Marshal(value)
		if err != nil {
			panic(fmt.Sprintf("preferences: invalid default for %s: %v", key, err))
		}
		r.defaults[key] = raw
	}
	return r
}

// Get returns the serialized value of key, or nil when it was never set and
// has no default.
func (r *Repository) Get(ctx context.Context, key string) (json.RawMessage, error) {
	r.mu.RLock()
	raw, ok := r.cache[key]
	gen := r.gen
	r.mu.RUnlock()
	if ok {
		return clone(raw), nil
	}

	dao, err := r.get(ctx, key)
	if err != nil {
		return nil, err
	}
	if dao == nil {
		return clone(r.defaults[key]), nil
	}

	raw = json.RawMessage(dao.Value)
	r.mu.Lock()
	if r.gen == gen {
		r.cache[key] = raw
	}
	r.mu.Unlock()
	return clone(raw), nil
}

// Cached returns the value of key from memory, falling back to the default
// table. It never touches the store.
func (r *Repository) Cached(key string) (json.RawMessage, bool) {
	r.mu.RLock()
	raw, ok := r.cache[key]
	r.mu.RUnlock()
	if ok {
		return clone(raw), true
	}
	raw, ok = r.defaults[key]
	return clone(raw), ok
}

// Default returns the default value of key.
func (r *Repository) Default(key string) (json.RawMessage, bool) {
	raw, ok := r.defaults[key]
	return clone(raw), ok
}

// clone copies raw so callers never share the bytes held in memory.
func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	return append(json.RawMessage(nil), raw...)
}

// Set stores value under key.
func (r *Repository) Set(ctx context.Context, key string, value any) (*Preference, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, apperrors.BadRequestError(err, fmt.Sprintf("failed to serialize preference %s", key))
	}

	row := &PreferenceDao{Key: key}
	_, err = store.Upsert(ctx, r.store, row, func(row *PreferenceDao, _ bool) (bool, error) {
		row.Value = string(raw)
		row.UpdatedAt = store.Millis(r.now())
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set preference %s: %w", key, err)
	}

	r.mu.Lock()
	r.cache[key] = raw
	r.gen++
	r.mu.Unlock()
	return toPreference(row), nil
}

// Load reads every stored preference and rebuilds the memory map from them.
func (r *Repository) Load(ctx context.Context) ([]*Preference, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows []PreferenceDao
	if err := db.NewSelect().Model(&rows).OrderExpr("? ASC", bun.Ident("key")).Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to load preferences")
	}

	cache := make(map[string]json.RawMessage, len(rows))
	out := make([]*Preference, len(rows))
	for i := range rows {
		cache[rows[i].Key] = json.RawMessage(rows[i].Value)
		out[i] = toPreference(&rows[i])
	}

	r.mu.Lock()
	r.cache = cache
	r.gen++
	r.mu.Unlock()
	return out, nil
}

// Delete removes the stored value of key, so reads fall back to the default
// again. It reports whether a value was stored.
func (r *Repository) Delete(ctx context.Context, key string) (bool, error) {
	var deleted bool
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model(&PreferenceDao{Key: key}).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete preference %s: %w", key, err)
	}

	r.mu.Lock()
	delete(r.cache, key)
	r.gen++
	r.mu.Unlock()
	return deleted, nil
}

// DeleteAll removes every stored preference and empties the memory map.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	n, err := r.store.DeleteAll(ctx, (*PreferenceDao)(nil))
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.cache = make(map[string]json.RawMessage)
	r.gen++
	r.mu.Unlock()
	return n, nil
}

func (r *Repository) get(ctx context.Context, key string) (*PreferenceDao, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := &PreferenceDao{Key: key}
	if err := db.NewSelect().Model(row).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, fmt.Sprintf("failed to read preference %s", key))
	}
	return row, nil
}

// Value decodes the value of key into T. It returns nil when the key has no
// value or the value does not fit T.
func Value[T any](ctx context.Context, r *Repository, key string) (*T, error) {
	raw, err := r.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}
	v := new(T)
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, nil
	}
	return v, nil
}

func validateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return apperrors.BadRequestError(nil, "preference key is required")
	}
	if strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") || strings.Contains(key, "..") {
		return apperrors.BadRequestError(nil, fmt.Sprintf("invalid preference key %q", key))
	}
	return nil
}
