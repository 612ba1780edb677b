package preferences

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

var now = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupRepo(t *testing.T, opts ...Option) (context.Context, *store.Handle, *Repository) {
	t.Helper()
	h := store.SetupTestHandle(t, &PreferenceDao{})
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return context.Background(), h, New(h, opts...)
}

func TestGet_FallsBackToDefaults(t *testing.T) {
	ctx, _, repo := setupRepo(t)

	raw, err := repo.Get(ctx, KeyCurrency)
	require.NoError(t, err)
	assert.JSONEq(t, `"USD"`, string(raw))

	raw, err = repo.Get(ctx, "unknown.key")
	require.NoError(t, err)
	assert.Nil(t, raw)

	chainID, err := Value[int64](ctx, repo, KeyDefaultChainID)
	require.NoError(t, err)
	require.NotNil(t, chainID)
	assert.Equal(t, int64(1), *chainID)
}

func TestSet_WritesStoreThenMemory(t *testing.T) {
	ctx, h, repo := setupRepo(t)

	pref, err := repo.Set(ctx, KeyCurrency, "EUR")
	require.NoError(t, err)
	assert.Equal(t, now, pref.UpdatedAt)

	cached, ok := repo.Cached(KeyCurrency)
	require.True(t, ok)
	assert.JSONEq(t, `"EUR"`, string(cached))

	// A second repository over the same store reads through to the stored value.
	cold := New(h)
	cached, ok = cold.Cached(KeyCurrency)
	require.True(t, ok)
	assert.JSONEq(t, `"USD"`, string(cached), "nothing loaded into memory yet")

	currency, err := Value[string](ctx, cold, KeyCurrency)
	require.NoError(t, err)
	assert.Equal(t, "EUR", *currency)

	cached, _ = cold.Cached(KeyCurrency)
	assert.JSONEq(t, `"EUR"`, string(cached), "read-through populated memory")
}

func TestLoad_RebuildsMemory(t *testing.T) {
	ctx, h, repo := setupRepo(t)

	_, err := repo.Set(ctx, KeyTheme, "dark")
	require.NoError(t, err)
	_, err = repo.Set(ctx, "wallet.labels", map[string]string{"0xaaaa": "savings"})
	require.NoError(t, err)

	cold := New(h)
	prefs, err := cold.Load(ctx)
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, KeyTheme, prefs[0].Key)

	labels, ok := cold.Cached("wallet.labels")
	require.True(t, ok)
	assert.JSONEq(t, `{"0xaaaa":"savings"}`, string(labels))
}

func TestDelete_RestoresDefault(t *testing.T) {
	ctx, _, repo := setupRepo(t)

	_, err := repo.Set(ctx, KeyNotifications, false)
	require.NoError(t, err)
	enabled, err := Value[bool](ctx, repo, KeyNotifications)
	require.NoError(t, err)
	assert.False(t, *enabled)

	ok, err := repo.Delete(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx, KeyNotifications)
	require.NoError(t, err)
	assert.False(t, ok)

	enabled, err = Value[bool](ctx, repo, KeyNotifications)
	require.NoError(t, err)
	assert.True(t, *enabled)
}

func TestDeleteAll_ClearsMemory(t *testing.T) {
	ctx, _, repo := setupRepo(t, WithDefaults(map[string]any{"a.b": 1}))

	_, err := repo.Set(ctx, "a.b", 2)
	require.NoError(t, err)
	_, err = repo.Set(ctx, "c.d", "x")
	require.NoError(t, err)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	raw, ok := repo.Cached("a.b")
	require.True(t, ok)
	assert.Equal(t, json.RawMessage(`1`), raw)
	_, ok = repo.Cached("c.d")
	assert.False(t, ok)
	_, ok = repo.Cached(KeyCurrency)
	assert.False(t, ok, "custom defaults replace the built-in table")
}

func TestValueAndValidation(t *testing.T) {
	ctx, _, repo := setupRepo(t)

	_, err := repo.Set(ctx, KeyAutoLockMinutes, "soon")
	require.NoError(t, err)
	minutes, err := Value[int](ctx, repo, KeyAutoLockMinutes)
	require.NoError(t, err)
	assert.Nil(t, minutes, "value that does not fit T")

	for _, key := range []string{"", " ", ".a", "a.", "a..b"} {
		_, err = repo.Set(ctx, key, 1)
		assert.True(t, apperrors.Is(err, apperrors.CategoryDataError), key)
	}

	_, err = repo.Set(ctx, "x.y", make(chan int))
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}

func TestReadsReturnCopies(t *testing.T) {
	ctx, _, repo := setupRepo(t)

	_, err := repo.Set(ctx, KeyTheme, "dark")
	require.NoError(t, err)

	raw, err := repo.Get(ctx, KeyTheme)
	require.NoError(t, err)
	raw[1] = 'X'
	raw, err = repo.Get(ctx, KeyTheme)
	require.NoError(t, err)
	assert.JSONEq(t, `"dark"`, string(raw))

	cached, ok := repo.Cached(KeyTheme)
	require.True(t, ok)
	cached[1] = 'X'
	cached, _ = repo.Cached(KeyTheme)
	assert.JSONEq(t, `"dark"`, string(cached))

	def, err := repo.Get(ctx, KeyCurrency)
	require.NoError(t, err)
	def[1] = 'Z'
	fromTable, ok := repo.Default(KeyCurrency)
	require.True(t, ok)
	fromTable[2] = 'Z'
	cachedDefault, _ := repo.Cached(KeyCurrency)
	cachedDefault[3] = 'Z'

	def, err = repo.Get(ctx, KeyCurrency)
	require.NoError(t, err)
	assert.JSONEq(t, `"USD"`, string(def))
	fromTable, _ = repo.Default(KeyCurrency)
	assert.JSONEq(t, `"USD"`, string(fromTable))
}

func TestGet_ReadThroughReturnsCopy(t *testing.T) {
	ctx, h, repo := setupRepo(t)

	_, err := repo.Set(ctx, KeyLanguage, "de")
	require.NoError(t, err)

	cold := New(h)
	raw, err := cold.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	raw[1] = 'X'

	raw, err = cold.Get(ctx, KeyLanguage)
	require.NoError(t, err)
	assert.JSONEq(t, `"de"`, string(raw))
}
