package syncstatus

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

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type balancePayload struct {
	Bal string `json:"bal"`
}

func setupTracker(t *testing.T, opts ...Option) (context.Context, *Tracker, *testClock) {
	t.Helper()
	h := store.SetupTestHandle(t, &StatusDao{}, &BalanceDao{})
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return context.Background(), NewTracker(h, append([]Option{WithClock(clock.now)}, opts...)...), clock
}

func TestTracker_FreshnessLifecycle(t *testing.T) {
	ctx, tracker, clock := setupTracker(t)
	key := Key{Type: TypeBalance, Address: "0xAAAA", ChainID: 1}

	needs, err := tracker.NeedsSync(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, needs, "never synced")

	require.NoError(t, tracker.StartSync(ctx, key))
	status, err := tracker.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateSyncing, status.State)

	require.NoError(t, tracker.CompleteSync(ctx, key, balancePayload{Bal: "1.5"}))

	got, err := GetCachedData[balancePayload](ctx, tracker, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1.5", got.Bal)

	clock.advance(30 * time.Second)
	needs, err = tracker.NeedsSync(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, needs, "fresh within the window")

	clock.advance(31 * time.Second)
	needs, err = tracker.NeedsSync(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, needs, "stale after the window")
}

func TestTracker_ErrorKeepsDataAndForcesResync(t *testing.T) {
	ctx, tracker, _ := setupTracker(t)
	key := Key{Type: TypeTokens, Address: "0xAAAA", ChainID: 1}

	require.NoError(t, tracker.StartSync(ctx, key))
	require.NoError(t, tracker.CompleteSync(ctx, key, []string{"usdc"}))
	require.NoError(t, tracker.StartSync(ctx, key))
	require.NoError(t, tracker.SyncError(ctx, key, "rpc timeout"))

	status, err := tracker.Status(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateError, status.State)
	assert.Equal(t, "rpc timeout", status.ErrorMessage)
	assert.True(t, status.HasData)

	needs, err := tracker.NeedsSync(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.True(t, needs, "error state always needs a sync")

	raw, err := tracker.CachedData(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `["usdc"]`, string(raw))

	require.NoError(t, tracker.StartSync(ctx, key))
	status, err = tracker.Status(ctx, key)
	require.NoError(t, err)
	assert.Empty(t, status.ErrorMessage, "start clears the last error")

	require.NoError(t, tracker.CompleteSync(ctx, key, nil))
	raw, err = tracker.CachedData(ctx, key)
	require.NoError(t, err)
	assert.JSONEq(t, `["usdc"]`, string(raw), "nil payload keeps the previous data")
}

func TestTracker_KeyIgnoresAddressCase(t *testing.T) {
	ctx, tracker, _ := setupTracker(t)

	upper := Key{Type: TypeBalance, Address: "0xABCDEF", ChainID: 1}
	lower := Key{Type: TypeBalance, Address: "0xabcdef", ChainID: 1}
	require.NoError(t, tracker.CompleteSync(ctx, upper, balancePayload{Bal: "2"}))

	got, err := GetCachedData[balancePayload](ctx, tracker, lower)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.Bal)
	assert.Equal(t, "balance-0xabcdef-1", upper.String())

	other, err := tracker.CachedData(ctx, Key{Type: TypeBalance, Address: "0xabcdef", ChainID: 137})
	require.NoError(t, err)
	assert.Nil(t, other, "chains are tracked separately")
}

func TestTracker_DefaultMaxAge(t *testing.T) {
	ctx, tracker, clock := setupTracker(t, WithDefaultMaxAge(10*time.Second))
	key := Key{Type: TypePrices, Address: "0xAAAA", ChainID: 1}
	require.NoError(t, tracker.CompleteSync(ctx, key, nil))

	clock.advance(5 * time.Second)
	needs, err := tracker.NeedsSync(ctx, key, 0)
	require.NoError(t, err)
	assert.False(t, needs)

	clock.advance(6 * time.Second)
	needs, err = tracker.NeedsSync(ctx, key, 0)
	require.NoError(t, err)
	assert.True(t, needs)

	needs, err = tracker.NeedsSync(ctx, key, time.Hour)
	require.NoError(t, err)
	assert.False(t, needs, "explicit max age wins")
}

func TestGetCachedData_UndecodablePayloadIsNil(t *testing.T) {
	ctx, tracker, _ := setupTracker(t)
	key := Key{Type: TypeBalance, Address: "0xAAAA", ChainID: 1}
	require.NoError(t, tracker.CompleteSync(ctx, key, []int{1, 2}))

	got, err := GetCachedData[balancePayload](ctx, tracker, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	missing, err := GetCachedData[balancePayload](ctx, tracker, Key{Type: TypeBalance, Address: "0xBBBB", ChainID: 1})
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Nil(t, Decode[balancePayload](json.RawMessage(`{bad`)))
	assert.Nil(t, Decode[balancePayload](nil))
}

func TestTracker_DeleteAndValidation(t *testing.T) {
	ctx, tracker, _ := setupTracker(t)
	key := Key{Type: TypeTransactions, Address: "0xAAAA", ChainID: 1}
	require.NoError(t, tracker.StartSync(ctx, key))
	require.NoError(t, tracker.StartSync(ctx, Key{Type: TypeTokens, Address: "0xAAAA", ChainID: 1}))

	ok, err := tracker.Delete(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tracker.Delete(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	status, err := tracker.Status(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, status)

	n, err := tracker.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	err = tracker.StartSync(ctx, Key{Address: "0xAAAA"})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	err = tracker.SyncError(ctx, Key{Type: TypeBalance}, "x")
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	err = tracker.CompleteSync(ctx, key, func() {})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}
