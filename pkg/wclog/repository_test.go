package wclog

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	mghelper "github.com/chainsafe/wallet-sync/pkg/sqliteutil/migrations"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

type testClock struct{ t time.Time }

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func setupRepo(t *testing.T) (context.Context, *Repository, *testClock) {
	t.Helper()
	ctx := context.Background()
	h := store.SetupTestHandle(t, &SessionDao{}, &RequestDao{})

	db, err := h.DB(ctx)
	require.NoError(t, err)
	require.NoError(t, mghelper.CreatePartialUniqueIndex(ctx, db, &SessionDao{}, "topic", "active", "status = 'active'"))

	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return ctx, New(h, WithClock(clock.now)), clock
}

func uniswap(topic string) SessionInput {
	return SessionInput{
		Topic:    topic,
		DappName: "Uniswap",
		DappURL:  "https://app.uniswap.org",
		Chains:   []string{"eip155:1"},
		Accounts: []string{"eip155:1:0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"},
	}
}

func TestLogSessionConnected_ReconnectIsDeduplicated(t *testing.T) {
	ctx, repo, clock := setupRepo(t)

	first, err := repo.LogSessionConnected(ctx, uniswap("topic-1"))
	require.NoError(t, err)
	assert.Equal(t, SessionActive, first.Status)
	assert.Equal(t, []string{"eip155:1:0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, first.Accounts)

	clock.advance(time.Minute)
	second, err := repo.LogSessionConnected(ctx, uniswap("topic-1"))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.ConnectedAt, second.ConnectedAt)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	active, err := repo.GetActiveSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestSessionTopicReuseAfterDisconnect(t *testing.T) {
	ctx, repo, clock := setupRepo(t)

	first, err := repo.LogSessionConnected(ctx, uniswap("topic-1"))
	require.NoError(t, err)

	ok, err := repo.LogSessionDisconnected(ctx, "topic-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.LogSessionDisconnected(ctx, "topic-1")
	require.NoError(t, err)
	assert.False(t, ok)

	clock.advance(time.Hour)
	second, err := repo.LogSessionConnected(ctx, uniswap("topic-1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	history, err := repo.GetSessionHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, SessionDisconnected, history[1].Status)
	assert.NotNil(t, history[1].DisconnectedAt)

	byTopic, err := repo.GetSessionByTopic(ctx, "topic-1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, byTopic.ID)

	missing, err := repo.GetSessionByTopic(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkExpiredSessions(t *testing.T) {
	ctx, repo, clock := setupRepo(t)

	soon := clock.t.Add(10 * time.Minute)
	expiring := uniswap("topic-expiring")
	expiring.ExpiresAt = &soon
	_, err := repo.LogSessionConnected(ctx, expiring)
	require.NoError(t, err)
	_, err = repo.LogSessionConnected(ctx, uniswap("topic-forever"))
	require.NoError(t, err)

	n, err := repo.MarkExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	clock.advance(11 * time.Minute)
	n, err = repo.MarkExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	active, err := repo.GetActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "topic-forever", active[0].Topic)

	expired, err := repo.GetSessionByTopic(ctx, "topic-expiring")
	require.NoError(t, err)
	assert.Equal(t, SessionExpired, expired.Status)
}

func TestRequestLifecycle(t *testing.T) {
	ctx, repo, _ := setupRepo(t)

	chainID := int64(1)
	req, err := repo.LogRequest(ctx, RequestInput{
		SessionTopic: "topic-1",
		RequestID:    42,
		Method:       "eth_sendTransaction",
		Params:       []map[string]string{{"to": "0xbbbb"}},
		ChainID:      &chainID,
	})
	require.NoError(t, err)
	assert.Equal(t, RequestPending, req.Status)
	assert.JSONEq(t, `[{"to":"0xbbbb"}]`, string(req.Params))

	pending, err := repo.GetPendingRequests(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	approved, err := repo.ApproveRequest(ctx, "topic-1", 42, "0xtxhash")
	require.NoError(t, err)
	require.NotNil(t, approved)
	assert.Equal(t, RequestApproved, approved.Status)
	assert.Equal(t, json.RawMessage(`"0xtxhash"`), approved.Result)
	assert.NotNil(t, approved.RespondedAt)

	_, err = repo.RejectRequest(ctx, "topic-1", 42, "too late")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRequestAlreadyResolved))
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataConflict))

	_, err = repo.ApproveRequest(ctx, "topic-1", 42, "0xother")
	assert.True(t, errors.Is(err, ErrRequestAlreadyResolved))

	stored, err := repo.GetRequestsBySession(ctx, "topic-1")
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, json.RawMessage(`"0xtxhash"`), stored[0].Result, "first resolution wins")

	missing, err := repo.FailRequest(ctx, "topic-1", 7, "boom")
	require.NoError(t, err)
	assert.Nil(t, missing)

	pending, err = repo.GetPendingRequests(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRejectAndFail(t *testing.T) {
	ctx, repo, _ := setupRepo(t)

	for _, id := range []int64{1, 2} {
		_, err := repo.LogRequest(ctx, RequestInput{SessionTopic: "t", RequestID: id, Method: "personal_sign"})
		require.NoError(t, err)
	}

	rejected, err := repo.RejectRequest(ctx, "t", 1, "user rejected")
	require.NoError(t, err)
	assert.Equal(t, RequestRejected, rejected.Status)
	assert.Equal(t, "user rejected", rejected.ErrorMessage)

	failed, err := repo.FailRequest(ctx, "t", 2, "insufficient funds")
	require.NoError(t, err)
	assert.Equal(t, RequestFailed, failed.Status)

	_, err = repo.LogRequest(ctx, RequestInput{SessionTopic: "t", RequestID: 3, Method: "x", Params: json.RawMessage("{bad")})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
}

func TestCleanOldAndDeleteAll(t *testing.T) {
	ctx, repo, clock := setupRepo(t)

	_, err := repo.LogSessionConnected(ctx, uniswap("old"))
	require.NoError(t, err)
	_, err = repo.LogSessionDisconnected(ctx, "old")
	require.NoError(t, err)
	_, err = repo.LogSessionConnected(ctx, uniswap("still-active"))
	require.NoError(t, err)
	_, err = repo.LogRequest(ctx, RequestInput{SessionTopic: "old", RequestID: 1, Method: "personal_sign"})
	require.NoError(t, err)
	_, err = repo.RejectRequest(ctx, "old", 1, "")
	require.NoError(t, err)
	_, err = repo.LogRequest(ctx, RequestInput{SessionTopic: "old", RequestID: 2, Method: "personal_sign"})
	require.NoError(t, err)

	clock.advance(31 * 24 * time.Hour)
	res, err := repo.CleanOld(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, CleanResult{Sessions: 1, Requests: 1}, res)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestLogSessionConnected_LapsedActiveSessionIsReplaced(t *testing.T) {
	ctx, repo, clock := setupRepo(t)

	soon := clock.t.Add(5 * time.Minute)
	in := uniswap("topic-1")
	in.ExpiresAt = &soon
	first, err := repo.LogSessionConnected(ctx, in)
	require.NoError(t, err)

	clock.advance(10 * time.Minute)
	second, err := repo.LogSessionConnected(ctx, uniswap("topic-1"))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, SessionActive, second.Status)

	history, err := repo.GetSessionHistory(ctx, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, SessionExpired, history[1].Status)

	active, err := repo.GetActiveSessions(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, second.ID, active[0].ID)
}
