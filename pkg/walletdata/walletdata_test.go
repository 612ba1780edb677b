package walletdata

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/wallet-sync/pkg/addressbook"
	"github.com/chainsafe/wallet-sync/pkg/config"
	"github.com/chainsafe/wallet-sync/pkg/migrations/walletdb"
	"github.com/chainsafe/wallet-sync/pkg/offline"
	"github.com/chainsafe/wallet-sync/pkg/store"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
	"github.com/chainsafe/wallet-sync/pkg/tokenlist"
	"github.com/chainsafe/wallet-sync/pkg/txcache"
	"github.com/chainsafe/wallet-sync/pkg/wclog"
)

const (
	wallet = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	peer   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

func setup(t *testing.T) (context.Context, *Data) {
	t.Helper()
	h := store.New(config.StoreConfig{InMemory: true}, store.WithMigrations(walletdb.Migrations))
	t.Cleanup(func() { _ = h.Close() })

	cfg, err := config.Default()
	require.NoError(t, err)
	return context.Background(), New(h, cfg, zap.NewNop())
}

func tx(c string, ts int64, status txcache.Status) txcache.Input {
	return txcache.Input{
		Hash:      "0x" + strings.Repeat(c, 64),
		ChainID:   1,
		From:      wallet,
		To:        peer,
		Value:     "1",
		ValueWei:  "1000000000000000000",
		Timestamp: ts,
		Type:      txcache.TypeSend,
		Status:    status,
	}
}

func TestPrune(t *testing.T) {
	ctx, data := setup(t)

	old := time.Now().Add(-40 * 24 * time.Hour).Unix()
	_, err := data.Transactions.SyncTransactions(ctx, []txcache.Input{
		tx("1", old, txcache.StatusConfirmed),
		tx("2", time.Now().Unix(), txcache.StatusConfirmed),
	})
	require.NoError(t, err)
	_, err = data.Transactions.CreateLocalTransaction(ctx, tx("3", old, ""))
	require.NoError(t, err)

	lapsed := time.Now().Add(-time.Minute)
	_, err = data.WalletConnect.LogSessionConnected(ctx, wclog.SessionInput{Topic: "t1", DappName: "Uniswap", ExpiresAt: &lapsed})
	require.NoError(t, err)

	res, err := data.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, PruneResult{Transactions: 1, ExpiredSessions: 1}, res)

	left, err := data.Transactions.GetByAddress(ctx, wallet)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	active, err := data.WalletConnect.GetActiveSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestWipe(t *testing.T) {
	ctx, data := setup(t)

	_, err := data.AddressBook.AddContact(ctx, addressbook.NewContact{Address: peer, Name: "Bob"})
	require.NoError(t, err)
	_, err = data.Tokens.AddToken(ctx, tokenlist.NewToken{Address: peer, ChainID: 1, Symbol: "BOB", Decimals: 18})
	require.NoError(t, err)
	_, err = data.Transactions.CreateLocalTransaction(ctx, tx("1", 0, ""))
	require.NoError(t, err)
	_, err = data.WalletConnect.LogSessionConnected(ctx, wclog.SessionInput{Topic: "t1", DappName: "Uniswap"})
	require.NoError(t, err)
	_, err = data.WalletConnect.LogRequest(ctx, wclog.RequestInput{SessionTopic: "t1", RequestID: 1, Method: "personal_sign"})
	require.NoError(t, err)
	_, err = data.Balances.SaveBalance(ctx, syncstatus.BalanceInput{Address: wallet, ChainID: 1, NativeBalance: "1", NativeBalanceWei: "1"})
	require.NoError(t, err)
	_, err = data.Preferences.Set(ctx, "display.theme", "dark")
	require.NoError(t, err)

	key := syncstatus.Key{Type: syncstatus.TypeBalance, Address: wallet, ChainID: 1}
	state, err := offline.Fetch(ctx, data.Orchestrator, key, func(context.Context) (string, error) {
		return "1.0", nil
	})
	require.NoError(t, err)
	require.NotNil(t, state.Data)
	assert.Equal(t, "1.0", *state.Data)

	res, err := data.Wipe(ctx)
	require.NoError(t, err)
	assert.Equal(t, WipeResult{
		"address_book":            1,
		"token_list":              1,
		"transaction_cache":       1,
		"wc_sessions+wc_requests": 2,
		"sync_status":             1,
		"balance_snapshots":       1,
		"user_preferences":        1,
	}, res)

	theme, err := data.Preferences.Get(ctx, "display.theme")
	require.NoError(t, err)
	assert.JSONEq(t, `"system"`, string(theme), "wiped preferences fall back to defaults")

	status, err := data.SyncStatus.Status(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, status)
}
