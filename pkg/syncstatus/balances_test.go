package syncstatus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

const wallet = "0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaa"

func setupBalances(t *testing.T) (context.Context, *Balances, *testClock) {
	t.Helper()
	h := store.SetupTestHandle(t, &StatusDao{}, &BalanceDao{})
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return context.Background(), NewBalances(h, WithClock(clock.now)), clock
}

func ethBalance(chainID int64, amount, wei string) BalanceInput {
	return BalanceInput{
		Address:          wallet,
		ChainID:          chainID,
		NativeBalance:    amount,
		NativeBalanceWei: wei,
		NativePrice:      "3000",
	}
}

func TestBalances_SaveReplacesSnapshot(t *testing.T) {
	ctx, balances, clock := setupBalances(t)

	first, err := balances.SaveBalance(ctx, ethBalance(1, "1.5", "1500000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa-1", first.ID)
	assert.Equal(t, "3000", first.NativePrice)
	assert.Empty(t, first.TotalValueUSD)

	clock.advance(time.Minute)
	in := ethBalance(1, "2", "2000000000000000000")
	in.NativePrice = ""
	in.TotalValueUSD = "6000"
	second, err := balances.SaveBalance(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := balances.GetBalance(ctx, "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2", got.NativeBalance)
	assert.Empty(t, got.NativePrice)
	assert.Equal(t, "6000", got.TotalValueUSD)
	assert.Equal(t, clock.t, got.LastSyncAt.UTC())

	missing, err := balances.GetBalance(ctx, wallet, 137)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBalances_ListDeleteAndValidation(t *testing.T) {
	ctx, balances, _ := setupBalances(t)

	for _, chainID := range []int64{137, 1, 10} {
		_, err := balances.SaveBalance(ctx, ethBalance(chainID, "1", "1000000000000000000"))
		require.NoError(t, err)
	}

	all, err := balances.GetBalances(ctx, wallet)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{1, 10, 137}, []int64{all[0].ChainID, all[1].ChainID, all[2].ChainID})

	ok, err := balances.DeleteBalance(ctx, wallet, 10)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = balances.DeleteBalance(ctx, wallet, 10)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = balances.SaveBalance(ctx, ethBalance(1, "lots", "1"))
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	_, err = balances.SaveBalance(ctx, ethBalance(1, "1", "0x10"))
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))
	bad := ethBalance(1, "1", "1")
	bad.Address = "0x1234"
	_, err = balances.SaveBalance(ctx, bad)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))

	n, err := balances.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
