package syncstatus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

// Balances reads and writes native balance snapshots.
type Balances struct {
	store    *store.Handle
	validate *validator.Validate
	now      func() time.Time
}

// NewBalances creates a balance snapshot repository over h.
func NewBalances(h *store.Handle, opts ...Option) *Balances {
	o := buildOptions(opts)
	return &Balances{
		store:    h,
		validate: validator.New(),
		now:      o.now,
	}
}

// SaveBalance stores the latest balance of an address on a chain, replacing
// the previous snapshot.
func (b *Balances) SaveBalance(ctx context.Context, in BalanceInput) (*BalanceSnapshot, error) {
	if err := b.validate.Struct(in); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid balance snapshot")
	}
	for name, value := range map[string]string{
		"native_balance":  in.NativeBalance,
		"native_price":    in.NativePrice,
		"total_value_usd": in.TotalValueUSD,
	} {
		if value == "" {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return nil, apperrors.BadRequestError(err, fmt.Sprintf("invalid %s %q", name, value))
		}
	}

	row := &BalanceDao{ID: BalanceID(in.Address, in.ChainID)}
	_, err := store.Upsert(ctx, b.store, row, func(row *BalanceDao, exists bool) (bool, error) {
		row.Address = chain.NormalizeAddress(in.Address)
		row.ChainID = in.ChainID
		row.NativeBalance = in.NativeBalance
		row.NativeBalanceWei = in.NativeBalanceWei
		row.NativePrice = optionalString(in.NativePrice)
		row.TotalValueUSD = optionalString(in.TotalValueUSD)
		row.LastSyncAt = store.Millis(b.now())
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save balance: %w", err)
	}
	return toBalance(row), nil
}

// GetBalance returns the snapshot of address on chainID, or nil.
func (b *Balances) GetBalance(ctx context.Context, address string, chainID int64) (*BalanceSnapshot, error) {
	db, err := b.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	row := &BalanceDao{ID: BalanceID(address, chainID)}
	if err := db.NewSelect().Model(row).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, "failed to get balance")
	}
	return toBalance(row), nil
}

// GetBalances returns the snapshots of address on every chain, by chain id.
func (b *Balances) GetBalances(ctx context.Context, address string) ([]*BalanceSnapshot, error) {
	db, err := b.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var rows []BalanceDao
	err = db.NewSelect().
		Model(&rows).
		Where("address = ?", chain.NormalizeAddress(address)).
		OrderExpr("chain_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, apperrors.StorageError(err, "failed to list balances")
	}

	out := make([]*BalanceSnapshot, len(rows))
	for i := range rows {
		out[i] = toBalance(&rows[i])
	}
	return out, nil
}

// DeleteBalance removes one snapshot and reports whether it existed.
func (b *Balances) DeleteBalance(ctx context.Context, address string, chainID int64) (bool, error) {
	var deleted bool
	err := b.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().Model(&BalanceDao{ID: BalanceID(address, chainID)}).WherePK().Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete balance: %w", err)
	}
	return deleted, nil
}

// DeleteAll removes every snapshot.
func (b *Balances) DeleteAll(ctx context.Context) (int64, error) {
	return b.store.DeleteAll(ctx, (*BalanceDao)(nil))
}
