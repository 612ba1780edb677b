package tokenlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

// ErrSpamToken is returned when a spam token is asked to become visible.
var ErrSpamToken = errors.New("token is marked as spam")

// View selects one partition of a chain's token list.
type View string

const (
	ViewAll     View = "all"
	ViewVisible View = "visible"
	ViewHidden  View = "hidden"
	ViewSpam    View = "spam"
)

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository reads and writes the token list.
type Repository struct {
	store    *store.Handle
	validate *validator.Validate
	now      func() time.Time
}

// New creates a token list repository over h.
func New(h *store.Handle, opts ...Option) *Repository {
	r := &Repository{
		store:    h,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddToken inserts a token or refreshes the metadata of an existing one.
// Visibility flags, sort order and cached balances of an existing token are kept.
// New tokens are appended to the end of their chain's list.
func (r *Repository) AddToken(ctx context.Context, in NewToken) (*Token, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid token")
	}

	now := store.Millis(r.now())
	row := &TokenDao{ID: ID(in.Address, in.ChainID)}
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := store.UpsertTx(ctx, tx, row, func(row *TokenDao, exists bool) (bool, error) {
			if !exists {
				next, err := nextSortOrder(ctx, tx, in.ChainID)
				if err != nil {
					return false, err
				}
				row.Address = chain.NormalizeAddress(in.Address)
				row.ChainID = in.ChainID
				row.IsCustom = in.IsCustom
				row.SortOrder = next
				row.CreatedAt = now
			}
			row.Symbol = strings.TrimSpace(in.Symbol)
			row.Name = strings.TrimSpace(in.Name)
			row.Decimals = in.Decimals
			if in.LogoURL != "" {
				row.LogoURL = optionalString(in.LogoURL)
			}
			row.UpdatedAt = now
			return true, nil
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add token: %w", err)
	}
	return toToken(row), nil
}

// GetToken returns a token, or nil.
func (r *Repository) GetToken(ctx context.Context, address string, chainID int64) (*Token, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	dao := &TokenDao{ID: ID(address, chainID)}
	if err := db.NewSelect().Model(dao).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, "failed to get token")
	}
	return toToken(dao), nil
}

// GetTokens returns the chain's token list in the requested view, in sort order.
func (r *Repository) GetTokens(ctx context.Context, chainID int64, view View) ([]*Token, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var daos []TokenDao
	q := db.NewSelect().
		Model(&daos).
		Where("chain_id = ?", chainID)

	switch view {
	case ViewAll, "":
	case ViewVisible:
		q = q.Where("is_hidden = ?", false).Where("is_spam = ?", false)
	case ViewHidden:
		q = q.Where("is_hidden = ?", true).Where("is_spam = ?", false)
	case ViewSpam:
		q = q.Where("is_spam = ?", true)
	default:
		return nil, apperrors.BadRequestError(nil, fmt.Sprintf("unknown token view %q", view))
	}

	if err := q.OrderExpr("sort_order ASC").OrderExpr("symbol ASC").Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to list tokens")
	}
	return toTokens(daos), nil
}

// GetVisibleTokens returns tokens that are neither hidden nor spam.
func (r *Repository) GetVisibleTokens(ctx context.Context, chainID int64) ([]*Token, error) {
	return r.GetTokens(ctx, chainID, ViewVisible)
}

// GetHiddenTokens returns tokens the user hid. Spam tokens are hidden too but
// are left out here; list them with GetSpamTokens.
func (r *Repository) GetHiddenTokens(ctx context.Context, chainID int64) ([]*Token, error) {
	return r.GetTokens(ctx, chainID, ViewHidden)
}

// GetSpamTokens returns tokens marked as spam.
func (r *Repository) GetSpamTokens(ctx context.Context, chainID int64) ([]*Token, error) {
	return r.GetTokens(ctx, chainID, ViewSpam)
}

// HideToken hides a token. It returns false when the token does not exist.
func (r *Repository) HideToken(ctx context.Context, address string, chainID int64) (bool, error) {
	return r.setFlags(ctx, address, chainID, "hide token", func(row *TokenDao) (bool, error) {
		if row.IsHidden {
			return false, nil
		}
		row.IsHidden = true
		return true, nil
	})
}

// ShowToken makes a hidden token visible again. Spam tokens stay hidden until
// UnmarkSpam.
func (r *Repository) ShowToken(ctx context.Context, address string, chainID int64) (bool, error) {
	return r.setFlags(ctx, address, chainID, "show token", func(row *TokenDao) (bool, error) {
		if row.IsSpam {
			return false, apperrors.ConflictError(ErrSpamToken, ErrSpamToken.Error())
		}
		if !row.IsHidden {
			return false, nil
		}
		row.IsHidden = false
		return true, nil
	})
}

// MarkAsSpam flags a token as spam, which also hides it.
func (r *Repository) MarkAsSpam(ctx context.Context, address string, chainID int64) (bool, error) {
	return r.setFlags(ctx, address, chainID, "mark token as spam", func(row *TokenDao) (bool, error) {
		if row.IsSpam && row.IsHidden {
			return false, nil
		}
		row.IsSpam = true
		row.IsHidden = true
		return true, nil
	})
}

// UnmarkSpam clears the spam flag and makes the token visible.
func (r *Repository) UnmarkSpam(ctx context.Context, address string, chainID int64) (bool, error) {
	return r.setFlags(ctx, address, chainID, "unmark spam token", func(row *TokenDao) (bool, error) {
		if !row.IsSpam && !row.IsHidden {
			return false, nil
		}
		row.IsSpam = false
		row.IsHidden = false
		return true, nil
	})
}

func (r *Repository) setFlags(
	ctx context.Context,
	address string,
	chainID int64,
	action string,
	apply func(row *TokenDao) (bool, error),
) (bool, error) {
	exists, err := store.Upsert(ctx, r.store, &TokenDao{ID: ID(address, chainID)}, func(row *TokenDao, exists bool) (bool, error) {
		if !exists {
			return false, nil
		}
		changed, err := apply(row)
		if changed {
			row.UpdatedAt = store.Millis(r.now())
		}
		return changed, err
	})
	if err != nil {
		return false, fmt.Errorf("failed to %s: %w", action, err)
	}
	return exists, nil
}

// UpdateBalance caches a balance reading on the token. It returns false when
// the token does not exist.
func (r *Repository) UpdateBalance(ctx context.Context, upd BalanceUpdate) (bool, error) {
	n, err := r.UpdateBalances(ctx, []BalanceUpdate{upd})
	return n == 1, err
}

// UpdateBalances caches several balance readings in one write scope and
// returns how many tokens were updated. Unknown tokens are skipped.
func (r *Repository) UpdateBalances(ctx context.Context, updates []BalanceUpdate) (int, error) {
	for i := range updates {
		if err := r.validateBalance(&updates[i]); err != nil {
			return 0, err
		}
	}

	now := store.Millis(r.now())
	var updated int
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		for _, upd := range updates {
			exists, err := store.UpsertTx(ctx, tx, &TokenDao{ID: ID(upd.Address, upd.ChainID)}, func(row *TokenDao, exists bool) (bool, error) {
				if !exists {
					return false, nil
				}
				row.LastBalance = optionalString(upd.Balance)
				row.LastBalanceRaw = optionalString(upd.BalanceRaw)
				if upd.Price != "" {
					row.LastPrice = optionalString(upd.Price)
				}
				if upd.PriceChange24h != "" {
					row.LastPriceChange24h = optionalString(upd.PriceChange24h)
				}
				row.LastSyncAt = &now
				row.UpdatedAt = now
				return true, nil
			})
			if err != nil {
				return err
			}
			if exists {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to update token balances: %w", err)
	}
	return updated, nil
}

func (r *Repository) validateBalance(upd *BalanceUpdate) error {
	if err := r.validate.Struct(upd); err != nil {
		return apperrors.BadRequestError(err, "invalid balance update")
	}
	for name, value := range map[string]string{
		"balance":          upd.Balance,
		"price":            upd.Price,
		"price_change_24h": upd.PriceChange24h,
	} {
		if value == "" {
			continue
		}
		if _, err := decimal.NewFromString(value); err != nil {
			return apperrors.BadRequestError(err, fmt.Sprintf("invalid %s %q", name, value))
		}
	}
	return nil
}

// SetSortOrder orders the chain's tokens as listed in addresses. Tokens not
// listed keep their position after the listed ones.
func (r *Repository) SetSortOrder(ctx context.Context, chainID int64, addresses []string) error {
	now := store.Millis(r.now())
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		for i, address := range addresses {
			if _, err := tx.NewUpdate().
				Model((*TokenDao)(nil)).
				Set("sort_order = ?", i).
				Set("updated_at = ?", now).
				Where("id = ?", ID(address, chainID)).
				Exec(ctx); err != nil {
				return err
			}
		}
		if len(addresses) == 0 {
			return nil
		}

		listed := make([]string, len(addresses))
		for i, address := range addresses {
			listed[i] = ID(address, chainID)
		}
		_, err := tx.NewUpdate().
			Model((*TokenDao)(nil)).
			Set("sort_order = sort_order + ?", len(addresses)).
			Where("chain_id = ?", chainID).
			Where("id NOT IN (?)", bun.In(listed)).
			Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to set token sort order: %w", err)
	}
	return nil
}

// DeleteToken removes a user-added token. Built-in tokens can only be hidden,
// so it returns false for them and for unknown tokens.
func (r *Repository) DeleteToken(ctx context.Context, address string, chainID int64) (bool, error) {
	var deleted bool
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*TokenDao)(nil)).
			Where("id = ?", ID(address, chainID)).
			Where("is_custom = ?", true).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete token: %w", err)
	}
	return deleted, nil
}

// DeleteAll removes every token of every chain.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return r.store.DeleteAll(ctx, (*TokenDao)(nil))
}

func nextSortOrder(ctx context.Context, tx bun.Tx, chainID int64) (int, error) {
	var maxOrder sql.NullInt64
	err := tx.NewSelect().
		Model((*TokenDao)(nil)).
		ColumnExpr("MAX(sort_order)").
		Where("chain_id = ?", chainID).
		Scan(ctx, &maxOrder)
	if err != nil {
		return 0, err
	}
	if !maxOrder.Valid {
		return 0, nil
	}
	return int(maxOrder.Int64) + 1, nil
}
