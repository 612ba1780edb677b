package txcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

const secondsPerDay = 24 * 60 * 60

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository reads and writes cached transactions.
type Repository struct {
	store    *store.Handle
	validate *validator.Validate
	now      func() time.Time
}

// New creates a transaction cache repository over h.
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

// CreateLocalTransaction records a transaction the wallet just broadcast as
// pending. Recording the same hash on the same chain again returns the
// existing row unchanged.
func (r *Repository) CreateLocalTransaction(ctx context.Context, in Input) (*Transaction, error) {
	if err := r.validateInput(&in); err != nil {
		return nil, err
	}

	now := r.now()
	row := &TransactionDao{ID: ID(in.Hash, in.ChainID)}
	_, err := store.Upsert(ctx, r.store, row, func(row *TransactionDao, exists bool) (bool, error) {
		if exists {
			return false, nil
		}
		fill(row, &in, now)
		row.Status = string(StatusPending)
		row.IsLocal = true
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create local transaction: %w", err)
	}
	return toTransaction(row), nil
}

// SyncTransactions merges transactions fetched from a remote source. Unknown
// transactions are inserted. A known transaction is only rewritten when its
// status changed, which keeps local-only fields of optimistic rows.
func (r *Repository) SyncTransactions(ctx context.Context, rows []Input) (SyncResult, error) {
	for i := range rows {
		if err := r.validateInput(&rows[i]); err != nil {
			return SyncResult{}, err
		}
		if !rows[i].Status.Valid() {
			return SyncResult{}, apperrors.BadRequestError(nil, fmt.Sprintf("invalid status %q", rows[i].Status))
		}
	}

	now := r.now()
	var result SyncResult
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		result = SyncResult{}
		for i := range rows {
			in := &rows[i]
			wrote := false
			exists, err := store.UpsertTx(ctx, tx, &TransactionDao{ID: ID(in.Hash, in.ChainID)}, func(row *TransactionDao, exists bool) (bool, error) {
				if !exists {
					fill(row, in, now)
					row.Status = string(in.Status)
					wrote = true
					return true, nil
				}
				if row.Status == string(in.Status) {
					return false, nil
				}
				mergeRemote(row, in, now)
				wrote = true
				return true, nil
			})
			if err != nil {
				return err
			}
			switch {
			case !exists:
				result.Inserted++
			case wrote:
				result.Updated++
			default:
				result.Unchanged++
			}
		}
		return nil
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to sync transactions: %w", err)
	}
	return result, nil
}

// UpdateStatus moves a transaction to status in place. It returns nil when
// the transaction is not cached.
func (r *Repository) UpdateStatus(ctx context.Context, hash string, chainID int64, status Status) (*Transaction, error) {
	if !status.Valid() {
		return nil, apperrors.BadRequestError(nil, fmt.Sprintf("invalid status %q", status))
	}

	row := &TransactionDao{ID: ID(hash, chainID)}
	exists, err := store.Upsert(ctx, r.store, row, func(row *TransactionDao, exists bool) (bool, error) {
		if !exists || row.Status == string(status) {
			return false, nil
		}
		row.Status = string(status)
		row.UpdatedAt = store.Millis(r.now())
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update transaction status: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return toTransaction(row), nil
}

// GetTransaction returns a cached transaction, or nil.
func (r *Repository) GetTransaction(ctx context.Context, hash string, chainID int64) (*Transaction, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	dao := &TransactionDao{ID: ID(hash, chainID)}
	if err := db.NewSelect().Model(dao).WherePK().Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, "failed to get transaction")
	}
	return toTransaction(dao), nil
}

// GetByAddress returns transactions sent from or to address, newest first.
func (r *Repository) GetByAddress(ctx context.Context, address string, opts ...QueryOption) ([]*Transaction, error) {
	options := collect(opts)
	options.Address = &address
	return r.query(ctx, options)
}

// GetPendingTransactions returns pending transactions, newest first.
func (r *Repository) GetPendingTransactions(ctx context.Context, opts ...QueryOption) ([]*Transaction, error) {
	options := collect(opts)
	pending := StatusPending
	options.Status = &pending
	return r.query(ctx, options)
}

func (r *Repository) query(ctx context.Context, options *QueryOptions) ([]*Transaction, error) {
	if options.Limit < 0 || options.Offset < 0 {
		return nil, apperrors.BadRequestError(nil, "limit and offset must not be negative")
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var daos []TransactionDao
	q := db.NewSelect().Model(&daos)
	if options.Address != nil {
		address := chain.NormalizeAddress(*options.Address)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("from_address = ?", address).WhereOr("to_address = ?", address)
		})
	}
	if options.ChainID != nil {
		q = q.Where("chain_id = ?", *options.ChainID)
	}
	if options.Status != nil {
		q = q.Where("status = ?", string(*options.Status))
	}
	if options.Type != nil {
		q = q.Where("type = ?", string(*options.Type))
	}

	q = q.OrderExpr("timestamp DESC").OrderExpr("created_at DESC")
	if options.Limit > 0 {
		q = q.Limit(options.Limit)
	}
	if options.Offset > 0 {
		if options.Limit == 0 {
			// SQLite only accepts OFFSET after a LIMIT, and bun drops
			// non-positive limits.
			q = q.Limit(math.MaxInt32)
		}
		q = q.Offset(options.Offset)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to query transactions")
	}
	return toTransactions(daos), nil
}

// CleanOld deletes settled transactions older than daysOld days. Pending
// transactions are kept whatever their age.
func (r *Repository) CleanOld(ctx context.Context, daysOld int) (int64, error) {
	if daysOld <= 0 {
		return 0, apperrors.BadRequestError(nil, "daysOld must be positive")
	}
	cutoff := r.now().Unix() - int64(daysOld)*secondsPerDay

	var deleted int64
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*TransactionDao)(nil)).
			Where("status != ?", string(StatusPending)).
			Where("timestamp < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clean old transactions: %w", err)
	}
	return deleted, nil
}

// DeleteAll removes every cached transaction.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return r.store.DeleteAll(ctx, (*TransactionDao)(nil))
}

func (r *Repository) validateInput(in *Input) error {
	if err := r.validate.Struct(in); err != nil {
		return apperrors.BadRequestError(err, "invalid transaction")
	}
	if !chain.ValidateTxHash(in.Hash) {
		return apperrors.BadRequestError(nil, fmt.Sprintf("invalid transaction hash %q", in.Hash))
	}
	if !in.Type.Valid() {
		return apperrors.BadRequestError(nil, fmt.Sprintf("invalid transaction type %q", in.Type))
	}
	return nil
}

func fill(row *TransactionDao, in *Input, now time.Time) {
	row.Hash = chain.NormalizeHash(in.Hash)
	row.ChainID = in.ChainID
	row.FromAddress = chain.NormalizeAddress(in.From)
	row.ToAddress = chain.NormalizeAddress(in.To)
	row.Value = in.Value
	row.ValueWei = in.ValueWei
	row.GasPrice = optionalString(in.GasPrice)
	row.GasUsed = optionalString(in.GasUsed)
	row.Fee = optionalString(in.Fee)
	row.Nonce = in.Nonce
	row.Timestamp = in.Timestamp
	if row.Timestamp == 0 {
		row.Timestamp = now.Unix()
	}
	row.Type = string(in.Type)
	if in.TokenAddress != "" {
		row.TokenAddress = optionalString(chain.NormalizeAddress(in.TokenAddress))
	}
	row.TokenSymbol = optionalString(in.TokenSymbol)
	row.BlockNumber = in.BlockNumber
	row.CreatedAt = store.Millis(now)
	row.UpdatedAt = row.CreatedAt
}

// mergeRemote copies the settlement fields a remote source knows better than
// the optimistic local row.
func mergeRemote(row *TransactionDao, in *Input, now time.Time) {
	row.Status = string(in.Status)
	if in.GasUsed != "" {
		row.GasUsed = optionalString(in.GasUsed)
	}
	if in.Fee != "" {
		row.Fee = optionalString(in.Fee)
	}
	if in.BlockNumber != nil {
		row.BlockNumber = in.BlockNumber
	}
	if in.Timestamp != 0 {
		row.Timestamp = in.Timestamp
	}
	row.UpdatedAt = store.Millis(now)
}
