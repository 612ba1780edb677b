package addressbook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

// ErrDuplicateAddress is returned when a contact with the same address already exists.
var ErrDuplicateAddress = errors.New("contact with this address already exists")

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository reads and writes address book contacts.
type Repository struct {
	store    *store.Handle
	validate *validator.Validate
	now      func() time.Time
}

// New creates an address book repository over h.
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

// AddContact saves a new contact. The address is unique regardless of case.
func (r *Repository) AddContact(ctx context.Context, in NewContact) (*Contact, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid contact")
	}

	now := store.Millis(r.now())
	dao := &ContactDao{
		ID:         uuid.NewString(),
		Address:    chain.NormalizeAddress(in.Address),
		Name:       strings.TrimSpace(in.Name),
		ChainID:    in.ChainID,
		IsFavorite: in.IsFavorite,
		Notes:      optionalString(in.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := ensureAddressFree(ctx, tx, dao.Address, ""); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(dao).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add contact: %w", err)
	}
	return toContact(dao), nil
}

// UpdateContact applies upd to the contact with id. It returns nil when the
// contact does not exist.
func (r *Repository) UpdateContact(ctx context.Context, id string, upd ContactUpdate) (*Contact, error) {
	if err := r.validate.Struct(upd); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid contact update")
	}

	var updated *ContactDao
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		dao, err := getContact(ctx, tx, id)
		if err != nil || dao == nil {
			return err
		}

		if upd.Address != nil {
			address := chain.NormalizeAddress(*upd.Address)
			if address != dao.Address {
				if err := ensureAddressFree(ctx, tx, address, dao.ID); err != nil {
					return err
				}
				dao.Address = address
			}
		}
		if upd.Name != nil {
			dao.Name = strings.TrimSpace(*upd.Name)
		}
		if upd.ChainID != nil {
			dao.ChainID = *upd.ChainID
		}
		if upd.IsFavorite != nil {
			dao.IsFavorite = *upd.IsFavorite
		}
		if upd.Notes != nil {
			dao.Notes = optionalString(*upd.Notes)
		}
		dao.UpdatedAt = store.Millis(r.now())

		if _, err := tx.NewUpdate().Model(dao).WherePK().Exec(ctx); err != nil {
			return err
		}
		updated = dao
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update contact: %w", err)
	}
	if updated == nil {
		return nil, nil
	}
	return toContact(updated), nil
}

// ToggleFavorite flips the favorite flag. It returns nil when the contact does not exist.
func (r *Repository) ToggleFavorite(ctx context.Context, id string) (*Contact, error) {
	var updated *ContactDao
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		dao, err := getContact(ctx, tx, id)
		if err != nil || dao == nil {
			return err
		}
		dao.IsFavorite = !dao.IsFavorite
		dao.UpdatedAt = store.Millis(r.now())
		if _, err := tx.NewUpdate().Model(dao).Column("is_favorite", "updated_at").WherePK().Exec(ctx); err != nil {
			return err
		}
		updated = dao
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	if updated == nil {
		return nil, nil
	}
	return toContact(updated), nil
}

// DeleteContact removes the contact and reports whether it existed.
func (r *Repository) DeleteContact(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*ContactDao)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		deleted = n > 0
		return err
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete contact: %w", err)
	}
	return deleted, nil
}

// GetContact returns the contact with id, or nil.
func (r *Repository) GetContact(ctx context.Context, id string) (*Contact, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	dao, err := getContact(ctx, db, id)
	if err != nil {
		return nil, apperrors.StorageError(err, "failed to get contact")
	}
	if dao == nil {
		return nil, nil
	}
	return toContact(dao), nil
}

// GetByAddress returns the contact saved for address, or nil.
func (r *Repository) GetByAddress(ctx context.Context, address string) (*Contact, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	dao := new(ContactDao)
	err = db.NewSelect().
		Model(dao).
		Where("address = ?", chain.NormalizeAddress(address)).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.StorageError(err, "failed to get contact by address")
	}
	return toContact(dao), nil
}

// ListContacts returns contacts with favorites first, then by name.
func (r *Repository) ListContacts(ctx context.Context, opts ...ListOption) ([]*Contact, error) {
	options := &ListOptions{}
	for _, opt := range opts {
		opt(options)
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var daos []ContactDao
	query := db.NewSelect().Model(&daos)
	if options.FavoritesOnly {
		query = query.Where("is_favorite = ?", true)
	}
	if options.ChainID != nil {
		query = query.Where("chain_id = ?", *options.ChainID)
	}
	if err := orderContacts(query).Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to list contacts")
	}
	return toContacts(daos), nil
}

// SearchContacts matches query against contact names and addresses, ignoring case.
func (r *Repository) SearchContacts(ctx context.Context, query string) ([]*Contact, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return r.ListContacts(ctx)
	}

	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	var daos []ContactDao
	q := db.NewSelect().
		Model(&daos).
		WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where(`lower(name) LIKE ? ESCAPE '!'`, pattern).
				WhereOr(`address LIKE ? ESCAPE '!'`, pattern)
		})
	if err := orderContacts(q).Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to search contacts")
	}
	return toContacts(daos), nil
}

// DeleteAll removes every contact.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	return r.store.DeleteAll(ctx, (*ContactDao)(nil))
}

func getContact(ctx context.Context, db bun.IDB, id string) (*ContactDao, error) {
	dao := new(ContactDao)
	err := db.NewSelect().Model(dao).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dao, nil
}

// ensureAddressFree fails with a conflict when address belongs to a contact other than exceptID.
func ensureAddressFree(ctx context.Context, tx bun.Tx, address, exceptID string) error {
	q := tx.NewSelect().
		Model((*ContactDao)(nil)).
		Where("address = ?", address)
	if exceptID != "" {
		q = q.Where("id != ?", exceptID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.ConflictError(ErrDuplicateAddress, ErrDuplicateAddress.Error())
	}
	return nil
}

func orderContacts(q *bun.SelectQuery) *bun.SelectQuery {
	return q.OrderExpr("is_favorite DESC").OrderExpr("name COLLATE NOCASE ASC")
}

func escapeLike(s string) string {
	return strings.NewReplacer("!", "!!", "%", "!%", "_", "!_").Replace(s)
}

func toContacts(daos []ContactDao) []*Contact {
	contacts := make([]*Contact, len(daos))
	for i := range daos {
		contacts[i] = toContact(&daos[i])
	}
	return contacts
}
