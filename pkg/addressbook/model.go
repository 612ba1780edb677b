package addressbook

import (
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// ContactDao is a data access object that maps directly to the 'address_book' table.
type ContactDao struct {
	bun.BaseModel `bun:"table:address_book,alias:ab"`
	ID            string  `bun:"id,pk,type:varchar(36)"`
	Address       string  `bun:"address,unique,notnull,type:varchar(42)"`
	Name          string  `bun:"name,notnull"`
	ChainID       int64   `bun:"chain_id,notnull"`
	IsFavorite    bool    `bun:"is_favorite,notnull"`
	Notes         *string `bun:"notes"`
	CreatedAt     int64   `bun:"created_at,notnull"`
	UpdatedAt     int64   `bun:"updated_at,notnull"`
}

func toContact(dao *ContactDao) *Contact {
	c := &Contact{
		ID:         dao.ID,
		Address:    dao.Address,
		Name:       dao.Name,
		ChainID:    dao.ChainID,
		IsFavorite: dao.IsFavorite,
		CreatedAt:  store.FromMillis(dao.CreatedAt),
		UpdatedAt:  store.FromMillis(dao.UpdatedAt),
	}
	if dao.Notes != nil {
		c.Notes = *dao.Notes
	}
	return c
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
