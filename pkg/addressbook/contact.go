// Package addressbook stores the user's saved contacts.
package addressbook

import "time"

// Contact is a saved address book entry.
type Contact struct {
	ID         string    `json:"id"`
	Address    string    `json:"address"`
	Name       string    `json:"name"`
	ChainID    int64     `json:"chain_id"`
	IsFavorite bool      `json:"is_favorite"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewContact is the input of AddContact.
type NewContact struct {
	Address    string `validate:"required,eth_addr"`
	Name       string `validate:"required,max=100"`
	ChainID    int64  `validate:"gte=0"`
	IsFavorite bool
	Notes      string `validate:"max=500"`
}

// ContactUpdate carries the fields UpdateContact changes. Nil fields are left as they are.
type ContactUpdate struct {
	Address    *string `validate:"omitempty,eth_addr"`
	Name       *string `validate:"omitempty,min=1,max=100"`
	ChainID    *int64  `validate:"omitempty,gte=0"`
	IsFavorite *bool
	Notes      *string `validate:"omitempty,max=500"`
}

// ListOptions filters ListContacts.
type ListOptions struct {
	FavoritesOnly bool
	ChainID       *int64
}

// ListOption is a functional option for listing contacts
type ListOption func(*ListOptions)

// FavoritesOnly restricts the listing to favorite contacts
func FavoritesOnly() ListOption {
	return func(opts *ListOptions) {
		opts.FavoritesOnly = true
	}
}

// OnChain restricts the listing to one chain
func OnChain(chainID int64) ListOption {
	return func(opts *ListOptions) {
		opts.ChainID = &chainID
	}
}
