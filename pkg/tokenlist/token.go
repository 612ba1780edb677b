// Package tokenlist keeps the per-chain list of tokens shown in the wallet,
// with user visibility flags and a denormalized balance cache.
package tokenlist

import (
	"fmt"
	"time"

	"github.com/chainsafe/wallet-sync/pkg/chain"
)

// Token is one entry of a chain's token list.
type Token struct {
	ID                 string     `json:"id"`
	Address            string     `json:"address"`
	ChainID            int64      `json:"chain_id"`
	Symbol             string     `json:"symbol"`
	Name               string     `json:"name"`
	Decimals           int        `json:"decimals"`
	LogoURL            string     `json:"logo_url,omitempty"`
	IsHidden           bool       `json:"is_hidden"`
	IsSpam             bool       `json:"is_spam"`
	IsCustom           bool       `json:"is_custom"`
	SortOrder          int        `json:"sort_order"`
	LastBalance        string     `json:"last_balance,omitempty"`
	LastBalanceRaw     string     `json:"last_balance_raw,omitempty"`
	LastPrice          string     `json:"last_price,omitempty"`
	LastPriceChange24h string     `json:"last_price_change_24h,omitempty"`
	LastSyncAt         *time.Time `json:"last_sync_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// NewToken is the input of AddToken.
type NewToken struct {
	Address  string `validate:"required,eth_addr"`
	ChainID  int64  `validate:"gt=0"`
	Symbol   string `validate:"required,max=32"`
	Name     string `validate:"max=100"`
	Decimals int    `validate:"gte=0,lte=36"`
	LogoURL  string `validate:"omitempty,url"`
	IsCustom bool
}

// BalanceUpdate is a fresh balance reading for one token. Price fields are
// optional; an empty value keeps the cached one.
type BalanceUpdate struct {
	Address        string `validate:"required,eth_addr"`
	ChainID        int64  `validate:"gt=0"`
	Balance        string `validate:"required"`
	BalanceRaw     string `validate:"required,numeric"`
	Price          string
	PriceChange24h string
}

// ID composes the token key from address and chain.
func ID(address string, chainID int64) string {
	return fmt.Sprintf("%s-%d", chain.NormalizeAddress(address), chainID)
}
