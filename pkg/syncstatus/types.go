// Package syncstatus tracks, per data domain, wallet address and chain, when
// data was last fetched, whether the last fetch worked, and the last good
// payload. It also caches native balance snapshots.
package syncstatus

import (
	"fmt"
	"time"

	"github.com/chainsafe/wallet-sync/pkg/chain"
)

// Well-known sync types. Callers may use any other non-empty type.
const (
	TypeBalance      = "balance"
	TypeTokens       = "tokens"
	TypeTransactions = "transactions"
	TypePrices       = "prices"
)

// DefaultMaxAge is the staleness threshold when none is configured.
const DefaultMaxAge = 60 * time.Second

// State is the sync state of one key.
type State string

const (
	StateSynced  State = "synced"
	StateSyncing State = "syncing"
	StateError   State = "error"
)

// Key identifies one tracked dataset.
type Key struct {
	Type    string
	Address string
	ChainID int64
}

// String composes the opaque storage key. The address is lower-cased so
// lookups ignore case.
func (k Key) String() string {
	return fmt.Sprintf("%s-%s-%d", k.Type, chain.NormalizeAddress(k.Address), k.ChainID)
}

// Status is a snapshot of one key's sync state.
type Status struct {
	Key          string    `json:"key"`
	Type         string    `json:"type"`
	Address      string    `json:"address"`
	ChainID      int64     `json:"chain_id"`
	State        State     `json:"state"`
	LastSyncAt   time.Time `json:"last_sync_at"`
	ErrorMessage string    `json:"error_message,omitempty"`
	HasData      bool      `json:"has_data"`
}

// BalanceSnapshot is the cached native-coin balance of an address on a chain.
type BalanceSnapshot struct {
	ID               string    `json:"id"`
	Address          string    `json:"address"`
	ChainID          int64     `json:"chain_id"`
	NativeBalance    string    `json:"native_balance"`
	NativeBalanceWei string    `json:"native_balance_wei"`
	NativePrice      string    `json:"native_price,omitempty"`
	TotalValueUSD    string    `json:"total_value_usd,omitempty"`
	LastSyncAt       time.Time `json:"last_sync_at"`
}

// BalanceInput is the input of SaveBalance.
type BalanceInput struct {
	Address          string `validate:"required,eth_addr"`
	ChainID          int64  `validate:"gt=0"`
	NativeBalance    string `validate:"required"`
	NativeBalanceWei string `validate:"required,numeric"`
	NativePrice      string
	TotalValueUSD    string
}

// BalanceID composes the snapshot key from address and chain.
func BalanceID(address string, chainID int64) string {
	return fmt.Sprintf("%s-%d", chain.NormalizeAddress(address), chainID)
}
