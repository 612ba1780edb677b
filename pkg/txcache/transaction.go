// Package txcache caches the wallet's transaction history, including
// optimistic rows for transactions the wallet just broadcast.
package txcache

import (
	"fmt"
	"time"

	"github.com/chainsafe/wallet-sync/pkg/chain"
)

// Status is the lifecycle state of a cached transaction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Type classifies a transaction relative to the wallet.
type Type string

const (
	TypeSend     Type = "send"
	TypeReceive  Type = "receive"
	TypeSwap     Type = "swap"
	TypeApprove  Type = "approve"
	TypeContract Type = "contract"
)

// Valid reports whether t is a known type.
func (t Type) Valid() bool {
	switch t {
	case TypeSend, TypeReceive, TypeSwap, TypeApprove, TypeContract:
		return true
	}
	return false
}

// Transaction is a cached transaction. Timestamp is in Unix seconds.
type Transaction struct {
	ID           string    `json:"id"`
	Hash         string    `json:"hash"`
	ChainID      int64     `json:"chain_id"`
	From         string    `json:"from"`
	To           string    `json:"to"`
	Value        string    `json:"value"`
	ValueWei     string    `json:"value_wei"`
	GasPrice     string    `json:"gas_price,omitempty"`
	GasUsed      string    `json:"gas_used,omitempty"`
	Fee          string    `json:"fee,omitempty"`
	Nonce        *int64    `json:"nonce,omitempty"`
	Timestamp    int64     `json:"timestamp"`
	Status       Status    `json:"status"`
	Type         Type      `json:"type"`
	IsLocal      bool      `json:"is_local"`
	TokenAddress string    `json:"token_address,omitempty"`
	TokenSymbol  string    `json:"token_symbol,omitempty"`
	BlockNumber  *int64    `json:"block_number,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Input describes a transaction to cache. CreateLocalTransaction ignores
// Status; SyncTransactions requires it. A zero Timestamp means now.
type Input struct {
	Hash         string `validate:"required"`
	ChainID      int64  `validate:"gt=0"`
	From         string `validate:"required,eth_addr"`
	To           string `validate:"omitempty,eth_addr"`
	Value        string
	ValueWei     string `validate:"omitempty,numeric"`
	GasPrice     string
	GasUsed      string
	Fee          string
	Nonce        *int64 `validate:"omitempty,gte=0"`
	Timestamp    int64  `validate:"gte=0"`
	Status       Status
	Type         Type   `validate:"required"`
	TokenAddress string `validate:"omitempty,eth_addr"`
	TokenSymbol  string
	BlockNumber  *int64 `validate:"omitempty,gte=0"`
}

// SyncResult reports what SyncTransactions wrote.
type SyncResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// ID composes the transaction key from hash and chain.
func ID(hash string, chainID int64) string {
	return fmt.Sprintf("%s-%d", chain.NormalizeHash(hash), chainID)
}
