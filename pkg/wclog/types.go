// Package wclog keeps the audit trail of WalletConnect sessions and the
// signing requests made over them.
package wclog

import (
	"encoding/json"
	"time"
)

// SessionStatus is the lifecycle state of a session row.
type SessionStatus string

const (
	SessionActive       SessionStatus = "active"
	SessionDisconnected SessionStatus = "disconnected"
	SessionExpired      SessionStatus = "expired"
)

// RequestStatus is the lifecycle state of a request row. Only pending
// requests may change state.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
	RequestFailed   RequestStatus = "failed"
)

// Session is one connection to a dapp. A topic may be reused by later
// sessions, but at most one row per topic is active.
type Session struct {
	ID             string        `json:"id"`
	Topic          string        `json:"topic"`
	DappName       string        `json:"dapp_name"`
	DappURL        string        `json:"dapp_url,omitempty"`
	DappIcon       string        `json:"dapp_icon,omitempty"`
	Chains         []string      `json:"chains"`
	Accounts       []string      `json:"accounts"`
	Status         SessionStatus `json:"status"`
	ConnectedAt    time.Time     `json:"connected_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
	DisconnectedAt *time.Time    `json:"disconnected_at,omitempty"`
	ExpiresAt      *time.Time    `json:"expires_at,omitempty"`
}

// SessionInput is the input of LogSessionConnected.
type SessionInput struct {
	Topic     string `validate:"required"`
	DappName  string `validate:"required"`
	DappURL   string `validate:"omitempty,url"`
	DappIcon  string `validate:"omitempty,url"`
	Chains    []string
	Accounts  []string
	ExpiresAt *time.Time
}

// Request is one JSON-RPC request a dapp sent over a session.
type Request struct {
	ID           string          `json:"id"`
	SessionTopic string          `json:"session_topic"`
	RequestID    int64           `json:"request_id"`
	Method       string          `json:"method"`
	Params       json.RawMessage `json:"params,omitempty"`
	ChainID      *int64          `json:"chain_id,omitempty"`
	Status       RequestStatus   `json:"status"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	RequestedAt  time.Time       `json:"requested_at"`
	RespondedAt  *time.Time      `json:"responded_at,omitempty"`
}

// RequestInput is the input of LogRequest. Params is serialized as JSON.
type RequestInput struct {
	SessionTopic string `validate:"required"`
	RequestID    int64  `validate:"gte=0"`
	Method       string `validate:"required"`
	Params       any
	ChainID      *int64 `validate:"omitempty,gt=0"`
}

// CleanResult reports how many rows CleanOld removed.
type CleanResult struct {
	Sessions int64 `json:"sessions"`
	Requests int64 `json:"requests"`
}
