package wclog

import (
	"encoding/json"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// SessionDao is a data access object that maps directly to the 'wc_sessions' table.
type SessionDao struct {
	bun.BaseModel  `bun:"table:wc_sessions,alias:ws"`
	ID             string  `bun:"id,pk,type:varchar(36)"`
	Topic          string  `bun:"topic,notnull"`
	DappName       string  `bun:"dapp_name,notnull"`
	DappURL        *string `bun:"dapp_url"`
	DappIcon       *string `bun:"dapp_icon"`
	Chains         string  `bun:"chains,notnull"`
	Accounts       string  `bun:"accounts,notnull"`
	Status         string  `bun:"status,notnull,type:varchar(16)"`
	ConnectedAt    int64   `bun:"connected_at,notnull"`
	UpdatedAt      int64   `bun:"updated_at,notnull"`
	DisconnectedAt *int64  `bun:"disconnected_at"`
	ExpiresAt      *int64  `bun:"expires_at"`
}

// RequestDao is a data access object that maps directly to the 'wc_requests' table.
type RequestDao struct {
	bun.BaseModel `bun:"table:wc_requests,alias:wr"`
	ID            string  `bun:"id,pk,type:varchar(36)"`
	SessionTopic  string  `bun:"session_topic,notnull"`
	RequestID     int64   `bun:"request_id,notnull"`
	Method        string  `bun:"method,notnull"`
	Params        *string `bun:"params"`
	ChainID       *int64  `bun:"chain_id"`
	Status        string  `bun:"status,notnull,type:varchar(16)"`
	Result        *string `bun:"result"`
	ErrorMessage  *string `bun:"error_message"`
	RequestedAt   int64   `bun:"requested_at,notnull"`
	RespondedAt   *int64  `bun:"responded_at"`
}

func toSession(dao *SessionDao) (*Session, error) {
	s := &Session{
		ID:             dao.ID,
		Topic:          dao.Topic,
		DappName:       dao.DappName,
		Status:         SessionStatus(dao.Status),
		ConnectedAt:    store.FromMillis(dao.ConnectedAt),
		UpdatedAt:      store.FromMillis(dao.UpdatedAt),
		DisconnectedAt: store.OptionalTime(dao.DisconnectedAt),
		ExpiresAt:      store.OptionalTime(dao.ExpiresAt),
	}
	if dao.DappURL != nil {
		s.DappURL = *dao.DappURL
	}
	if dao.DappIcon != nil {
		s.DappIcon = *dao.DappIcon
	}
	if err := json.Unmarshal([]byte(dao.Chains), &s.Chains); err != nil {
		return nil, fmt.Errorf("failed to decode session chains: %w", err)
	}
	if err := json.Unmarshal([]byte(dao.Accounts), &s.Accounts); err != nil {
		return nil, fmt.Errorf("failed to decode session accounts: %w", err)
	}
	return s, nil
}

func toSessions(daos []SessionDao) ([]*Session, error) {
	sessions := make([]*Session, len(daos))
	for i := range daos {
		s, err := toSession(&daos[i])
		if err != nil {
			return nil, err
		}
		sessions[i] = s
	}
	return sessions, nil
}

func toRequest(dao *RequestDao) *Request {
	req := &Request{
		ID:           dao.ID,
		SessionTopic: dao.SessionTopic,
		RequestID:    dao.RequestID,
		Method:       dao.Method,
		ChainID:      dao.ChainID,
		Status:       RequestStatus(dao.Status),
		RequestedAt:  store.FromMillis(dao.RequestedAt),
		RespondedAt:  store.OptionalTime(dao.RespondedAt),
	}
	if dao.Params != nil {
		req.Params = json.RawMessage(*dao.Params)
	}
	if dao.Result != nil {
		req.Result = json.RawMessage(*dao.Result)
	}
	if dao.ErrorMessage != nil {
		req.ErrorMessage = *dao.ErrorMessage
	}
	return req
}

func toRequests(daos []RequestDao) []*Request {
	reqs := make([]*Request, len(daos))
	for i := range daos {
		reqs[i] = toRequest(&daos[i])
	}
	return reqs
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// encodePayload serializes v. A nil value stays absent.
func encodePayload(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("payload is not valid JSON")
		}
		s := string(raw)
		return &s, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(raw)
	return &s, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
