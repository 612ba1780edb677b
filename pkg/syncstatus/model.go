package syncstatus

import (
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// StatusDao is a data access object that maps directly to the 'sync_status' table.
type StatusDao struct {
	bun.BaseModel `bun:"table:sync_status,alias:ss"`
	Key           string  `bun:"key,pk"`
	Type          string  `bun:"type,notnull"`
	Address       string  `bun:"address,notnull,type:varchar(42)"`
	ChainID       int64   `bun:"chain_id,notnull"`
	LastSyncAt    int64   `bun:"last_sync_at,notnull"`
	Status        string  `bun:"status,notnull,type:varchar(16)"`
	ErrorMessage  *string `bun:"error_message"`
	Data          *string `bun:"data"`
}

// BalanceDao is a data access object that maps directly to the 'balance_snapshots' table.
type BalanceDao struct {
	bun.BaseModel    `bun:"table:balance_snapshots,alias:bs"`
	ID               string  `bun:"id,pk"`
	Address          string  `bun:"address,notnull,type:varchar(42)"`
	ChainID          int64   `bun:"chain_id,notnull"`
	NativeBalance    string  `bun:"native_balance,notnull"`
	NativeBalanceWei string  `bun:"native_balance_wei,notnull"`
	NativePrice      *string `bun:"native_price"`
	TotalValueUSD    *string `bun:"total_value_usd"`
	LastSyncAt       int64   `bun:"last_sync_at,notnull"`
}

func toStatus(dao *StatusDao) *Status {
	s := &Status{
		Key:        dao.Key,
		Type:       dao.Type,
		Address:    dao.Address,
		ChainID:    dao.ChainID,
		State:      State(dao.Status),
		LastSyncAt: store.FromMillis(dao.LastSyncAt),
		HasData:    dao.Data != nil,
	}
	if dao.ErrorMessage != nil {
		s.ErrorMessage = *dao.ErrorMessage
	}
	return s
}

func toBalance(dao *BalanceDao) *BalanceSnapshot {
	b := &BalanceSnapshot{
		ID:               dao.ID,
		Address:          dao.Address,
		ChainID:          dao.ChainID,
		NativeBalance:    dao.NativeBalance,
		NativeBalanceWei: dao.NativeBalanceWei,
		LastSyncAt:       store.FromMillis(dao.LastSyncAt),
	}
	if dao.NativePrice != nil {
		b.NativePrice = *dao.NativePrice
	}
	if dao.TotalValueUSD != nil {
		b.TotalValueUSD = *dao.TotalValueUSD
	}
	return b
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
