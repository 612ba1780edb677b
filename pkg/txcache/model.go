package txcache

import (
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// TransactionDao is a data access object that maps directly to the 'transaction_cache' table.
type TransactionDao struct {
	bun.BaseModel `bun:"table:transaction_cache,alias:tc"`
	ID            string  `bun:"id,pk"`
	Hash          string  `bun:"hash,notnull,type:varchar(66)"`
	ChainID       int64   `bun:"chain_id,notnull"`
	FromAddress   string  `bun:"from_address,notnull,type:varchar(42)"`
	ToAddress     string  `bun:"to_address,notnull,type:varchar(42)"`
	Value         string  `bun:"value,notnull"`
	ValueWei      string  `bun:"value_wei,notnull"`
	GasPrice      *string `bun:"gas_price"`
	GasUsed       *string `bun:"gas_used"`
	Fee           *string `bun:"fee"`
	Nonce         *int64  `bun:"nonce"`
	Timestamp     int64   `bun:"timestamp,notnull"`
	Status        string  `bun:"status,notnull,type:varchar(16)"`
	Type          string  `bun:"type,notnull,type:varchar(16)"`
	IsLocal       bool    `bun:"is_local,notnull"`
	TokenAddress  *string `bun:"token_address,type:varchar(42)"`
	TokenSymbol   *string `bun:"token_symbol"`
	BlockNumber   *int64  `bun:"block_number"`
	CreatedAt     int64   `bun:"created_at,notnull"`
	UpdatedAt     int64   `bun:"updated_at,notnull"`
}

func toTransaction(dao *TransactionDao) *Transaction {
	tx := &Transaction{
		ID:          dao.ID,
		Hash:        dao.Hash,
		ChainID:     dao.ChainID,
		From:        dao.FromAddress,
		To:          dao.ToAddress,
		Value:       dao.Value,
		ValueWei:    dao.ValueWei,
		Nonce:       dao.Nonce,
		Timestamp:   dao.Timestamp,
		Status:      Status(dao.Status),
		Type:        Type(dao.Type),
		IsLocal:     dao.IsLocal,
		BlockNumber: dao.BlockNumber,
		CreatedAt:   store.FromMillis(dao.CreatedAt),
		UpdatedAt:   store.FromMillis(dao.UpdatedAt),
	}
	if dao.GasPrice != nil {
		tx.GasPrice = *dao.GasPrice
	}
	if dao.GasUsed != nil {
		tx.GasUsed = *dao.GasUsed
	}
	if dao.Fee != nil {
		tx.Fee = *dao.Fee
	}
	if dao.TokenAddress != nil {
		tx.TokenAddress = *dao.TokenAddress
	}
	if dao.TokenSymbol != nil {
		tx.TokenSymbol = *dao.TokenSymbol
	}
	return tx
}

func toTransactions(daos []TransactionDao) []*Transaction {
	txs := make([]*Transaction, len(daos))
	for i := range daos {
		txs[i] = toTransaction(&daos[i])
	}
	return txs
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
