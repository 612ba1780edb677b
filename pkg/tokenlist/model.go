package tokenlist

import (
	"github.com/uptrace/bun"

	"github.com/chainsafe/wallet-sync/pkg/store"
)

// TokenDao is a data access object that maps directly to the 'token_list' table.
type TokenDao struct {
	bun.BaseModel      `bun:"table:token_list,alias:tl"`
	ID                 string  `bun:"id,pk"`
	Address            string  `bun:"address,notnull,type:varchar(42)"`
	ChainID            int64   `bun:"chain_id,notnull"`
	Symbol             string  `bun:"symbol,notnull"`
	Name               string  `bun:"name,notnull"`
	Decimals           int     `bun:"decimals,notnull"`
	LogoURL            *string `bun:"logo_url"`
	IsHidden           bool    `bun:"is_hidden,notnull"`
	IsSpam             bool    `bun:"is_spam,notnull"`
	IsCustom           bool    `bun:"is_custom,notnull"`
	SortOrder          int     `bun:"sort_order,notnull"`
	LastBalance        *string `bun:"last_balance"`
	LastBalanceRaw     *string `bun:"last_balance_raw"`
	LastPrice          *string `bun:"last_price"`
	LastPriceChange24h *string `bun:"last_price_change_24h"`
	LastSyncAt         *int64  `bun:"last_sync_at"`
	CreatedAt          int64   `bun:"created_at,notnull"`
	UpdatedAt          int64   `bun:"updated_at,notnull"`
}

func toToken(dao *TokenDao) *Token {
	t := &Token{
		ID:         dao.ID,
		Address:    dao.Address,
		ChainID:    dao.ChainID,
		Symbol:     dao.Symbol,
		Name:       dao.Name,
		Decimals:   dao.Decimals,
		IsHidden:   dao.IsHidden,
		IsSpam:     dao.IsSpam,
		IsCustom:   dao.IsCustom,
		SortOrder:  dao.SortOrder,
		LastSyncAt: store.OptionalTime(dao.LastSyncAt),
		CreatedAt:  store.FromMillis(dao.CreatedAt),
		UpdatedAt:  store.FromMillis(dao.UpdatedAt),
	}
	if dao.LogoURL != nil {
		t.LogoURL = *dao.LogoURL
	}
	if dao.LastBalance != nil {
		t.LastBalance = *dao.LastBalance
	}
	if dao.LastBalanceRaw != nil {
		t.LastBalanceRaw = *dao.LastBalanceRaw
	}
	if dao.LastPrice != nil {
		t.LastPrice = *dao.LastPrice
	}
	if dao.LastPriceChange24h != nil {
		t.LastPriceChange24h = *dao.LastPriceChange24h
	}
	return t
}

func toTokens(daos []TokenDao) []*Token {
	tokens := make([]*Token, len(daos))
	for i := range daos {
		tokens[i] = toToken(&daos[i])
	}
	return tokens
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
