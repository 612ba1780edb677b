// Package presenter turns repository snapshots into display-ready view
// state. It only reads plain values and never touches the store.
package presenter

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
	"github.com/chainsafe/wallet-sync/pkg/tokenlist"
)

const fiatPlaces = 2

// Holding is one row of the portfolio.
type Holding struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	ChainID   int64  `json:"chain_id"`
	IsNative  bool   `json:"is_native"`
	Balance   string `json:"balance"`
	Price     string `json:"price,omitempty"`
	Change24h string `json:"change_24h,omitempty"`
	ValueUSD  string `json:"value_usd"`
	// Share is the percentage of the portfolio value held in this row.
	Share string `json:"share"`
}

// PortfolioView is the balance screen of one address on one chain.
type PortfolioView struct {
	Address       string     `json:"address"`
	ChainID       int64      `json:"chain_id"`
	TotalValueUSD string     `json:"total_value_usd"`
	Holdings      []Holding  `json:"holdings"`
	LastSyncAt    *time.Time `json:"last_sync_at,omitempty"`
}

// Portfolio builds the portfolio of the snapshot's address from its native
// balance and the visible tokens. Hidden and spam tokens are left out. A
// nil snapshot yields a portfolio of tokens only.
func Portfolio(snapshot *syncstatus.BalanceSnapshot, tokens []*tokenlist.Token) PortfolioView {
	var (
		view   PortfolioView
		values []decimal.Decimal
	)

	if snapshot != nil {
		view.Address = snapshot.Address
		view.ChainID = snapshot.ChainID
		syncedAt := snapshot.LastSyncAt
		view.LastSyncAt = &syncedAt

		value := multiply(snapshot.NativeBalance, snapshot.NativePrice)
		view.Holdings = append(view.Holdings, Holding{
			Symbol:   chain.NativeSymbol(snapshot.ChainID),
			ChainID:  snapshot.ChainID,
			IsNative: true,
			Balance:  snapshot.NativeBalance,
			Price:    snapshot.NativePrice,
		})
		values = append(values, value)
	}

	for _, t := range tokens {
		if t == nil || t.IsHidden || t.IsSpam {
			continue
		}
		if view.ChainID == 0 {
			view.ChainID = t.ChainID
		}
		balance := t.LastBalance
		if balance == "" {
			balance = "0"
		}
		view.Holdings = append(view.Holdings, Holding{
			Symbol:    t.Symbol,
			Name:      t.Name,
			Address:   t.Address,
			ChainID:   t.ChainID,
			Balance:   balance,
			Price:     t.LastPrice,
			Change24h: t.LastPriceChange24h,
		})
		values = append(values, multiply(t.LastBalance, t.LastPrice))
		if t.LastSyncAt != nil && (view.LastSyncAt == nil || t.LastSyncAt.After(*view.LastSyncAt)) {
			syncedAt := *t.LastSyncAt
			view.LastSyncAt = &syncedAt
		}
	}

	total := decimal.Sum(decimal.Zero, values...)
	hundred := decimal.NewFromInt(100)
	for i := range view.Holdings {
		view.Holdings[i].ValueUSD = values[i].StringFixed(fiatPlaces)
		share := decimal.Zero
		if total.IsPositive() {
			share = values[i].Div(total).Mul(hundred)
		}
		view.Holdings[i].Share = share.StringFixed(fiatPlaces)
	}
	view.TotalValueUSD = total.StringFixed(fiatPlaces)
	return view
}

// multiply returns amount * price, or zero when either is missing or not a
// number.
func multiply(amount, price string) decimal.Decimal {
	if amount == "" || price == "" {
		return decimal.Zero
	}
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero
	}
	return a.Mul(p)
}
