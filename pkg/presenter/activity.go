package presenter

import (
	"sort"
	"time"

	"github.com/chainsafe/wallet-sync/pkg/chain"
	"github.com/chainsafe/wallet-sync/pkg/txcache"
)

const dayLayout = "2006-01-02"

// Direction is how a transaction moved value relative to the wallet.
type Direction string

const (
	DirectionIn   Direction = "in"
	DirectionOut  Direction = "out"
	DirectionSelf Direction = "self"
)

// ActivityRow is one transaction as shown in the activity list.
type ActivityRow struct {
	Hash         string         `json:"hash"`
	ChainID      int64          `json:"chain_id"`
	Direction    Direction      `json:"direction"`
	Counterparty string         `json:"counterparty"`
	Amount       string         `json:"amount"`
	Symbol       string         `json:"symbol"`
	Fee          string         `json:"fee,omitempty"`
	Status       txcache.Status `json:"status"`
	Type         txcache.Type   `json:"type"`
	IsPending    bool           `json:"is_pending"`
	Time         time.Time      `json:"time"`
}

// ActivityDay groups the rows of one calendar day.
type ActivityDay struct {
	Date string        `json:"date"`
	Rows []ActivityRow `json:"rows"`
}

// Activity groups txs by calendar day in loc, newest first, with each row's
// direction taken relative to address. A nil loc means UTC.
func Activity(address string, txs []*txcache.Transaction, loc *time.Location) []ActivityDay {
	if loc == nil {
		loc = time.UTC
	}
	wallet := chain.NormalizeAddress(address)

	sorted := make([]*txcache.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx != nil {
			sorted = append(sorted, tx)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp > sorted[j].Timestamp
	})

	var days []ActivityDay
	for _, tx := range sorted {
		row := toRow(wallet, tx, loc)
		date := row.Time.Format(dayLayout)
		if len(days) == 0 || days[len(days)-1].Date != date {
			days = append(days, ActivityDay{Date: date})
		}
		last := &days[len(days)-1]
		last.Rows = append(last.Rows, row)
	}
	return days
}

func toRow(wallet string, tx *txcache.Transaction, loc *time.Location) ActivityRow {
	from := chain.NormalizeAddress(tx.From)
	to := chain.NormalizeAddress(tx.To)

	row := ActivityRow{
		Hash:      tx.Hash,
		ChainID:   tx.ChainID,
		Amount:    tx.Value,
		Symbol:    tx.TokenSymbol,
		Fee:       tx.Fee,
		Status:    tx.Status,
		Type:      tx.Type,
		IsPending: tx.Status == txcache.StatusPending,
		Time:      time.Unix(tx.Timestamp, 0).In(loc),
	}
	if row.Symbol == "" {
		row.Symbol = chain.NativeSymbol(tx.ChainID)
	}

	switch {
	case from == wallet && to == wallet:
		row.Direction, row.Counterparty = DirectionSelf, to
	case from == wallet:
		row.Direction, row.Counterparty = DirectionOut, to
	default:
		row.Direction, row.Counterparty = DirectionIn, from
	}
	return row
}
