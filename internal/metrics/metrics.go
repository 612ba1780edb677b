package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for SyncTotal.
const (
	OutcomeSynced = "synced"
	OutcomeStale  = "stale"
	OutcomeFailed = "failed"
)

var (
	// SyncTotal counts orchestrated refreshes by sync type and outcome
	SyncTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_sync_total",
			Help: "Total number of remote refreshes by sync type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// SyncDuration tracks remote fetch time
	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wallet_sync_duration_seconds",
			Help:    "Remote fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// StaleServed counts refreshes that fell back to cached data
	StaleServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_sync_stale_served_total",
			Help: "Total number of failed refreshes answered from stale cache",
		},
		[]string{"type"},
	)

	// SharedRefreshes counts callers that joined an in-flight refresh
	SharedRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_sync_shared_total",
			Help: "Total number of refreshes collapsed into an in-flight one",
		},
		[]string{"type"},
	)

	// StoreOpenTotal counts store open attempts by outcome
	StoreOpenTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wallet_store_open_total",
			Help: "Total number of store open attempts",
		},
		[]string{"outcome"},
	)
)
