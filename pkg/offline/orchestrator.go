// Package offline serves cached wallet data immediately and refreshes it from
// a remote source in the background, falling back to the cached value when the
// refresh fails (stale-while-revalidate).
package offline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/chainsafe/wallet-sync/internal/metrics"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
)

// Tracker is the sync bookkeeping the orchestrator reads and writes.
//
//go:generate mockery --name Tracker --output mocks --outpkg mocks --filename mock_tracker.go --with-expecter
type Tracker interface {
	CachedData(ctx context.Context, key syncstatus.Key) (json.RawMessage, error)
	StartSync(ctx context.Context, key syncstatus.Key) error
	CompleteSync(ctx context.Context, key syncstatus.Key, data any) error
	SyncError(ctx context.Context, key syncstatus.Key, msg string) error
}

// FetchFunc loads fresh data from the remote source. Timeouts are its own
// responsibility.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

// WithSingleFlight controls whether concurrent refreshes of the same key
// share one remote fetch. When off, overlapping refreshes each fetch and the
// last one to complete wins.
func WithSingleFlight(enabled bool) Option {
	return func(o *Orchestrator) { o.singleFlight = enabled }
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator coordinates the tracker with remote fetches.
type Orchestrator struct {
	tracker      Tracker
	logger       *zap.Logger
	singleFlight bool
	now          func() time.Time
	group        singleflight.Group
}

// NewOrchestrator creates an Orchestrator over tracker. Single-flight is on
// by default.
func NewOrchestrator(tracker Tracker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		tracker:      tracker,
		logger:       zap.NewNop(),
		singleFlight: true,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fetch runs one cache-then-refresh cycle for key and returns the final
// state. It is shorthand for NewResource(...).Load.
func Fetch[T any](ctx context.Context, o *Orchestrator, key syncstatus.Key, fetch FetchFunc[T], opts ...ResourceOption[T]) (State[T], error) {
	return NewResource(o, key, fetch, opts...).Load(ctx)
}

type refreshResult[T any] struct {
	data     T
	fetchErr error
}

// refresh marks key as syncing, calls fetch and records the outcome in the
// tracker. Tracker failures are returned as errors. A fetch failure is
// returned inside the result.
func refresh[T any](ctx context.Context, o *Orchestrator, key syncstatus.Key, fetch FetchFunc[T]) (refreshResult[T], error) {
	if !o.singleFlight {
		return runRefresh(ctx, o, key, fetch)
	}

	var zero T
	groupKey := fmt.Sprintf("%s|%T", key, zero)
	ch := o.group.DoChan(groupKey, func() (any, error) {
		return runRefresh(context.WithoutCancel(ctx), o, key, fetch)
	})

	select {
	case <-ctx.Done():
		return refreshResult[T]{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			metrics.SharedRefreshes.WithLabelValues(key.Type).Inc()
		}
		if res.Err != nil {
			return refreshResult[T]{}, res.Err
		}
		return res.Val.(refreshResult[T]), nil
	}
}

func runRefresh[T any](ctx context.Context, o *Orchestrator, key syncstatus.Key, fetch FetchFunc[T]) (refreshResult[T], error) {
	if err := o.tracker.StartSync(ctx, key); err != nil {
		return refreshResult[T]{}, err
	}

	start := time.Now()
	data, fetchErr := fetch(ctx)
	metrics.SyncDuration.WithLabelValues(key.Type).Observe(time.Since(start).Seconds())

	if fetchErr != nil {
		o.logger.Warn("remote fetch failed",
			zap.String("key", key.String()),
			zap.Error(fetchErr),
		)
		if err := o.tracker.SyncError(ctx, key, fetchErr.Error()); err != nil {
			return refreshResult[T]{}, err
		}
		return refreshResult[T]{fetchErr: fetchErr}, nil
	}

	if err := o.tracker.CompleteSync(ctx, key, data); err != nil {
		return refreshResult[T]{}, err
	}
	metrics.SyncTotal.WithLabelValues(key.Type, metrics.OutcomeSynced).Inc()
	return refreshResult[T]{data: data}, nil
}
