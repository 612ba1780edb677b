package offline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chainsafe/wallet-sync/internal/metrics"
	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
)

// State is the view of one resource after a load or refetch.
type State[T any] struct {
	// Data is the fresh value, or the cached one when the refresh failed.
	Data *T
	// Idle is set when there was no address to sync for.
	Idle      bool
	IsLoading bool
	// IsStale is set when the last refresh failed.
	IsStale bool
	// Err holds the remote failure of the last refresh, categorised as a
	// dependency failure.
	Err error
	// LastSyncAt is when Data was last fetched successfully by this resource.
	LastSyncAt time.Time
}

// ResourceOption configures a Resource.
type ResourceOption[T any] func(*Resource[T])

// WithObserver registers a callback that receives every intermediate state,
// starting with the cached value before the remote fetch begins.
func WithObserver[T any](observe func(State[T])) ResourceOption[T] {
	return func(r *Resource[T]) { r.observe = observe }
}

// Resource is one cached dataset bound to its remote fetch.
type Resource[T any] struct {
	o       *Orchestrator
	key     syncstatus.Key
	fetch   FetchFunc[T]
	observe func(State[T])

	mu    sync.Mutex
	state State[T]
}

// NewResource binds key to fetch.
func NewResource[T any](o *Orchestrator, key syncstatus.Key, fetch FetchFunc[T], opts ...ResourceOption[T]) *Resource[T] {
	r := &Resource[T]{o: o, key: key, fetch: fetch}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// State returns the latest state.
func (r *Resource[T]) State() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Load surfaces the cached value, then refreshes it from the remote source.
// Tracker failures are returned as errors; remote failures end up in
// State.Err with the cached value kept.
func (r *Resource[T]) Load(ctx context.Context) (State[T], error) {
	if r.key.Address == "" {
		return r.set(State[T]{Idle: true}), nil
	}

	cached, err := syncstatus.GetCachedData[T](ctx, r.o.tracker, r.key)
	if err != nil {
		return r.set(State[T]{}), fmt.Errorf("failed to read cached %s: %w", r.key.Type, err)
	}

	r.update(func(s *State[T]) {
		s.Idle = false
		s.Data = cached
		s.IsLoading = true
	})
	return r.revalidate(ctx)
}

// Refetch refreshes the resource again, keeping the current value as the
// fallback. There is no automatic retry; callers invoke Refetch.
func (r *Resource[T]) Refetch(ctx context.Context) (State[T], error) {
	if r.key.Address == "" {
		return r.set(State[T]{Idle: true}), nil
	}

	r.update(func(s *State[T]) {
		s.Idle = false
		s.IsLoading = true
	})
	return r.revalidate(ctx)
}

func (r *Resource[T]) revalidate(ctx context.Context) (State[T], error) {
	res, err := refresh(ctx, r.o, r.key, r.fetch)
	if err != nil {
		r.update(func(s *State[T]) { s.IsLoading = false })
		return r.State(), fmt.Errorf("failed to refresh %s: %w", r.key.Type, err)
	}

	if res.fetchErr == nil {
		data := res.data
		now := r.o.now()
		return r.update(func(s *State[T]) {
			s.Data = &data
			s.IsLoading = false
			s.IsStale = false
			s.Err = nil
			s.LastSyncAt = now
		}), nil
	}

	fallback := r.State().Data
	if fallback == nil {
		fallback, err = syncstatus.GetCachedData[T](ctx, r.o.tracker, r.key)
		if err != nil {
			r.update(func(s *State[T]) { s.IsLoading = false })
			return r.State(), fmt.Errorf("failed to read cached %s: %w", r.key.Type, err)
		}
	}

	if fallback != nil {
		metrics.StaleServed.WithLabelValues(r.key.Type).Inc()
		metrics.SyncTotal.WithLabelValues(r.key.Type, metrics.OutcomeStale).Inc()
	} else {
		metrics.SyncTotal.WithLabelValues(r.key.Type, metrics.OutcomeFailed).Inc()
	}

	fetchErr := apperrors.DependencyFailureError(res.fetchErr, fmt.Sprintf("failed to fetch %s", r.key.Type))
	return r.update(func(s *State[T]) {
		s.Data = fallback
		s.IsLoading = false
		s.IsStale = true
		s.Err = fetchErr
	}), nil
}

func (r *Resource[T]) set(state State[T]) State[T] {
	return r.update(func(s *State[T]) { *s = state })
}

// update applies fn to the state and notifies the observer outside the lock.
func (r *Resource[T]) update(fn func(s *State[T])) State[T] {
	r.mu.Lock()
	fn(&r.state)
	state := r.state
	r.mu.Unlock()

	if r.observe != nil {
		r.observe(state)
	}
	return state
}
