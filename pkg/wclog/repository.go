package wclog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	apperrors "github.com/chainsafe/wallet-sync/pkg/app/errors"
	"github.com/chainsafe/wallet-sync/pkg/store"
)

const millisPerDay = 24 * 60 * 60 * 1000

// ErrRequestAlreadyResolved is returned when a request that already left the
// pending state is approved, rejected or failed again.
var ErrRequestAlreadyResolved = errors.New("request already resolved")

// Option configures a Repository.
type Option func(*Repository)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

// Repository reads and writes the WalletConnect session and request logs.
type Repository struct {
	store    *store.Handle
	validate *validator.Validate
	now      func() time.Time
}

// New creates a WalletConnect log repository over h.
func New(h *store.Handle, opts ...Option) *Repository {
	r := &Repository{
		store:    h,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LogSessionConnected records a session. If the topic already has an active
// session the call is treated as a reconnect of that session: only its
// updatedAt moves and no row is added. An active session already past its
// expiry is marked expired first and a new session is recorded.
func (r *Repository) LogSessionConnected(ctx context.Context, in SessionInput) (*Session, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid session")
	}
	chains, err := encodeList(in.Chains)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid session chains")
	}
	accounts, err := encodeList(lowerAll(in.Accounts))
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid session accounts")
	}

	now := store.Millis(r.now())
	var dao *SessionDao
	err = r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		active, err := activeSession(ctx, tx, in.Topic)
		if err != nil {
			return err
		}
		if active != nil && active.ExpiresAt != nil && *active.ExpiresAt <= now {
			active.Status = string(SessionExpired)
			active.UpdatedAt = now
			if _, err := tx.NewUpdate().Model(active).Column("status", "updated_at").WherePK().Exec(ctx); err != nil {
				return err
			}
			active = nil
		}
		if active != nil {
			active.UpdatedAt = now
			dao = active
			_, err := tx.NewUpdate().Model(active).Column("updated_at").WherePK().Exec(ctx)
			return err
		}

		dao = &SessionDao{
			ID:          uuid.NewString(),
			Topic:       in.Topic,
			DappName:    in.DappName,
			DappURL:     optionalString(in.DappURL),
			DappIcon:    optionalString(in.DappIcon),
			Chains:      chains,
			Accounts:    accounts,
			Status:      string(SessionActive),
			ConnectedAt: now,
			UpdatedAt:   now,
			ExpiresAt:   store.OptionalMillis(in.ExpiresAt),
		}
		_, err = tx.NewInsert().Model(dao).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log session connected: %w", err)
	}
	return toSession(dao)
}

// LogSessionDisconnected closes the active session of topic. It returns false
// when the topic has no active session.
func (r *Repository) LogSessionDisconnected(ctx context.Context, topic string) (bool, error) {
	now := store.Millis(r.now())
	n, err := r.updateSessions(ctx, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("status = ?", string(SessionDisconnected)).
			Set("disconnected_at = ?", now).
			Set("updated_at = ?", now).
			Where("topic = ?", topic).
			Where("status = ?", string(SessionActive))
	})
	if err != nil {
		return false, fmt.Errorf("failed to log session disconnected: %w", err)
	}
	return n > 0, nil
}

// MarkExpiredSessions flips every active session whose expiry has passed to
// expired and returns how many changed. Expiry is only evaluated here, so
// callers sweep before listing active sessions.
func (r *Repository) MarkExpiredSessions(ctx context.Context) (int64, error) {
	now := store.Millis(r.now())
	n, err := r.updateSessions(ctx, func(q *bun.UpdateQuery) *bun.UpdateQuery {
		return q.
			Set("status = ?", string(SessionExpired)).
			Set("updated_at = ?", now).
			Where("status = ?", string(SessionActive)).
			Where("expires_at IS NOT NULL").
			Where("expires_at <= ?", now)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark expired sessions: %w", err)
	}
	return n, nil
}

func (r *Repository) updateSessions(ctx context.Context, build func(*bun.UpdateQuery) *bun.UpdateQuery) (int64, error) {
	var affected int64
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := build(tx.NewUpdate().Model((*SessionDao)(nil))).Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// GetActiveSessions returns active sessions, newest first.
func (r *Repository) GetActiveSessions(ctx context.Context) ([]*Session, error) {
	return r.listSessions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("status = ?", string(SessionActive))
	})
}

// GetSessionHistory returns every session, newest first. limit 0 means all.
func (r *Repository) GetSessionHistory(ctx context.Context, limit int) ([]*Session, error) {
	return r.listSessions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		if limit > 0 {
			q = q.Limit(limit)
		}
		return q
	})
}

// GetSessionByTopic returns the active session of topic, or the most recent
// past one, or nil.
func (r *Repository) GetSessionByTopic(ctx context.Context, topic string) (*Session, error) {
	sessions, err := r.listSessions(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			Where("topic = ?", topic).
			OrderExpr("CASE WHEN status = ? THEN 0 ELSE 1 END", string(SessionActive)).
			Limit(1)
	})
	if err != nil || len(sessions) == 0 {
		return nil, err
	}
	return sessions[0], nil
}

func (r *Repository) listSessions(ctx context.Context, build func(*bun.SelectQuery) *bun.SelectQuery) ([]*Session, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var daos []SessionDao
	q := build(db.NewSelect().Model(&daos)).
		OrderExpr("connected_at DESC").
		OrderExpr("updated_at DESC")
	if err := q.Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to list sessions")
	}
	sessions, err := toSessions(daos)
	if err != nil {
		return nil, apperrors.StorageError(err, "failed to decode sessions")
	}
	return sessions, nil
}

// LogRequest records a pending request.
func (r *Repository) LogRequest(ctx context.Context, in RequestInput) (*Request, error) {
	if err := r.validate.Struct(in); err != nil {
		return nil, apperrors.BadRequestError(err, "invalid request")
	}
	params, err := encodePayload(in.Params)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid request params")
	}

	dao := &RequestDao{
		ID:           uuid.NewString(),
		SessionTopic: in.SessionTopic,
		RequestID:    in.RequestID,
		Method:       in.Method,
		Params:       params,
		ChainID:      in.ChainID,
		Status:       string(RequestPending),
		RequestedAt:  store.Millis(r.now()),
	}
	err = r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(dao).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to log request: %w", err)
	}
	return toRequest(dao), nil
}

// ApproveRequest resolves a pending request with result. It returns nil when
// the request is unknown and ErrRequestAlreadyResolved when it is not pending.
func (r *Repository) ApproveRequest(ctx context.Context, topic string, requestID int64, result any) (*Request, error) {
	payload, err := encodePayload(result)
	if err != nil {
		return nil, apperrors.BadRequestError(err, "invalid request result")
	}
	return r.resolve(ctx, topic, requestID, func(dao *RequestDao) {
		dao.Status = string(RequestApproved)
		dao.Result = payload
	})
}

// RejectRequest resolves a pending request as rejected by the user.
func (r *Repository) RejectRequest(ctx context.Context, topic string, requestID int64, reason string) (*Request, error) {
	return r.resolve(ctx, topic, requestID, func(dao *RequestDao) {
		dao.Status = string(RequestRejected)
		dao.ErrorMessage = optionalString(reason)
	})
}

// FailRequest resolves a pending request that could not be executed.
func (r *Repository) FailRequest(ctx context.Context, topic string, requestID int64, errMsg string) (*Request, error) {
	return r.resolve(ctx, topic, requestID, func(dao *RequestDao) {
		dao.Status = string(RequestFailed)
		dao.ErrorMessage = optionalString(errMsg)
	})
}

func (r *Repository) resolve(ctx context.Context, topic string, requestID int64, apply func(*RequestDao)) (*Request, error) {
	var resolved *RequestDao
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		dao := new(RequestDao)
		err := tx.NewSelect().
			Model(dao).
			Where("session_topic = ?", topic).
			Where("request_id = ?", requestID).
			OrderExpr("requested_at DESC").
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil
			}
			return err
		}
		if dao.Status != string(RequestPending) {
			return apperrors.ConflictError(ErrRequestAlreadyResolved,
				fmt.Sprintf("request %d already %s", requestID, dao.Status))
		}

		apply(dao)
		now := store.Millis(r.now())
		dao.RespondedAt = &now
		if _, err := tx.NewUpdate().Model(dao).WherePK().Exec(ctx); err != nil {
			return err
		}
		resolved = dao
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to resolve request: %w", err)
	}
	if resolved == nil {
		return nil, nil
	}
	return toRequest(resolved), nil
}

// GetRequestsBySession returns the requests of topic, newest first.
func (r *Repository) GetRequestsBySession(ctx context.Context, topic string) ([]*Request, error) {
	return r.listRequests(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("session_topic = ?", topic)
	})
}

// GetPendingRequests returns every request still awaiting a response, oldest first.
func (r *Repository) GetPendingRequests(ctx context.Context) ([]*Request, error) {
	return r.listRequests(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("status = ?", string(RequestPending)).OrderExpr("requested_at ASC")
	})
}

func (r *Repository) listRequests(ctx context.Context, build func(*bun.SelectQuery) *bun.SelectQuery) ([]*Request, error) {
	db, err := r.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var daos []RequestDao
	if err := build(db.NewSelect().Model(&daos)).OrderExpr("requested_at DESC").Scan(ctx); err != nil {
		return nil, apperrors.StorageError(err, "failed to list requests")
	}
	return toRequests(daos), nil
}

// CleanOld deletes sessions that ended and resolved requests older than
// daysOld days. Active sessions and pending requests are kept.
func (r *Repository) CleanOld(ctx context.Context, daysOld int) (CleanResult, error) {
	if daysOld <= 0 {
		return CleanResult{}, apperrors.BadRequestError(nil, "daysOld must be positive")
	}
	cutoff := store.Millis(r.now()) - int64(daysOld)*millisPerDay

	var result CleanResult
	err := r.store.WithWrite(ctx, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*SessionDao)(nil)).
			Where("status != ?", string(SessionActive)).
			Where("updated_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return err
		}
		if result.Sessions, err = res.RowsAffected(); err != nil {
			return err
		}

		res, err = tx.NewDelete().
			Model((*RequestDao)(nil)).
			Where("status != ?", string(RequestPending)).
			Where("requested_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return err
		}
		result.Requests, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return CleanResult{}, fmt.Errorf("failed to clean WalletConnect logs: %w", err)
	}
	return result, nil
}

// DeleteAll removes every session and request.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	sessions, err := r.store.DeleteAll(ctx, (*SessionDao)(nil))
	if err != nil {
		return 0, err
	}
	requests, err := r.store.DeleteAll(ctx, (*RequestDao)(nil))
	if err != nil {
		return 0, err
	}
	return sessions + requests, nil
}

func activeSession(ctx context.Context, tx bun.Tx, topic string) (*SessionDao, error) {
	dao := new(SessionDao)
	err := tx.NewSelect().
		Model(dao).
		Where("topic = ?", topic).
		Where("status = ?", string(SessionActive)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return dao, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
