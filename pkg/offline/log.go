package offline

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/wallet-sync/pkg/syncstatus"
)

const trackerName = "SyncTracker"

// logTracker wraps Tracker with logging of every call
type logTracker struct {
	tracker Tracker
	logger  *zap.Logger
}

// NewLogTracker creates a logging decorator for a Tracker.
// It logs each transition with its key, duration and error.
func NewLogTracker(tracker Tracker, logger *zap.Logger) Tracker {
	return &logTracker{
		tracker: tracker,
		logger:  logger,
	}
}

func (lt *logTracker) CachedData(ctx context.Context, key syncstatus.Key) (raw json.RawMessage, err error) {
	start := time.Now()
	defer func() { lt.log("CachedData", key, start, &err, zap.Bool("hit", raw != nil)) }()
	return lt.tracker.CachedData(ctx, key)
}

func (lt *logTracker) StartSync(ctx context.Context, key syncstatus.Key) (err error) {
	defer lt.log("StartSync", key, time.Now(), &err)
	return lt.tracker.StartSync(ctx, key)
}

func (lt *logTracker) CompleteSync(ctx context.Context, key syncstatus.Key, data any) (err error) {
	defer lt.log("CompleteSync", key, time.Now(), &err, zap.Bool("with_data", data != nil))
	return lt.tracker.CompleteSync(ctx, key, data)
}

func (lt *logTracker) SyncError(ctx context.Context, key syncstatus.Key, msg string) (err error) {
	defer lt.log("SyncError", key, time.Now(), &err, zap.String("sync_error", msg))
	return lt.tracker.SyncError(ctx, key, msg)
}

func (lt *logTracker) log(method string, key syncstatus.Key, start time.Time, err *error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", trackerName),
		zap.String("method", method),
		zap.String("key", key.String()),
		zap.Duration("duration", time.Since(start)),
	)
	if *err != nil {
		lt.logger.Error(method+" failed", append(fields, zap.Error(*err))...)
		return
	}
	lt.logger.Debug(method+" completed", fields...)
}
