// Package ratelimit admits or rejects requests based on a per-user
// sliding window of request timestamps kept in the persistent store.
package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Kind separates quotas for single executions and batch test runs.
// Batch runs are cheaper per call for the caller but more expensive
// in aggregate sandbox time, so they get a tighter quota.
type Kind string

const (
	KindSingle Kind = "single"
	KindBatch  Kind = "batch"
)

// WindowRepo persists per-user request timestamp windows. Get
// returns an empty slice for an unknown key.
type WindowRepo interface {
	Get(ctx context.Context, key string) ([]time.Time, error)
	Put(ctx context.Context, key string, timestamps []time.Time) error
}

type Config struct {
	SingleMax    int
	SingleWindow time.Duration
	BatchMax     int
	BatchWindow  time.Duration
	// FailClosed denies requests when the store is unreachable.
	// The default is to fail open: a storage outage should not
	// block all traffic, at the cost of quota enforcement.
	FailClosed bool
}

const (
	DefaultSingleMax    = 30
	DefaultSingleWindow = 1 * time.Hour
	DefaultBatchMax     = 10
	DefaultBatchWindow  = 1 * time.Hour
)

type Limiter struct {
	logger *slog.Logger
	repo   WindowRepo
	cfg    Config
	now    func() time.Time
}

func NewLimiter(logger *slog.Logger, repo WindowRepo, cfg Config) *Limiter {
	if cfg.SingleMax <= 0 {
		cfg.SingleMax = DefaultSingleMax
	}
	if cfg.SingleWindow <= 0 {
		cfg.SingleWindow = DefaultSingleWindow
	}
	if cfg.BatchMax <= 0 {
		cfg.BatchMax = DefaultBatchMax
	}
	if cfg.BatchWindow <= 0 {
		cfg.BatchWindow = DefaultBatchWindow
	}
	return &Limiter{
		logger: logger.With("module", "ratelimit"),
		repo:   repo,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (l *Limiter) quota(kind Kind) (int, time.Duration) {
	if kind == KindBatch {
		return l.cfg.BatchMax, l.cfg.BatchWindow
	}
	return l.cfg.SingleMax, l.cfg.SingleWindow
}

// Admit checks and updates the user's sliding window. Timestamps
// older than the window are pruned; if the remaining count is below
// the maximum, the current timestamp is appended and persisted.
// A denial never mutates stored state.
//
// The read-modify-write is not transactional: two concurrent
// requests from the same user can admit one extra request over the
// limit. That makes this a soft limit.
func (l *Limiter) Admit(ctx context.Context, userID string, kind Kind) bool {
	max, window := l.quota(kind)
	key := userID + "#" + string(kind)
	now := l.now()

	stamps, err := l.repo.Get(ctx, key)
	if err != nil {
		return l.storeFailure("read", key, err)
	}

	pruned := stamps[:0]
	for _, ts := range stamps {
		if now.Sub(ts) <= window {
			pruned = append(pruned, ts)
		}
	}

	if len(pruned) >= max {
		l.logger.Info("rate limit exceeded",
			"key", key, "count", len(pruned), "max", max)
		return false
	}

	pruned = append(pruned, now)
	if err := l.repo.Put(ctx, key, pruned); err != nil {
		return l.storeFailure("write", key, err)
	}
	return true
}

func (l *Limiter) storeFailure(op string, key string, err error) bool {
	if l.cfg.FailClosed {
		l.logger.Error("rate limit store unreachable, failing closed",
			"op", op, "key", key, "error", err)
		return false
	}
	l.logger.Error("rate limit store unreachable, failing open",
		"op", op, "key", key, "error", err)
	return true
}
