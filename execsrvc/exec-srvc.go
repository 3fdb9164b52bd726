// Package execsrvc orchestrates the secure code-execution pipeline:
// shape validation, rate limiting, static security screening, the
// result cache, the remote execution engine and the test validator.
package execsrvc

import (
	"context"
	"log/slog"

	"github.com/execpipe/backend/engine"
	"github.com/execpipe/backend/ratelimit"
	"github.com/execpipe/backend/rescache"
	"github.com/execpipe/backend/screener"
)

// CodeRunner is the slice of the execution engine client the
// orchestrator needs. *engine.Client implements it; tests inject a
// fake to assert call counts.
type CodeRunner interface {
	Execute(
		ctx context.Context,
		srcCode string,
		langID string,
		stdin string,
		limits engine.Limits,
	) (engine.Result, error)
}

// ExecLogRepo persists completed executions for auditing. Saving is
// best effort; a nil repo disables logging entirely.
type ExecLogRepo interface {
	Save(ctx context.Context, rec ExecLogRecord) error
}

type Config struct {
	MaxTestCases  int
	MaxFieldBytes int // per stdin / test input / expected output
	MaxOutBytes   int // sanitizer truncation threshold
	Limits        engine.Limits
}

const (
	DefaultMaxTestCases  = 20
	DefaultMaxFieldBytes = 64 * 1024
)

// ExecSrvc composes the pipeline components. One instance per
// process; every inbound request is handled independently and may
// run concurrently with others.
type ExecSrvc struct {
	logger   *slog.Logger
	screener *screener.Screener
	limiter  *ratelimit.Limiter
	cache    *rescache.Cache
	runner   CodeRunner
	execLog  ExecLogRepo
	cfg      Config
}

func NewExecSrvc(
	logger *slog.Logger,
	scr *screener.Screener,
	limiter *ratelimit.Limiter,
	cache *rescache.Cache,
	runner CodeRunner,
	execLog ExecLogRepo,
	cfg Config,
) *ExecSrvc {
	if cfg.MaxTestCases <= 0 {
		cfg.MaxTestCases = DefaultMaxTestCases
	}
	if cfg.MaxFieldBytes <= 0 {
		cfg.MaxFieldBytes = DefaultMaxFieldBytes
	}
	return &ExecSrvc{
		logger:   logger.With("module", "exec"),
		screener: scr,
		limiter:  limiter,
		cache:    cache,
		runner:   runner,
		execLog:  execLog,
		cfg:      cfg,
	}
}

// CacheStats exposes the cache hit/miss counters for observability
// endpoints.
func (e *ExecSrvc) CacheStats() rescache.Stats {
	return e.cache.Stats()
}

// SweepCache removes expired persistent cache entries. Invoked on a
// schedule or on demand by the admin tooling.
func (e *ExecSrvc) SweepCache(ctx context.Context, batchSize int) (int, error) {
	return e.cache.Sweep(ctx, batchSize)
}

// saveExecLog writes the audit record. Logging is an enhancement,
// not a correctness requirement, so failures are logged and
// swallowed.
func (e *ExecSrvc) saveExecLog(ctx context.Context, rec ExecLogRecord) {
	if e.execLog == nil {
		return
	}
	if err := e.execLog.Save(ctx, rec); err != nil {
		e.logger.Warn("failed to save execution log",
			"exec_id", rec.ExecID, "error", err)
	}
}
