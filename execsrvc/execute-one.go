package execsrvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/execpipe/backend/logger"
	"github.com/execpipe/backend/ratelimit"
	"github.com/execpipe/backend/rescache"
	"github.com/execpipe/backend/screener"
)

// ExecuteOne runs source code against a single stdin:
//  1. validate request shape
//  2. rate limit admission
//  3. static security screening (before any cache lookup or
//     network call, so unsafe input costs nothing)
//  4. cache lookup, a hit short-circuits the engine
//  5. remote execution
//  6. output sanitization, cache store, audit log
func (e *ExecSrvc) ExecuteOne(
	ctx context.Context,
	userID string,
	req ExecRequest,
) (ExecResponse, error) {
	if err := req.IsValid(e.cfg.MaxFieldBytes); err != nil {
		return ExecResponse{}, err
	}

	if !e.limiter.Admit(ctx, userID, ratelimit.KindSingle) {
		return ExecResponse{}, ErrRateLimited()
	}

	scr := e.screener.Screen(req.SrcCode, req.LangID)
	e.logScreenWarnings(userID, scr)
	if !scr.Safe {
		return ExecResponse{}, ErrUnsafeCode(scr.Issues)
	}

	execID := uuid.New()
	ctx = logger.WithLogger(ctx, e.logger)
	ctx = logger.WithUserID(ctx, userID)
	ctx = logger.WithExecID(ctx, execID.String())
	log := logger.FromContext(ctx)

	fp := rescache.Fingerprint(req.LangID, req.SrcCode, req.Stdin)

	cached, err := e.cache.Lookup(ctx, fp)
	if err != nil {
		// the cache is an optimization, never a reason to fail
		log.Warn("cache lookup failed", "fingerprint", fp, "error", err)
	}
	if cached != nil {
		return ExecResponse{ExecID: execID, Result: *cached, Cached: true}, nil
	}

	res, err := e.runner.Execute(ctx, req.SrcCode, req.LangID, req.Stdin, e.cfg.Limits)
	if err != nil {
		return ExecResponse{}, err
	}

	res.Stdout = screener.SanitizeOutput(res.Stdout, e.cfg.MaxOutBytes)
	res.Stderr = screener.SanitizeOutput(res.Stderr, e.cfg.MaxOutBytes)

	if err := e.cache.Store(ctx, fp, res); err != nil {
		log.Warn("cache store failed", "fingerprint", fp, "error", err)
	}

	e.saveExecLog(ctx, ExecLogRecord{
		ExecID:      execID,
		UserID:      userID,
		LangID:      req.LangID,
		Fingerprint: fp,
		Kind:        "single",
		Result:      &res,
		CreatedAt:   time.Now(),
	})

	return ExecResponse{ExecID: execID, Result: res, Cached: false}, nil
}

func (e *ExecSrvc) logScreenWarnings(userID string, scr screener.Result) {
	for _, issue := range scr.Issues {
		if issue.Severity == screener.SeverityWarning {
			e.logger.Info("screener warning",
				"user_id", userID, "message", issue.Message)
		}
	}
}
