package execsrvc

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/execpipe/backend/checker"
	"github.com/execpipe/backend/engine"
	"github.com/execpipe/backend/logger"
	"github.com/execpipe/backend/ratelimit"
	"github.com/execpipe/backend/rescache"
	"github.com/execpipe/backend/screener"
)

// ExecuteBatch runs one program against an ordered list of test
// cases and scores the outcome. Test cases run sequentially, one
// engine call each, so a single caller cannot fan out across the
// sandbox fleet. A test case whose execution fails is recorded as
// failed and the batch continues.
//
// Each test case is a (code, language, stdin) triple, so results are
// cached at test-case granularity with the same fingerprints the
// single-run path uses.
func (e *ExecSrvc) ExecuteBatch(
	ctx context.Context,
	userID string,
	req BatchRequest,
) (checker.TestReport, error) {
	if err := req.IsValid(e.cfg.MaxTestCases, e.cfg.MaxFieldBytes); err != nil {
		return checker.TestReport{}, err
	}

	if !e.limiter.Admit(ctx, userID, ratelimit.KindBatch) {
		return checker.TestReport{}, ErrRateLimited()
	}

	scr := e.screener.Screen(req.SrcCode, req.LangID)
	e.logScreenWarnings(userID, scr)
	if !scr.Safe {
		return checker.TestReport{}, ErrUnsafeCode(scr.Issues)
	}

	execID := uuid.New()
	ctx = logger.WithLogger(ctx, e.logger)
	ctx = logger.WithUserID(ctx, userID)
	ctx = logger.WithExecID(ctx, execID.String())

	opts := checker.Options{Strict: req.Strict, IgnoreCase: req.IgnoreCase}
	results := make([]checker.TestCaseResult, 0, len(req.TestCases))
	for _, tc := range req.TestCases {
		results = append(results, e.runTestCase(ctx, req, tc, opts))
	}

	report := checker.Report(results)

	inputs := make([]string, 0, len(req.TestCases))
	for _, tc := range req.TestCases {
		inputs = append(inputs, tc.Input)
	}
	e.saveExecLog(ctx, ExecLogRecord{
		ExecID:      execID,
		UserID:      userID,
		LangID:      req.LangID,
		Fingerprint: rescache.BatchFingerprint(req.LangID, req.SrcCode, inputs),
		Kind:        "batch",
		Report:      &report,
		CreatedAt:   time.Now(),
	})

	return report, nil
}

func (e *ExecSrvc) runTestCase(
	ctx context.Context,
	req BatchRequest,
	tc TestCase,
	opts checker.Options,
) checker.TestCaseResult {
	log := logger.FromContext(ctx)
	fp := rescache.Fingerprint(req.LangID, req.SrcCode, tc.Input)

	res, cached := e.lookupTestResult(ctx, fp)
	if !cached {
		var err error
		res, err = e.runner.Execute(ctx, req.SrcCode, req.LangID, tc.Input, e.cfg.Limits)
		if err != nil {
			log.Warn("test case execution failed",
				"test_case", tc.ID, "error", err)
			msg := err.Error()
			return checker.TestCaseResult{
				TestCaseID: tc.ID,
				Passed:     false,
				Error:      &msg,
				Hidden:     tc.Hidden,
			}
		}
		res.Stdout = screener.SanitizeOutput(res.Stdout, e.cfg.MaxOutBytes)
		res.Stderr = screener.SanitizeOutput(res.Stderr, e.cfg.MaxOutBytes)
		if err := e.cache.Store(ctx, fp, res); err != nil {
			log.Warn("cache store failed", "fingerprint", fp, "error", err)
		}
	}

	tcRes := checker.TestCaseResult{
		TestCaseID:   tc.ID,
		ActualOutput: res.Stdout,
		CpuMs:        res.CpuMs,
		Hidden:       tc.Hidden,
	}
	if !res.Success {
		msg := string(res.Status)
		if res.Stderr != "" {
			msg = msg + ": " + res.Stderr
		}
		tcRes.Error = &msg
		return tcRes
	}
	tcRes.Passed = checker.Compare(res.Stdout, tc.Expected, opts)
	return tcRes
}

func (e *ExecSrvc) lookupTestResult(ctx context.Context, fp string) (engine.Result, bool) {
	cached, err := e.cache.Lookup(ctx, fp)
	if err != nil {
		e.logger.Warn("cache lookup failed", "fingerprint", fp, "error", err)
		return engine.Result{}, false
	}
	if cached == nil {
		return engine.Result{}, false
	}
	return *cached, true
}
