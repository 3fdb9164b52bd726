package engine

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/execpipe/backend/planglist"
)

type Config struct {
	BaseURL string // e.g. http://engine.internal:2358
	ApiKey  string

	PollInterval    time.Duration // wait between status polls
	MaxPollAttempts int           // hard cap before ExecutionTimeout

	MaxHttpAttempts int           // submit/poll transport retries
	BackoffBase     time.Duration // first retry delay, doubled per attempt

	DefaultCpuSecs float64
	DefaultMemKiB  int

	HttpTimeout time.Duration
}

const (
	defaultPollInterval    = 500 * time.Millisecond
	defaultMaxPollAttempts = 20
	defaultMaxHttpAttempts = 3
	defaultBackoffBase     = 1 * time.Second
	defaultCpuSecs         = 2.0
	defaultMemKiB          = 128 * 1024
	defaultHttpTimeout     = 10 * time.Second
)

// Client talks to the remote execution engine. All retry and backoff
// state is local to a single call; a Client is safe for concurrent
// use.
type Client struct {
	logger *slog.Logger
	httpc  *http.Client
	cfg    Config
}

func NewClient(logger *slog.Logger, cfg Config) *Client {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = defaultMaxPollAttempts
	}
	if cfg.MaxHttpAttempts <= 0 {
		cfg.MaxHttpAttempts = defaultMaxHttpAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.DefaultCpuSecs <= 0 {
		cfg.DefaultCpuSecs = defaultCpuSecs
	}
	if cfg.DefaultMemKiB <= 0 {
		cfg.DefaultMemKiB = defaultMemKiB
	}
	if cfg.HttpTimeout <= 0 {
		cfg.HttpTimeout = defaultHttpTimeout
	}
	return &Client{
		logger: logger.With("module", "engine"),
		httpc:  &http.Client{Timeout: cfg.HttpTimeout},
		cfg:    cfg,
	}
}

// Execute runs source code against one stdin on the remote engine:
// submit, poll until terminal, format. The sandboxed program itself
// is never re-run; only the transport calls are retried.
func (c *Client) Execute(
	ctx context.Context,
	srcCode string,
	langID string,
	stdin string,
	limits Limits,
) (Result, error) {
	lang, err := planglist.GetProgrammingLanguageById(langID)
	if err != nil {
		return Result{}, ErrUnsupportedLanguage().SetDebug(err)
	}

	if limits.CpuSecs <= 0 {
		limits.CpuSecs = c.cfg.DefaultCpuSecs
	}
	if limits.MemKiB <= 0 {
		limits.MemKiB = c.cfg.DefaultMemKiB
	}

	token, err := c.submit(ctx, submitRequest{
		SourceCode:    srcCode,
		LanguageID:    lang.EngineID,
		Stdin:         stdin,
		CpuTimeLimit:  limits.CpuSecs,
		MemoryLimit:   limits.MemKiB,
		EnableNetwork: false,
	})
	if err != nil {
		return Result{}, err
	}

	for attempt := 0; attempt < c.cfg.MaxPollAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.cfg.PollInterval):
			case <-ctx.Done():
				return Result{}, ErrExecutionTimeout().SetDebug(ctx.Err())
			}
		}

		resp, err := c.poll(ctx, token)
		if err != nil {
			return Result{}, err
		}
		if !isTerminal(resp.Status.ID) {
			continue
		}
		return formatResult(resp), nil
	}

	c.logger.Warn("submission never reached terminal status",
		"token", token, "attempts", c.cfg.MaxPollAttempts)
	return Result{}, ErrExecutionTimeout()
}

// formatResult normalizes an engine poll response: cpu time from
// decimal seconds to milliseconds, compile output into stderr for
// compilation errors.
func formatResult(resp pollResponse) Result {
	status := mapStatus(resp.Status.ID)

	res := Result{
		Success: status == StatusAccepted,
		Status:  status,
	}
	if resp.Stdout != nil {
		res.Stdout = *resp.Stdout
	}
	if resp.Stderr != nil {
		res.Stderr = *resp.Stderr
	}
	if status == StatusCompileError && resp.CompileOutput != nil {
		res.Stderr = *resp.CompileOutput
	}
	if resp.Time != nil {
		if secs, err := strconv.ParseFloat(*resp.Time, 64); err == nil {
			res.CpuMs = int64(secs * 1000)
		}
	}
	if resp.Memory != nil {
		res.MemKiB = *resp.Memory
	}
	return res
}
