package execsrvc

import (
	"time"

	"github.com/google/uuid"

	"github.com/execpipe/backend/checker"
	"github.com/execpipe/backend/engine"
)

// ExecRequest is one single-run execution request. Immutable once
// constructed; owned by the orchestrator for the lifetime of a call.
type ExecRequest struct {
	SrcCode string `json:"src_code"`
	LangID  string `json:"lang_id"`
	Stdin   string `json:"stdin"`
}

// TestCase is supplied by the caller. The pipeline never persists
// test cases, only results.
type TestCase struct {
	ID       int     `json:"id"`
	Input    string  `json:"input"`
	Expected string  `json:"expected_output"`
	Hidden   bool    `json:"is_hidden"`
	Weight   float64 `json:"weight"`
}

// BatchRequest runs one program against an ordered list of test
// cases.
type BatchRequest struct {
	SrcCode   string     `json:"src_code"`
	LangID    string     `json:"lang_id"`
	TestCases []TestCase `json:"test_cases"`

	// comparison options, see checker.Options
	Strict     bool `json:"strict"`
	IgnoreCase bool `json:"ignore_case"`
}

// ExecResponse is the outcome of a single run.
type ExecResponse struct {
	ExecID uuid.UUID `json:"exec_id"`
	engine.Result
	Cached bool `json:"cached"`
}

// ExecLogRecord is the best-effort audit log entry written after a
// completed request.
type ExecLogRecord struct {
	ExecID      uuid.UUID           `json:"exec_id"`
	UserID      string              `json:"user_id"`
	LangID      string              `json:"lang_id"`
	Fingerprint string              `json:"fingerprint"`
	Kind        string              `json:"kind"` // "single" or "batch"
	Result      *engine.Result      `json:"result,omitempty"`
	Report      *checker.TestReport `json:"report,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

func (r *ExecRequest) IsValid(maxFieldBytes int) error {
	if r.SrcCode == "" {
		return ErrInvalidInput("source code is empty")
	}
	if r.LangID == "" {
		return ErrInvalidInput("language id is empty")
	}
	if len(r.Stdin) > maxFieldBytes {
		return ErrInvalidInput("stdin exceeds maximum size")
	}
	return nil
}

func (r *BatchRequest) IsValid(maxTestCases int, maxFieldBytes int) error {
	if r.SrcCode == "" {
		return ErrInvalidInput("source code is empty")
	}
	if r.LangID == "" {
		return ErrInvalidInput("language id is empty")
	}
	if len(r.TestCases) == 0 {
		return ErrInvalidInput("no test cases provided")
	}
	if len(r.TestCases) > maxTestCases {
		return ErrInvalidInput("too many test cases")
	}
	for _, tc := range r.TestCases {
		if len(tc.Input) > maxFieldBytes {
			return ErrInvalidInput("test case input exceeds maximum size")
		}
		if len(tc.Expected) > maxFieldBytes {
			return ErrInvalidInput("test case expected output exceeds maximum size")
		}
	}
	return nil
}
