// Package engine implements the client side of the remote execution
// engine protocol: submit source code, poll the submission token
// until a terminal status, and normalize the outcome.
package engine

// ExitStatus classifies the terminal outcome of a sandbox run.
type ExitStatus string

const (
	StatusAccepted     ExitStatus = "accepted"
	StatusWrongAnswer  ExitStatus = "wrong_answer"
	StatusCompileError ExitStatus = "compilation_error"
	StatusRuntimeError ExitStatus = "runtime_error"
	StatusTimeout      ExitStatus = "timeout"
	StatusError        ExitStatus = "error"
)

// Result is produced once per (code, language, stdin) triple and is
// immutable after construction.
type Result struct {
	Success bool       `json:"success"`
	Stdout  string     `json:"stdout"`
	Stderr  string     `json:"stderr"`
	Status  ExitStatus `json:"exit_status"`
	CpuMs   int64      `json:"cpu_ms"`
	MemKiB  int64      `json:"mem_kib"`
}

// Limits are the resource ceilings passed to the engine for one run.
// Zero values fall back to the client defaults. Network access is
// always disabled.
type Limits struct {
	CpuSecs float64
	MemKiB  int
}

// engine status ids. Ids below terminalThreshold mean the run is
// still queued or executing.
const (
	engStatusInQueue      = 1
	engStatusProcessing   = 2
	engStatusAccepted     = 3
	engStatusWrongAnswer  = 4
	engStatusTimeLimit    = 5
	engStatusCompileError = 6
	// 7..12 are runtime error variants (SIGSEGV, SIGXFSZ, SIGFPE,
	// SIGABRT, NZEC, other)
	engStatusInternalError   = 13
	engStatusExecFormatError = 14

	terminalThreshold = engStatusAccepted
)

func isTerminal(statusID int) bool {
	return statusID >= terminalThreshold
}

// mapStatus converts an engine status id into our exit status enum.
func mapStatus(statusID int) ExitStatus {
	switch {
	case statusID == engStatusAccepted:
		return StatusAccepted
	case statusID == engStatusWrongAnswer:
		return StatusWrongAnswer
	case statusID == engStatusTimeLimit:
		return StatusTimeout
	case statusID == engStatusCompileError:
		return StatusCompileError
	case statusID >= 7 && statusID <= 12:
		return StatusRuntimeError
	default:
		return StatusError
	}
}
