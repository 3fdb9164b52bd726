package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeEngine is an in-memory stand-in for the remote execution
// engine. Behavior per submission is keyed on the submitted stdin.
type fakeEngine struct {
	mu          sync.Mutex
	submissions map[string]submitRequest
	nextToken   int

	// pollsUntilTerminal is how many times a token reports
	// "processing" before turning terminal
	pollsUntilTerminal int
	polled             map[string]int

	submitCalls int
	pollCalls   int

	// submitFailures responds with this status code to the first
	// N submit calls
	submitFailures     int
	submitFailureCode  int
	terminalForStdin   func(stdin string) pollResponse
	neverReachTerminal bool
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		submissions: map[string]submitRequest{},
		polled:      map[string]int{},
		terminalForStdin: func(stdin string) pollResponse {
			return acceptedResponse("ok\n", "0.042", 2048)
		},
	}
}

func acceptedResponse(stdout, timeSecs string, memKiB int64) pollResponse {
	var resp pollResponse
	resp.Status.ID = engStatusAccepted
	resp.Status.Description = "Accepted"
	resp.Stdout = &stdout
	resp.Time = &timeSecs
	resp.Memory = &memKiB
	return resp
}

func (f *fakeEngine) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /submissions", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.submitCalls++
		if f.submitFailures > 0 {
			f.submitFailures--
			w.WriteHeader(f.submitFailureCode)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.nextToken++
		token := fmt.Sprintf("tok-%d", f.nextToken)
		f.submissions[token] = req
		json.NewEncoder(w).Encode(submitResponse{Token: token})
	})
	mux.HandleFunc("GET /submissions/{token}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.pollCalls++
		token := r.PathValue("token")
		subm, ok := f.submissions[token]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.polled[token]++
		if f.neverReachTerminal || f.polled[token] <= f.pollsUntilTerminal {
			var resp pollResponse
			resp.Status.ID = engStatusProcessing
			resp.Status.Description = "Processing"
			json.NewEncoder(w).Encode(resp)
			return
		}
		json.NewEncoder(w).Encode(f.terminalForStdin(subm.Stdin))
	})
	return mux
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(slog.Default(), Config{
		BaseURL:         baseURL,
		ApiKey:          "test-key",
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 5,
		MaxHttpAttempts: 3,
		BackoffBase:     time.Millisecond,
	})
}

func TestExecuteHappyPath(t *testing.T) {
	fake := newFakeEngine()
	fake.pollsUntilTerminal = 2
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "some input", Limits{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, StatusAccepted, res.Status)
	require.Equal(t, "ok\n", res.Stdout)
	require.Equal(t, int64(42), res.CpuMs)
	require.Equal(t, int64(2048), res.MemKiB)
	require.Equal(t, 1, fake.submitCalls)
	require.Equal(t, 3, fake.pollCalls)
}

func TestExecuteSendsLimitsAndDisablesNetwork(t *testing.T) {
	fake := newFakeEngine()
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "", Limits{CpuSecs: 1.5, MemKiB: 65536})
	require.NoError(t, err)

	require.Len(t, fake.submissions, 1)
	for _, subm := range fake.submissions {
		require.Equal(t, 71, subm.LanguageID)
		require.Equal(t, 1.5, subm.CpuTimeLimit)
		require.Equal(t, 65536, subm.MemoryLimit)
		require.False(t, subm.EnableNetwork)
	}
}

func TestExecuteRetriesTransientSubmitFailure(t *testing.T) {
	fake := newFakeEngine()
	fake.submitFailures = 2
	fake.submitFailureCode = http.StatusServiceUnavailable
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "", Limits{})
	require.NoError(t, err)
	require.True(t, res.Success)
	require.Equal(t, 3, fake.submitCalls)
}

func TestExecuteGivesUpAfterRetryCap(t *testing.T) {
	fake := newFakeEngine()
	fake.submitFailures = 100
	fake.submitFailureCode = http.StatusServiceUnavailable
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "", Limits{})
	require.Error(t, err)
	requireErrCode(t, err, ErrCodeEngineUnavailable)
	require.Equal(t, 3, fake.submitCalls)
}

func TestExecuteAuthFailureIsFatalAndNotRetried(t *testing.T) {
	fake := newFakeEngine()
	fake.submitFailures = 100
	fake.submitFailureCode = http.StatusUnauthorized
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "", Limits{})
	require.Error(t, err)
	requireErrCode(t, err, ErrCodeEngineAuthFailure)
	require.Equal(t, 1, fake.submitCalls)
}

func TestExecutePollCapYieldsTimeout(t *testing.T) {
	fake := newFakeEngine()
	fake.neverReachTerminal = true
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Execute(context.Background(),
		"print(1)", "python3.11", "", Limits{})
	require.Error(t, err)
	requireErrCode(t, err, ErrCodeExecutionTimeout)
	require.Equal(t, 5, fake.pollCalls)
}

func TestExecuteUnsupportedLanguage(t *testing.T) {
	c := newTestClient(t, "http://unused.invalid")
	_, err := c.Execute(context.Background(),
		"print(1)", "cobol74", "", Limits{})
	require.Error(t, err)
	requireErrCode(t, err, ErrCodeUnsupportedLanguage)
}

func TestExecuteCompileErrorUsesCompileOutput(t *testing.T) {
	fake := newFakeEngine()
	fake.terminalForStdin = func(string) pollResponse {
		var resp pollResponse
		resp.Status.ID = engStatusCompileError
		resp.Status.Description = "Compilation Error"
		msg := "main.go:3: syntax error"
		resp.CompileOutput = &msg
		return resp
	}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	res, err := c.Execute(context.Background(),
		"pr int(1)", "python3.11", "", Limits{})
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Equal(t, StatusCompileError, res.Status)
	require.Contains(t, res.Stderr, "syntax error")
}

func TestStatusMapping(t *testing.T) {
	cases := map[int]ExitStatus{
		3:  StatusAccepted,
		4:  StatusWrongAnswer,
		5:  StatusTimeout,
		6:  StatusCompileError,
		7:  StatusRuntimeError,
		11: StatusRuntimeError,
		12: StatusRuntimeError,
		13: StatusError,
		14: StatusError,
	}
	for id, want := range cases {
		require.Equal(t, want, mapStatus(id), "status id %d", id)
	}
	require.False(t, isTerminal(1))
	require.False(t, isTerminal(2))
	require.True(t, isTerminal(3))
}

func requireErrCode(t *testing.T, err error, code string) {
	t.Helper()
	var classified interface{ ErrorCode() string }
	require.ErrorAs(t, err, &classified)
	require.Equal(t, code, classified.ErrorCode())
}
