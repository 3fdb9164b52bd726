package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type submitRequest struct {
	SourceCode    string  `json:"source_code"`
	LanguageID    int     `json:"language_id"`
	Stdin         string  `json:"stdin,omitempty"`
	CpuTimeLimit  float64 `json:"cpu_time_limit"`
	MemoryLimit   int     `json:"memory_limit"` // KiB
	EnableNetwork bool    `json:"enable_network"`
}

type submitResponse struct {
	Token string `json:"token"`
}

type pollResponse struct {
	Status struct {
		ID          int    `json:"id"`
		Description string `json:"description"`
	} `json:"status"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Time          *string `json:"time"`   // cpu seconds, decimal string
	Memory        *int64  `json:"memory"` // KiB
}

func (c *Client) submit(ctx context.Context, req submitRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", ErrEngineUnavailable().SetDebug(
			fmt.Errorf("failed to marshal submit request: %w", err))
	}

	var resp submitResponse
	url := c.cfg.BaseURL + "/submissions"
	if err := c.doJSON(ctx, http.MethodPost, url, body, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", ErrEngineUnavailable().SetDebug(
			fmt.Errorf("engine returned empty submission token"))
	}
	return resp.Token, nil
}

func (c *Client) poll(ctx context.Context, token string) (pollResponse, error) {
	var resp pollResponse
	url := c.cfg.BaseURL + "/submissions/" + token
	if err := c.doJSON(ctx, http.MethodGet, url, nil, &resp); err != nil {
		return pollResponse{}, err
	}
	return resp, nil
}

// doJSON performs one logical engine call, retrying transient
// transport failures (connection errors, 429, 5xx) with exponential
// backoff. Auth failures and other 4xx responses fail immediately.
func (c *Client) doJSON(
	ctx context.Context,
	method string,
	url string,
	body []byte,
	out any,
) error {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxHttpAttempts; attempt++ {
		if attempt > 0 {
			delay := c.cfg.BackoffBase << (attempt - 1)
			c.logger.Debug("retrying engine call",
				"url", url, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ErrEngineUnavailable().SetDebug(ctx.Err())
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return ErrEngineUnavailable().SetDebug(err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.cfg.ApiKey != "" {
			req.Header.Set("X-Auth-Token", c.cfg.ApiKey)
		}

		httpResp, err := c.httpc.Do(req)
		if err != nil {
			// connection-level failure, worth retrying
			lastErr = err
			continue
		}

		done, err := c.handleResponse(httpResp, out)
		if done {
			return err
		}
		lastErr = err
	}

	return ErrEngineUnavailable().SetDebug(
		fmt.Errorf("engine call failed after %d attempts: %w",
			c.cfg.MaxHttpAttempts, lastErr))
}

// handleResponse consumes one HTTP response. done=false means the
// caller should retry.
func (c *Client) handleResponse(resp *http.Response, out any) (done bool, err error) {
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK ||
		resp.StatusCode == http.StatusCreated:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return true, ErrEngineUnavailable().SetDebug(
				fmt.Errorf("failed to decode engine response: %w", err))
		}
		return true, nil

	case resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden:
		// misconfiguration, not a transient condition
		c.logger.Error("engine rejected credentials",
			"status", resp.StatusCode)
		return true, ErrEngineAuthFailure().SetDebug(
			fmt.Errorf("engine returned status %d", resp.StatusCode))

	case resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode >= 500:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("engine returned status %d: %s",
			resp.StatusCode, string(b))

	default: // remaining 4xx, not retryable
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return true, ErrEngineUnavailable().SetDebug(
			fmt.Errorf("engine rejected request with status %d: %s",
				resp.StatusCode, string(b)))
	}
}
