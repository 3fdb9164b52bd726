package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/execpipe/backend/execsrvc"
)

type apiClient struct {
	baseURL string
	token   string
	httpc   *http.Client
}

func newApiClient(baseURL string, token string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		token:   token,
		// covers submit plus the server-side poll loop
		httpc: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *apiClient) execute(req execsrvc.ExecRequest) (*execsrvc.ExecResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost,
		c.baseURL+"/executions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.token)

	httpResp, err := c.httpc.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	var envelope struct {
		Status  string                `json:"status"`
		Data    execsrvc.ExecResponse `json:"data"`
		ErrCode string                `json:"code"`
		ErrMsg  string                `json:"message"`
	}
	if err := json.NewDecoder(httpResp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if envelope.Status != "success" {
		return nil, fmt.Errorf("%s (%s)", envelope.ErrMsg, envelope.ErrCode)
	}
	return &envelope.Data, nil
}
