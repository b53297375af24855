// Copyright 2025 LexGate
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ToolClient invokes named tools on a tool server over HTTP. The
// yargi and mevzuat tool servers share the same call envelope, so one
// client type fronts both.
type ToolClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewToolClient creates a client for a tool server. Per-call deadlines
// come from the caller's context; the HTTP client timeout is a
// backstop against leaked connections.
func NewToolClient(baseURL string) *ToolClient {
	return &ToolClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        50,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// ToolCallRequest is the wire shape of one tool invocation
type ToolCallRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type toolCallResponse struct {
	Result  json.RawMessage `json:"result"`
	IsError bool            `json:"is_error"`
	Error   string          `json:"error,omitempty"`
}

// Call invokes one tool and decodes its result into out
func (c *ToolClient) Call(ctx context.Context, tool string, args map[string]interface{}, out interface{}) error {
	body, err := json.Marshal(ToolCallRequest{Name: tool, Arguments: args})
	if err != nil {
		return fmt.Errorf("failed to encode tool call '%s': %w", tool, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tools/call", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build tool call '%s': %w", tool, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tool call '%s' failed: %w", tool, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return fmt.Errorf("failed to read tool call '%s' response: %w", tool, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tool call '%s' returned status %d: %s", tool, resp.StatusCode, truncate(string(data), 200))
	}

	var envelope toolCallResponse
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("malformed tool call '%s' response: %w", tool, err)
	}
	if envelope.IsError {
		return fmt.Errorf("tool '%s' reported error: %s", tool, envelope.Error)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode tool '%s' result: %w", tool, err)
		}
	}
	return nil
}

// Health probes the tool server's health endpoint and returns the
// round-trip latency.
func (c *ToolClient) Health(ctx context.Context) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		return latency, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	if resp.StatusCode != http.StatusOK {
		return latency, fmt.Errorf("tool server health returned status %d", resp.StatusCode)
	}
	return latency, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
