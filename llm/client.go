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

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ClientResult is the raw outcome of one completion call
type ClientResult struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// CompletionClient issues a single completion call against one model.
// Implementations return *ProviderError for upstream failures so the
// router can record a machine-readable reason per attempt.
type CompletionClient interface {
	Complete(ctx context.Context, modelID, systemPrompt, userPrompt string) (*ClientResult, error)
}

// AggregatorClient talks to an OpenAI-compatible model aggregator.
// All catalog models are served through the same chat-completions
// endpoint; the model id selects the provider.
type AggregatorClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	maxTokens  int
}

// NewAggregatorClient creates a client for the aggregator endpoint.
// The per-attempt deadline is enforced by the router's context; the
// HTTP client timeout is a backstop.
func NewAggregatorClient(endpoint, apiKey string) *AggregatorClient {
	return &AggregatorClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		maxTokens: 2048,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Complete issues one chat completion against the aggregator
func (c *AggregatorClient) Complete(ctx context.Context, modelID, systemPrompt, userPrompt string) (*ClientResult, error) {
	payload := chatRequest{
		Model:       modelID,
		MaxTokens:   c.maxTokens,
		Temperature: 0.1, // legal answers want determinism over creativity
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, NewProviderError(modelID, ErrCodeBadRequest, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, NewProviderError(modelID, ErrCodeBadRequest, fmt.Sprintf("failed to build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &ProviderError{ModelID: modelID, Code: ErrCodeTimeout, Message: "completion deadline exceeded", Cause: err}
		}
		return nil, &ProviderError{ModelID: modelID, Code: ErrCodeUnavailable, Message: "aggregator unreachable", Cause: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, &ProviderError{ModelID: modelID, Code: ErrCodeServerError, Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(modelID, resp.StatusCode, data)
	}

	var parsed chatResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, &ProviderError{ModelID: modelID, Code: ErrCodeServerError, Message: "malformed aggregator response", Cause: err}
	}
	if parsed.Error != nil {
		return nil, NewProviderError(modelID, parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return nil, NewProviderError(modelID, ErrCodeServerError, "aggregator returned no choices")
	}

	return &ClientResult{
		Text:         parsed.Choices[0].Message.Content,
		InputTokens:  parsed.Usage.PromptTokens,
		OutputTokens: parsed.Usage.CompletionTokens,
	}, nil
}

func (c *AggregatorClient) statusError(modelID string, status int, body []byte) *ProviderError {
	message := string(body)
	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		message = parsed.Error.Message
	}

	code := ErrCodeServerError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		code = ErrCodeAuth
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusPaymentRequired:
		code = ErrCodeQuota
	case status == http.StatusTooManyRequests:
		code = ErrCodeRateLimit
	case status == http.StatusServiceUnavailable || status == http.StatusBadGateway:
		code = ErrCodeUnavailable
	case status == http.StatusBadRequest:
		code = ErrCodeBadRequest
	}

	return &ProviderError{
		ModelID:    modelID,
		Code:       code,
		Message:    message,
		StatusCode: status,
	}
}
