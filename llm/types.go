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

// Package llm provides the model catalog, the aggregator completion
// client, and the deterministic fallback-chain router for LLM-assisted
// legal queries.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// ModelDescriptor describes one interchangeable model in the catalog.
// Costs are quoted in USD per million tokens. PriorityRank defines the
// default fallback order: rank 1 is tried first.
type ModelDescriptor struct {
	ID                string  `json:"id" yaml:"id"` // provider/model-name, e.g. openai/gpt-4o
	InputCostPerMTok  float64 `json:"input_cost_per_mtok" yaml:"input_cost_per_mtok"`
	OutputCostPerMTok float64 `json:"output_cost_per_mtok" yaml:"output_cost_per_mtok"`
	PriorityRank      int     `json:"priority_rank" yaml:"priority_rank"`
}

// CompletionRequest is one LLM-assisted query
type CompletionRequest struct {
	// Query is the user's legal question, in Turkish or English
	Query string `json:"query"`

	// RequestedModel overrides the default chain head. Empty means
	// start at the highest-priority catalog model.
	RequestedModel string `json:"requested_model,omitempty"`

	// Detailed switches to the expanded system prompt that asks for
	// statute citations and fuller reasoning.
	Detailed bool `json:"detailed,omitempty"`

	// RequestID correlates usage records with the inbound request
	RequestID string `json:"-"`
}

// CompletionResponse is the result of a successful completion
type CompletionResponse struct {
	Text         string        `json:"text"`
	ModelID      string        `json:"model_id"` // model that actually served the request
	InputTokens  int           `json:"input_tokens"`
	OutputTokens int           `json:"output_tokens"`
	CostUSD      float64       `json:"cost_usd"`
	Latency      time.Duration `json:"latency"`
}

// ProviderError represents a failed completion call against one model
type ProviderError struct {
	ModelID    string `json:"model_id"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code,omitempty"`
	Cause      error  `json:"-"`
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.ModelID, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.ModelID, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeRateLimit   = "rate_limit"
	ErrCodeAuth        = "authentication_error"
	ErrCodeBadRequest  = "invalid_request"
	ErrCodeNotFound    = "model_not_found"
	ErrCodeQuota       = "insufficient_quota"
	ErrCodeServerError = "server_error"
	ErrCodeTimeout     = "timeout"
	ErrCodeUnavailable = "unavailable"
)

// NewProviderError creates a new ProviderError
func NewProviderError(modelID, code, message string) *ProviderError {
	return &ProviderError{
		ModelID: modelID,
		Code:    code,
		Message: message,
	}
}

// AttemptFailure records why one model in the chain failed
type AttemptFailure struct {
	ModelID string `json:"model_id"`
	Reason  string `json:"reason"`
}

// ModelExhaustedError is returned when every model in the fallback
// chain has failed. It carries the attempted model ids and their
// individual failure reasons for diagnostics.
type ModelExhaustedError struct {
	Attempts []AttemptFailure `json:"attempts"`
}

func (e *ModelExhaustedError) Error() string {
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = fmt.Sprintf("%s: %s", a.ModelID, a.Reason)
	}
	return fmt.Sprintf("all %d models exhausted [%s]", len(e.Attempts), strings.Join(parts, "; "))
}

// ModelIDs returns the attempted model ids in chain order
func (e *ModelExhaustedError) ModelIDs() []string {
	ids := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		ids[i] = a.ModelID
	}
	return ids
}
