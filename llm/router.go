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
	"context"
	"errors"
	"time"

	"lexgate/shared/logger"
	"lexgate/usage"
)

// Per-request routing states. A request starts Idle, moves to
// Attempting for each model in the chain, and ends Succeeded or
// Exhausted.
type routeState string

const (
	stateIdle       routeState = "idle"
	stateAttempting routeState = "attempting"
	stateSucceeded  routeState = "succeeded"
	stateExhausted  routeState = "exhausted"
)

const systemPromptTerse = `You are a Turkish legal research assistant. Answer the user's question ` +
	`concisely using Turkish legal terminology where appropriate. If you are not certain, say so.`

const systemPromptDetailed = `You are a Turkish legal research assistant. Provide a thorough answer: ` +
	`cite the relevant statutes by number and article (e.g. 5237 sayılı TCK m. 157), summarize the ` +
	`controlling case law where known, and separate established law from interpretation. ` +
	`If you are not certain, say so.`

// defaultAttemptTimeout bounds a single model attempt. Failures are
// assumed model-specific, so there is no within-model retry; the chain
// advances instead.
const defaultAttemptTimeout = 30 * time.Second

// Router tries models in a deterministic fallback chain until one
// produces a completion or the chain is exhausted. Every attempt is
// recorded with the usage tracker, failed ones at zero cost.
type Router struct {
	catalog        *Catalog
	client         CompletionClient
	tracker        *usage.Tracker
	attemptTimeout time.Duration
	logger         *logger.Logger
}

// NewRouter creates a router over the given catalog and client
func NewRouter(catalog *Catalog, client CompletionClient, tracker *usage.Tracker) *Router {
	return &Router{
		catalog:        catalog,
		client:         client,
		tracker:        tracker,
		attemptTimeout: defaultAttemptTimeout,
		logger:         logger.New("llm-router"),
	}
}

// SetAttemptTimeout overrides the per-model deadline
func (r *Router) SetAttemptTimeout(d time.Duration) {
	r.attemptTimeout = d
}

// Catalog exposes the router's model catalog
func (r *Router) Catalog() *Catalog {
	return r.catalog
}

// Complete runs the fallback chain for one request. On success it
// returns the winning model's output; if every model fails it returns
// a *ModelExhaustedError listing each attempt's failure reason.
func (r *Router) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	chain := r.catalog.Chain(req.RequestedModel)

	systemPrompt := systemPromptTerse
	if req.Detailed {
		systemPrompt = systemPromptDetailed
	}

	state := stateIdle
	failures := make([]AttemptFailure, 0, len(chain))

	for _, model := range chain {
		state = stateAttempting
		r.logger.Debug(req.RequestID, "Attempting model", map[string]interface{}{
			"model": model.ID,
			"state": string(state),
		})

		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		start := time.Now()
		result, err := r.client.Complete(attemptCtx, model.ID, systemPrompt, req.Query)
		latency := time.Since(start)
		cancel()

		if err != nil {
			reason := failureReason(err)
			failures = append(failures, AttemptFailure{ModelID: model.ID, Reason: reason})

			// Failed attempts are recorded at zero cost so operators
			// can audit provider reliability.
			r.tracker.Record(usage.Record{
				RequestID:     req.RequestID,
				ModelID:       model.ID,
				Succeeded:     false,
				FailureReason: reason,
			})

			r.logger.Warn(req.RequestID, "Model attempt failed, advancing chain", map[string]interface{}{
				"model":  model.ID,
				"reason": reason,
			})

			// The caller gave up; the chain was not exhausted, the
			// request was abandoned.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}

		state = stateSucceeded
		cost := usage.CostUSD(model.InputCostPerMTok, model.OutputCostPerMTok, result.InputTokens, result.OutputTokens)

		r.tracker.Record(usage.Record{
			RequestID:    req.RequestID,
			ModelID:      model.ID,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			CostUSD:      cost,
			Succeeded:    true,
		})

		r.logger.InfoWithDuration(req.RequestID, "Completion served", float64(latency.Milliseconds()), map[string]interface{}{
			"model":    model.ID,
			"state":    string(state),
			"cost_usd": cost,
		})

		return &CompletionResponse{
			Text:         result.Text,
			ModelID:      model.ID,
			InputTokens:  result.InputTokens,
			OutputTokens: result.OutputTokens,
			CostUSD:      cost,
			Latency:      latency,
		}, nil
	}

	state = stateExhausted
	r.logger.Error(req.RequestID, "All models exhausted", map[string]interface{}{
		"state":    string(state),
		"attempts": len(failures),
	})

	return nil, &ModelExhaustedError{Attempts: failures}
}

// failureReason extracts a short machine-readable reason for a failed
// attempt.
func failureReason(err error) string {
	var pe *ProviderError
	if errors.As(err, &pe) {
		if pe.Code != "" {
			return pe.Code + ": " + pe.Message
		}
		return pe.Message
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrCodeTimeout
	}
	return err.Error()
}
