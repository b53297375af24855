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

// Package usage tracks LLM completion attempts for cost accounting.
// Every attempt is recorded, including failures at zero cost, so the
// summary reflects what was actually tried rather than what succeeded.
package usage

import (
	"context"
	"sync"
	"time"

	"lexgate/shared/logger"
)

// Record captures one completion attempt against one model
type Record struct {
	RequestID     string    `json:"request_id,omitempty"`
	ModelID       string    `json:"model_id"`
	InputTokens   int       `json:"input_tokens"`
	OutputTokens  int       `json:"output_tokens"`
	CostUSD       float64   `json:"cost_usd"`
	Succeeded     bool      `json:"succeeded"`
	FailureReason string    `json:"failure_reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// ModelUsage aggregates records for one model
type ModelUsage struct {
	Attempts     int     `json:"attempts"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	CostUSD      float64 `json:"cost_usd"`
}

// Summary is a point-in-time aggregation of the usage log
type Summary struct {
	Since         time.Time              `json:"since,omitempty"`
	Attempts      int                    `json:"attempts"`
	Succeeded     int                    `json:"succeeded"`
	Failed        int                    `json:"failed"`
	InputTokens   int                    `json:"input_tokens"`
	OutputTokens  int                    `json:"output_tokens"`
	TotalCostUSD  float64                `json:"total_cost_usd"`
	TotalCost     string                 `json:"total_cost"`
	PerModel      map[string]*ModelUsage `json:"per_model"`
}

// Sink receives a copy of every record for durable storage
type Sink interface {
	Write(ctx context.Context, record *Record) error
}

// Tracker is an append-only in-memory usage log with optional durable
// sink. Summaries are recomputed from the log on every call, never
// cached incrementally.
type Tracker struct {
	mu      sync.RWMutex
	records []Record
	sink    Sink
	logger  *logger.Logger
}

// NewTracker creates a tracker with no durable sink
func NewTracker() *Tracker {
	return &Tracker{
		logger: logger.New("usage-tracker"),
	}
}

// NewTrackerWithSink creates a tracker that forwards every record to
// the sink. Sink failures are logged and never surface to callers.
func NewTrackerWithSink(sink Sink) *Tracker {
	t := NewTracker()
	t.sink = sink
	return t
}

// Record appends one attempt to the log
func (t *Tracker) Record(record Record) {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	t.mu.Lock()
	t.records = append(t.records, record)
	t.mu.Unlock()

	if t.sink != nil {
		// Best-effort: accounting must not block or fail the request path
		go func(r Record) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := t.sink.Write(ctx, &r); err != nil {
				t.logger.Error(r.RequestID, "Failed to persist usage record", map[string]interface{}{
					"model": r.ModelID,
					"error": err.Error(),
				})
			}
		}(record)
	}
}

// Summary recomputes aggregate usage from the log. Records with a
// timestamp before since are excluded; a zero since includes everything.
func (t *Tracker) Summary(since time.Time) *Summary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := &Summary{
		Since:    since,
		PerModel: make(map[string]*ModelUsage),
	}

	for i := range t.records {
		r := &t.records[i]
		if !since.IsZero() && r.Timestamp.Before(since) {
			continue
		}

		mu, ok := summary.PerModel[r.ModelID]
		if !ok {
			mu = &ModelUsage{}
			summary.PerModel[r.ModelID] = mu
		}

		summary.Attempts++
		mu.Attempts++
		if r.Succeeded {
			summary.Succeeded++
			mu.Succeeded++
		} else {
			summary.Failed++
			mu.Failed++
		}
		summary.InputTokens += r.InputTokens
		summary.OutputTokens += r.OutputTokens
		summary.TotalCostUSD += r.CostUSD
		mu.InputTokens += r.InputTokens
		mu.OutputTokens += r.OutputTokens
		mu.CostUSD += r.CostUSD
	}

	summary.TotalCost = FormatUSD(summary.TotalCostUSD)
	return summary
}

// Records returns a snapshot copy of the log
func (t *Tracker) Records() []Record {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Count returns the number of recorded attempts
func (t *Tracker) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}
