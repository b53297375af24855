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

package usage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"lexgate/backends/sdk"
)

const createUsageTableSQL = `
CREATE TABLE IF NOT EXISTS llm_usage_events (
    id BIGSERIAL PRIMARY KEY,
    request_id TEXT,
    model_id TEXT NOT NULL,
    input_tokens INTEGER NOT NULL DEFAULT 0,
    output_tokens INTEGER NOT NULL DEFAULT 0,
    cost_cents BIGINT NOT NULL DEFAULT 0,
    succeeded BOOLEAN NOT NULL,
    failure_reason TEXT,
    created_at TIMESTAMPTZ NOT NULL
)`

const insertUsageEventSQL = `
INSERT INTO llm_usage_events
    (request_id, model_id, input_tokens, output_tokens, cost_cents, succeeded, failure_reason, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// PostgresSink persists usage records to PostgreSQL for durable cost
// accounting across restarts.
type PostgresSink struct {
	db    *sql.DB
	retry *sdk.RetryConfig
}

// NewPostgresSink opens a connection pool and ensures the events table
// exists.
func NewPostgresSink(dbURL string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open usage database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping usage database: %w", err)
	}

	sink := &PostgresSink{db: db, retry: sdk.DefaultRetryConfig()}
	if _, err := db.Exec(createUsageTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create usage table: %w", err)
	}
	return sink, nil
}

// NewPostgresSinkWithDB wraps an existing database handle. Schema setup
// is the caller's responsibility.
func NewPostgresSinkWithDB(db *sql.DB) *PostgresSink {
	return &PostgresSink{db: db, retry: sdk.DefaultRetryConfig()}
}

// Write inserts one usage record, retrying transient failures
func (s *PostgresSink) Write(ctx context.Context, record *Record) error {
	return sdk.RetryVoid(ctx, s.retry, func() error {
		_, err := s.db.ExecContext(ctx, insertUsageEventSQL,
			nullableString(record.RequestID),
			record.ModelID,
			record.InputTokens,
			record.OutputTokens,
			CentsFromUSD(record.CostUSD),
			record.Succeeded,
			nullableString(record.FailureReason),
			record.Timestamp,
		)
		return err
	})
}

// Close releases the connection pool
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
