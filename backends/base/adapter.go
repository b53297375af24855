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

package base

import (
	"context"
	"errors"
	"time"
)

// Category identifies the kind of legal source an adapter fronts
type Category string

const (
	CategoryCourt       Category = "court"
	CategoryLegislation Category = "legislation"
)

// Adapter defines the interface every legal data backend must implement.
// One adapter instance fronts one upstream source (a court database or
// the legislation service).
type Adapter interface {
	// Search runs a paginated search against the upstream source
	Search(ctx context.Context, query *SearchQuery) (*SearchPage, error)

	// Document fetches one document as Markdown, paginated for sources
	// that split long decisions into pages
	Document(ctx context.Context, req *DocumentRequest) (*Document, error)

	// HealthCheck probes upstream reachability
	HealthCheck(ctx context.Context) (*HealthStatus, error)

	// Metadata
	Name() string           // Unique adapter instance name (emsal, anayasa, ...)
	Category() Category     // court or legislation
	Capabilities() []string // search, document, article_tree
}

// SearchQuery represents one search against one upstream source.
// Params carries only fields already validated against the source's
// schema; adapters forward them as-is.
type SearchQuery struct {
	Params     map[string]interface{} `json:"params"`
	PageNumber int                    `json:"page_number"`
	PageSize   int                    `json:"page_size"`
}

// DocumentSummary is one hit in a search result page
type DocumentSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Chamber      string `json:"chamber,omitempty"`
	DecisionDate string `json:"decision_date,omitempty"`
	Excerpt      string `json:"excerpt,omitempty"`
	URL          string `json:"url,omitempty"`
}

// SearchPage contains one page of results from one source
type SearchPage struct {
	Items      []DocumentSummary `json:"items"`
	TotalCount int               `json:"total_count"`
	PageNumber int               `json:"page_number"`
	PageSize   int               `json:"page_size"`
	Duration   time.Duration     `json:"duration"`
	Source     string            `json:"source"`
}

// DocumentRequest identifies one document to fetch
type DocumentRequest struct {
	ID         string            `json:"id"`
	URL        string            `json:"url,omitempty"`         // some sources address documents by URL
	PageNumber int               `json:"page_number,omitempty"` // 1-based, for paginated sources
	Options    map[string]string `json:"options,omitempty"`     // source-specific addressing (e.g. decision_type)
}

// Document is one retrieved document rendered as Markdown
type Document struct {
	ID         string `json:"id"`
	Source     string `json:"source"`
	Title      string `json:"title,omitempty"`
	Markdown   string `json:"markdown"`
	PageNumber int    `json:"page_number"`
	TotalPages int    `json:"total_pages"`
	SourceURL  string `json:"source_url,omitempty"`
}

// HealthStatus represents the health of an adapter's upstream
type HealthStatus struct {
	Healthy   bool              `json:"healthy"`
	Latency   time.Duration     `json:"latency"`
	Details   map[string]string `json:"details,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Error     string            `json:"error,omitempty"`
}

// BackendError represents a failed call to an upstream legal source
type BackendError struct {
	Source    string
	Operation string
	Message   string
	Timeout   bool
	Cause     error
}

func (e *BackendError) Error() string {
	if e.Cause != nil {
		return e.Source + "." + e.Operation + ": " + e.Message + " (cause: " + e.Cause.Error() + ")"
	}
	return e.Source + "." + e.Operation + ": " + e.Message
}

func (e *BackendError) Unwrap() error {
	return e.Cause
}

// NewBackendError creates a new BackendError
func NewBackendError(source, operation, message string, cause error) *BackendError {
	return &BackendError{
		Source:    source,
		Operation: operation,
		Message:   message,
		Cause:     cause,
	}
}

// NewBackendTimeout creates a BackendError marked as a deadline failure
func NewBackendTimeout(source, operation string, cause error) *BackendError {
	return &BackendError{
		Source:    source,
		Operation: operation,
		Message:   "deadline exceeded",
		Timeout:   true,
		Cause:     cause,
	}
}

// IsTimeout reports whether err is a backend deadline failure
func IsTimeout(err error) bool {
	var be *BackendError
	if errors.As(err, &be) && be.Timeout {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
