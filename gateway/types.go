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

// Package gateway is the orchestration core of LexGate: it resolves
// normalized search requests to legal backend calls, fans unified
// searches out across court sources, substitutes labeled fallback
// results for unreachable backends, and exposes the HTTP façade.
package gateway

import (
	"lexgate/backends/base"
)

// SearchRequest is one normalized inbound search. Operation selects
// the backend set; CourtTypes narrows the unified Bedesten search.
type SearchRequest struct {
	Operation  string                 `json:"operation"`
	CourtTypes []string               `json:"court_types,omitempty"`
	Params     map[string]interface{} `json:"params"`
	PageNumber int                    `json:"page_number,omitempty"`
	PageSize   int                    `json:"page_size,omitempty"`

	RequestID string `json:"-"`
}

// SearchResult is the outcome for one backend consulted. A unified
// search yields one per court type, in the caller's requested order.
// IsFallback distinguishes "backend unreachable" from "no results":
// fallback results always carry a non-empty Error and placeholder
// items, never real data.
type SearchResult struct {
	Source     string                 `json:"source"`
	Items      []base.DocumentSummary `json:"items"`
	TotalCount int                    `json:"total_count"`
	PageNumber int                    `json:"page_number"`
	PageSize   int                    `json:"page_size"`
	IsFallback bool                   `json:"is_fallback"`
	Error      string                 `json:"error,omitempty"`
}
