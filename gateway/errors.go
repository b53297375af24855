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

package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// Error types used in the standardized error envelope
const (
	errTypeBadRequest       = "bad_request"
	errTypeUnknownOperation = "unknown_operation"
	errTypeNotFound         = "not_found"
	errTypeUpstream         = "upstream_error"
	errTypeUpstreamTimeout  = "upstream_timeout"
	errTypeModelExhausted   = "model_exhausted"
	errTypeInternal         = "internal_error"
)

// errorResponse is the JSON envelope for every non-2xx response.
// Degraded sub-sources never use it: those come back as fallback
// search results inside a 200.
type errorResponse struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	StatusCode int    `json:"status_code"`
	Timestamp  string `json:"timestamp"`
	RequestID  string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, requestID string, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Type:       errType,
		Message:    message,
		StatusCode: status,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		RequestID:  requestID,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
