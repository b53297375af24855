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
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"lexgate/backends/base"
	"lexgate/backends/mevzuat"
	"lexgate/backends/registry"
	"lexgate/llm"
	"lexgate/shared/logger"
	"lexgate/usage"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// Server holds the wired components behind the HTTP façade
type Server struct {
	orchestrator *Orchestrator
	registry     *registry.Registry
	router       *llm.Router
	tracker      *usage.Tracker
	legislation  *mevzuat.LegislationAdapter
	log          *logger.Logger
}

// NewServer wires the HTTP façade over the orchestration core
func NewServer(orch *Orchestrator, reg *registry.Registry, router *llm.Router, tracker *usage.Tracker, legislation *mevzuat.LegislationAdapter) *Server {
	return &Server{
		orchestrator: orch,
		registry:     reg,
		router:       router,
		tracker:      tracker,
		legislation:  legislation,
		log:          logger.New("gateway"),
	}
}

// Routes registers every endpoint on a gorilla router
func (s *Server) Routes(r *mux.Router) {
	r.Use(s.requestIDMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")

	r.HandleFunc("/api/v1/search", s.handleSearch).Methods("POST")
	r.HandleFunc("/api/v1/documents/{source}/{id}", s.handleDocument).Methods("GET")
	r.HandleFunc("/api/v1/legislation/{id}/structure", s.handleArticleTree).Methods("GET")
	r.HandleFunc("/api/v1/legislation/types", s.handleLegislationTypes).Methods("GET")
	r.HandleFunc("/api/v1/legislation/popular", s.handlePopularLegislation).Methods("GET")

	r.HandleFunc("/api/v1/complete", s.handleComplete).Methods("POST")
	r.HandleFunc("/api/v1/usage/summary", s.handleUsageSummary).Methods("GET")

	r.HandleFunc("/api/v1/backends/status", s.handleBackendStatus).Methods("GET")
	r.HandleFunc("/api/v1/backends/health", s.handleBackendHealth).Methods("GET")
	r.HandleFunc("/api/v1/tools", s.handleTools).Methods("GET")
}

// requestIDMiddleware assigns each request a UUID, echoed in the
// X-Request-ID header and carried through logs.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		s.log.InfoWithDuration(requestID, "Request handled", float64(time.Since(start).Milliseconds()), map[string]interface{}{
			"method": r.Method,
			"path":   r.URL.Path,
		})
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.Operation == "" {
		writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "operation is required")
		return
	}
	req.RequestID = reqID

	results, err := s.orchestrator.Search(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrUnknownOperation):
			writeError(w, reqID, http.StatusBadRequest, errTypeUnknownOperation, err.Error())
		case errors.Is(err, context.Canceled):
			// Caller went away, nothing useful to write
		default:
			writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"results":    results,
		"request_id": reqID,
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)
	vars := mux.Vars(r)
	source := vars["source"]

	req := &base.DocumentRequest{
		ID:  vars["id"],
		URL: r.URL.Query().Get("url"),
	}
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "invalid page: "+raw)
			return
		}
		req.PageNumber = page
	}
	// Source-specific addressing options (sayistay decision_type,
	// mevzuat madde_id) ride along as plain query parameters.
	for _, opt := range []string{"decision_type", "madde_id"} {
		if v := r.URL.Query().Get(opt); v != "" {
			if req.Options == nil {
				req.Options = map[string]string{}
			}
			req.Options[opt] = v
		}
	}

	doc, err := s.orchestrator.Document(r.Context(), source, req)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrUnknownBackend):
			writeError(w, reqID, http.StatusNotFound, errTypeNotFound, err.Error())
		case base.IsTimeout(err):
			writeError(w, reqID, http.StatusGatewayTimeout, errTypeUpstreamTimeout, err.Error())
		default:
			writeError(w, reqID, http.StatusBadGateway, errTypeUpstream, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleArticleTree(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	tree, err := s.legislation.ArticleTree(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if base.IsTimeout(err) {
			writeError(w, reqID, http.StatusGatewayTimeout, errTypeUpstreamTimeout, err.Error())
			return
		}
		writeError(w, reqID, http.StatusBadGateway, errTypeUpstream, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleLegislationTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"legislation_types": mevzuat.LegislationTypes,
	})
}

func (s *Server) handlePopularLegislation(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"important_laws": mevzuat.PopularLaws,
	})
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var req llm.CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "malformed request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "query is required")
		return
	}
	req.RequestID = reqID

	start := time.Now()
	resp, err := s.router.Complete(r.Context(), &req)
	if err != nil {
		var exhausted *llm.ModelExhaustedError
		if errors.As(err, &exhausted) {
			promCompletions.WithLabelValues("none", "exhausted").Inc()
			writeError(w, reqID, http.StatusServiceUnavailable, errTypeModelExhausted, exhausted.Error())
			return
		}
		writeError(w, reqID, http.StatusInternalServerError, errTypeInternal, err.Error())
		return
	}

	promCompletions.WithLabelValues(resp.ModelID, "success").Inc()
	promCompletionDuration.WithLabelValues(resp.ModelID).Observe(float64(time.Since(start).Milliseconds()))

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUsageSummary(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	var since time.Time
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, reqID, http.StatusBadRequest, errTypeBadRequest, "invalid since timestamp, want RFC3339: "+raw)
			return
		}
		since = parsed
	}

	writeJSON(w, http.StatusOK, s.tracker.Summary(since))
}

func (s *Server) handleBackendStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"backends": s.registry.Status(),
	})
}

// backendHealthTimeout bounds the active probe fan-out so a hung
// upstream cannot stall the endpoint indefinitely.
const backendHealthTimeout = 10 * time.Second

// handleBackendHealth actively probes every backend's upstream, unlike
// /health which only reports the advisory state from past calls. Probe
// outcomes feed back into that advisory state.
func (s *Server) handleBackendHealth(w http.ResponseWriter, r *http.Request) {
	reqID := requestID(r)

	ctx, cancel := context.WithTimeout(r.Context(), backendHealthTimeout)
	defer cancel()

	statuses := s.registry.HealthCheck(ctx)

	unhealthy := 0
	for name, status := range statuses {
		s.registry.RecordOutcome(name, status.Healthy)
		if !status.Healthy {
			unhealthy++
		}
	}

	overall := "healthy"
	if unhealthy > 0 {
		overall = "degraded"
		s.log.Warn(reqID, "Backend health probe found unhealthy upstreams", map[string]interface{}{
			"unhealthy": unhealthy,
			"total":     len(statuses),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    overall,
		"backends":  statuses,
		"unhealthy": unhealthy,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	operations := s.registry.Operations()

	type backendInfo struct {
		Name        string   `json:"name"`
		DisplayName string   `json:"display_name"`
		Category    string   `json:"category"`
		Params      []string `json:"params"`
		Required    []string `json:"required,omitempty"`
	}

	tools := make(map[string][]backendInfo, len(operations))
	for op, names := range operations {
		infos := make([]backendInfo, 0, len(names))
		for _, name := range names {
			desc, err := s.registry.Descriptor(name)
			if err != nil {
				continue
			}
			infos = append(infos, backendInfo{
				Name:        desc.Name,
				DisplayName: desc.DisplayName,
				Category:    string(desc.Category),
				Params:      desc.Params,
				Required:    desc.Required,
			})
		}
		tools[op] = infos
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"operations": tools,
		"models":     s.router.Catalog().Models(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.registry.Status()

	degraded := 0
	for _, avail := range status {
		if avail == registry.AvailabilityUnavailable {
			degraded++
		}
	}

	overall := "healthy"
	if degraded > 0 {
		overall = "degraded"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    overall,
		"backends":  status,
		"degraded":  degraded,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
