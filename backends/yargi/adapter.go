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

// Package yargi fronts the yargi tool server, which wraps the Turkish
// court decision databases (Bedesten multi-court, Emsal, Anayasa,
// Uyusmazlik, KIK, Rekabet, Sayistay, KVKK, BDDK) behind a uniform
// tool-call API.
package yargi

import (
	"context"
	"errors"
	"net"
	"time"

	"lexgate/backends/base"
	"lexgate/backends/sdk"
)

// searchEnvelope is the normalized search result shape returned by the
// tool server for every court source.
type searchEnvelope struct {
	Results    []base.DocumentSummary `json:"results"`
	TotalCount int                    `json:"total_count"`
}

// documentEnvelope is the normalized document shape
type documentEnvelope struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	PageNumber int    `json:"page_number"`
	TotalPages int    `json:"total_pages"`
	SourceURL  string `json:"source_url"`
}

type paginateFunc func(args map[string]interface{}, page, size int)
type docArgsFunc func(req *base.DocumentRequest) map[string]interface{}

// CourtAdapter fronts one court decision source through the tool
// server. Per-source differences (tool names, pagination style,
// document addressing) are configuration, not subclasses.
type CourtAdapter struct {
	name         string
	searchTool   string
	documentTool string
	courtType    string // Bedesten court type key, empty for standalone sources
	client       *sdk.ToolClient
	paginate     paginateFunc
	docArgs      docArgsFunc
	retry        *sdk.RetryConfig
}

// Search runs one paginated search. Single attempt: a failure here is
// surfaced so availability tracking and fallback handling can react.
func (a *CourtAdapter) Search(ctx context.Context, query *base.SearchQuery) (*base.SearchPage, error) {
	page, size := normalizePagination(query.PageNumber, query.PageSize)

	args := make(map[string]interface{}, len(query.Params)+3)
	for k, v := range query.Params {
		args[k] = v
	}
	if a.courtType != "" {
		args["court_types"] = []string{a.courtType}
	}
	a.paginate(args, page, size)

	start := time.Now()
	var env searchEnvelope
	if err := a.client.Call(ctx, a.searchTool, args, &env); err != nil {
		return nil, a.wrapError("search", err)
	}

	items := env.Results
	if items == nil {
		items = []base.DocumentSummary{}
	}

	return &base.SearchPage{
		Items:      items,
		TotalCount: env.TotalCount,
		PageNumber: page,
		PageSize:   size,
		Duration:   time.Since(start),
		Source:     a.name,
	}, nil
}

// Document fetches one decision as Markdown. Document fetches are not
// part of the search fan-out, so transient failures are retried here.
func (a *CourtAdapter) Document(ctx context.Context, req *base.DocumentRequest) (*base.Document, error) {
	args := a.docArgs(req)

	env, err := sdk.RetryWithBackoff(ctx, a.retry, func() (*documentEnvelope, error) {
		var e documentEnvelope
		if err := a.client.Call(ctx, a.documentTool, args, &e); err != nil {
			return nil, err
		}
		return &e, nil
	})
	if err != nil {
		return nil, a.wrapError("document", err)
	}

	id := env.ID
	if id == "" {
		id = req.ID
	}
	totalPages := env.TotalPages
	if totalPages == 0 {
		totalPages = 1
	}
	pageNumber := env.PageNumber
	if pageNumber == 0 {
		pageNumber = 1
	}

	return &base.Document{
		ID:         id,
		Source:     a.name,
		Title:      env.Title,
		Markdown:   env.Markdown,
		PageNumber: pageNumber,
		TotalPages: totalPages,
		SourceURL:  env.SourceURL,
	}, nil
}

// HealthCheck probes the tool server
func (a *CourtAdapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	latency, err := a.client.Health(ctx)
	status := &base.HealthStatus{
		Healthy:   err == nil,
		Latency:   latency,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		status.Error = err.Error()
	}
	return status, nil
}

func (a *CourtAdapter) Name() string            { return a.name }
func (a *CourtAdapter) Category() base.Category { return base.CategoryCourt }
func (a *CourtAdapter) Capabilities() []string  { return []string{"search", "document"} }

func (a *CourtAdapter) wrapError(operation string, err error) error {
	if isDeadline(err) {
		return base.NewBackendTimeout(a.name, operation, err)
	}
	return base.NewBackendError(a.name, operation, "upstream call failed", err)
}

func isDeadline(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func normalizePagination(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// Pagination styles used by the upstream tools

func paginatePageNumber(args map[string]interface{}, page, size int) {
	args["pageNumber"] = page
}

func paginateSnakePage(args map[string]interface{}, page, size int) {
	args["page_number"] = page
}

func paginatePageToFetch(args map[string]interface{}, page, size int) {
	args["page_to_fetch"] = page
}

func paginatePage(args map[string]interface{}, page, size int) {
	args["page"] = page
}

func paginateOffsetLength(args map[string]interface{}, page, size int) {
	args["start"] = (page - 1) * size
	args["length"] = size
}

func paginateNone(args map[string]interface{}, page, size int) {}

// NewCourtAdapters builds every court adapter over one shared tool
// client, keyed by backend name. Tool names and document addressing
// follow the yargi tool server's API.
func NewCourtAdapters(client *sdk.ToolClient) map[string]base.Adapter {
	retry := sdk.DefaultRetryConfig()

	bedesten := func(name, courtType string) base.Adapter {
		return &CourtAdapter{
			name:         name,
			searchTool:   "search_bedesten_unified",
			documentTool: "get_bedesten_document_markdown",
			courtType:    courtType,
			client:       client,
			paginate:     paginatePageNumber,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{"documentId": req.ID}
			},
			retry: retry,
		}
	}

	return map[string]base.Adapter{
		"bedesten_yargitay":      bedesten("bedesten_yargitay", "YARGITAYKARARI"),
		"bedesten_danistay":      bedesten("bedesten_danistay", "DANISTAYKARAR"),
		"bedesten_yerel_hukuk":   bedesten("bedesten_yerel_hukuk", "YERELHUKUK"),
		"bedesten_istinaf_hukuk": bedesten("bedesten_istinaf_hukuk", "ISTINAFHUKUK"),
		"bedesten_kyb":           bedesten("bedesten_kyb", "KYB"),
		"emsal": &CourtAdapter{
			name:         "emsal",
			searchTool:   "search_emsal_detailed_decisions",
			documentTool: "get_emsal_document_markdown",
			client:       client,
			paginate:     paginateSnakePage,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{"id": req.ID}
			},
			retry: retry,
		},
		"anayasa": &CourtAdapter{
			name:         "anayasa",
			searchTool:   "search_anayasa_unified",
			documentTool: "get_anayasa_document_unified",
			client:       client,
			paginate:     paginatePageToFetch,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{
					"document_url": req.URL,
					"page_number":  req.PageNumber,
				}
			},
			retry: retry,
		},
		"uyusmazlik": &CourtAdapter{
			name:         "uyusmazlik",
			searchTool:   "search_uyusmazlik_decisions",
			documentTool: "get_uyusmazlik_document_markdown_from_url",
			client:       client,
			paginate:     paginateNone,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{"document_url": req.URL}
			},
			retry: retry,
		},
		"kik": &CourtAdapter{
			name:         "kik",
			searchTool:   "search_kik_decisions",
			documentTool: "get_kik_document_markdown",
			client:       client,
			paginate:     paginatePage,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{
					"karar_id":    req.ID,
					"page_number": req.PageNumber,
				}
			},
			retry: retry,
		},
		"rekabet": &CourtAdapter{
			name:         "rekabet",
			searchTool:   "search_rekabet_kurumu_decisions",
			documentTool: "get_rekabet_kurumu_document",
			client:       client,
			paginate:     paginatePage,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{
					"karar_id":    req.ID,
					"page_number": req.PageNumber,
				}
			},
			retry: retry,
		},
		"sayistay": &CourtAdapter{
			name:         "sayistay",
			searchTool:   "search_sayistay_unified",
			documentTool: "get_sayistay_document_unified",
			client:       client,
			paginate:     paginateOffsetLength,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				args := map[string]interface{}{"decision_id": req.ID}
				if dt, ok := req.Options["decision_type"]; ok {
					args["decision_type"] = dt
				}
				return args
			},
			retry: retry,
		},
		"kvkk": &CourtAdapter{
			name:         "kvkk",
			searchTool:   "search_kvkk_decisions",
			documentTool: "get_kvkk_document_markdown",
			client:       client,
			paginate:     paginatePage,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{
					"decision_url": req.URL,
					"page_number":  req.PageNumber,
				}
			},
			retry: retry,
		},
		"bddk": &CourtAdapter{
			name:         "bddk",
			searchTool:   "search_bddk_decisions",
			documentTool: "get_bddk_document_markdown",
			client:       client,
			paginate:     paginatePage,
			docArgs: func(req *base.DocumentRequest) map[string]interface{} {
				return map[string]interface{}{
					"document_id": req.ID,
					"page_number": req.PageNumber,
				}
			},
			retry: retry,
		},
	}
}
