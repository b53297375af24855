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

// Package mevzuat fronts the legislation tool server, which wraps the
// mevzuat.gov.tr database. Unlike court sources, legislation documents
// are addressed per article: a search hit carries a mevzuat_id, the
// article tree lists madde_ids under it, and content is fetched per
// (mevzuat_id, madde_id) pair.
package mevzuat

import (
	"context"
	"errors"
	"net"
	"time"

	"lexgate/backends/base"
	"lexgate/backends/sdk"
)

const (
	searchTool  = "search_mevzuat"
	treeTool    = "get_mevzuat_article_tree"
	contentTool = "get_mevzuat_article_content"

	// mevzuat.gov.tr rejects page sizes above 50
	maxPageSize = 50
)

type searchEnvelope struct {
	Results    []base.DocumentSummary `json:"results"`
	TotalCount int                    `json:"total_count"`
}

type documentEnvelope struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Markdown   string `json:"markdown"`
	PageNumber int    `json:"page_number"`
	TotalPages int    `json:"total_pages"`
	SourceURL  string `json:"source_url"`
}

// ArticleNode is one entry in a legislation's table of contents.
// Chapters and sections nest; leaf nodes are articles whose IDs can be
// passed to Document as the madde_id option.
type ArticleNode struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Children []ArticleNode `json:"children,omitempty"`
}

// ArticleTree is the hierarchical structure of one piece of legislation
type ArticleTree struct {
	MevzuatID string        `json:"mevzuat_id"`
	Title     string        `json:"title"`
	Structure []ArticleNode `json:"structure"`
}

// LegislationAdapter fronts the legislation tool server
type LegislationAdapter struct {
	client *sdk.ToolClient
	retry  *sdk.RetryConfig
}

// NewLegislationAdapter builds the legislation adapter over a shared
// tool client.
func NewLegislationAdapter(client *sdk.ToolClient) *LegislationAdapter {
	return &LegislationAdapter{
		client: client,
		retry:  sdk.DefaultRetryConfig(),
	}
}

// Search runs one paginated legislation search. Single attempt, like
// the court searches: failures feed availability tracking instead of
// being retried inline.
func (a *LegislationAdapter) Search(ctx context.Context, query *base.SearchQuery) (*base.SearchPage, error) {
	page, size := normalizePagination(query.PageNumber, query.PageSize)

	args := make(map[string]interface{}, len(query.Params)+2)
	for k, v := range query.Params {
		args[k] = v
	}
	args["page_number"] = page
	args["page_size"] = size

	start := time.Now()
	var env searchEnvelope
	if err := a.client.Call(ctx, searchTool, args, &env); err != nil {
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
		Source:     a.Name(),
	}, nil
}

// Document fetches one article's content as Markdown. req.ID is the
// mevzuat_id from search results; the article is selected with
// req.Options["madde_id"] from the article tree.
func (a *LegislationAdapter) Document(ctx context.Context, req *base.DocumentRequest) (*base.Document, error) {
	maddeID, ok := req.Options["madde_id"]
	if !ok || maddeID == "" {
		return nil, base.NewBackendError(a.Name(), "document", "madde_id option is required", nil)
	}

	args := map[string]interface{}{
		"mevzuat_id": req.ID,
		"madde_id":   maddeID,
	}

	env, err := sdk.RetryWithBackoff(ctx, a.retry, func() (*documentEnvelope, error) {
		var e documentEnvelope
		if err := a.client.Call(ctx, contentTool, args, &e); err != nil {
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
		Source:     a.Name(),
		Title:      env.Title,
		Markdown:   env.Markdown,
		PageNumber: pageNumber,
		TotalPages: totalPages,
		SourceURL:  env.SourceURL,
	}, nil
}

// ArticleTree fetches the table of contents for one piece of
// legislation. The returned node IDs address individual articles for
// Document.
func (a *LegislationAdapter) ArticleTree(ctx context.Context, mevzuatID string) (*ArticleTree, error) {
	if mevzuatID == "" {
		return nil, base.NewBackendError(a.Name(), "article_tree", "mevzuat_id is required", nil)
	}

	args := map[string]interface{}{"mevzuat_id": mevzuatID}

	tree, err := sdk.RetryWithBackoff(ctx, a.retry, func() (*ArticleTree, error) {
		var t ArticleTree
		if err := a.client.Call(ctx, treeTool, args, &t); err != nil {
			return nil, err
		}
		return &t, nil
	})
	if err != nil {
		return nil, a.wrapError("article_tree", err)
	}

	if tree.MevzuatID == "" {
		tree.MevzuatID = mevzuatID
	}
	if tree.Structure == nil {
		tree.Structure = []ArticleNode{}
	}
	return tree, nil
}

// HealthCheck probes the tool server
func (a *LegislationAdapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
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

func (a *LegislationAdapter) Name() string            { return "mevzuat" }
func (a *LegislationAdapter) Category() base.Category { return base.CategoryLegislation }
func (a *LegislationAdapter) Capabilities() []string {
	return []string{"search", "document", "article_tree"}
}

func (a *LegislationAdapter) wrapError(operation string, err error) error {
	if isDeadline(err) {
		return base.NewBackendTimeout(a.Name(), operation, err)
	}
	return base.NewBackendError(a.Name(), operation, "upstream call failed", err)
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
	if size > maxPageSize {
		size = maxPageSize
	}
	return page, size
}
