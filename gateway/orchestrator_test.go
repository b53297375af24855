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
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"lexgate/backends/base"
	"lexgate/backends/registry"
	"lexgate/cache"
	"lexgate/shared/logger"
)

// stubAdapter scripts one backend's behavior, including artificial
// response latency to exercise ordering guarantees.
type stubAdapter struct {
	name      string
	category  base.Category
	delay     time.Duration
	searchErr error
	items     []base.DocumentSummary
	doc       *base.Document
	docErr    error
	docCalls  int32
	healthErr error
}

func (s *stubAdapter) Search(ctx context.Context, query *base.SearchQuery) (*base.SearchPage, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, base.NewBackendTimeout(s.name, "search", ctx.Err())
		}
	}
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	items := s.items
	if items == nil {
		items = []base.DocumentSummary{}
	}
	return &base.SearchPage{
		Items:      items,
		TotalCount: len(items),
		PageNumber: query.PageNumber,
		PageSize:   query.PageSize,
		Source:     s.name,
	}, nil
}

func (s *stubAdapter) Document(ctx context.Context, req *base.DocumentRequest) (*base.Document, error) {
	atomic.AddInt32(&s.docCalls, 1)
	if s.docErr != nil {
		return nil, s.docErr
	}
	return s.doc, nil
}

func (s *stubAdapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if s.healthErr != nil {
		return nil, s.healthErr
	}
	return &base.HealthStatus{Healthy: true}, nil
}

func (s *stubAdapter) Name() string { return s.name }
func (s *stubAdapter) Category() base.Category {
	if s.category == "" {
		return base.CategoryCourt
	}
	return s.category
}
func (s *stubAdapter) Capabilities() []string { return []string{"search", "document"} }

// newStubRegistry registers the full descriptor table with stub
// adapters, applying the given per-backend overrides.
func newStubRegistry(t *testing.T, overrides map[string]*stubAdapter) *registry.Registry {
	t.Helper()
	r := registry.New()
	for _, desc := range registry.DefaultDescriptors() {
		adapter := overrides[desc.Name]
		if adapter == nil {
			adapter = &stubAdapter{name: desc.Name, category: desc.Category}
		}
		if err := r.Register(desc, adapter); err != nil {
			t.Fatalf("Register %s failed: %v", desc.Name, err)
		}
	}
	return r
}

func TestUnifiedSearchPreservesRequestedCourtOrder(t *testing.T) {
	// First court answers last, last answers first: output order must
	// still follow the request.
	overrides := map[string]*stubAdapter{
		"bedesten_danistay": {name: "bedesten_danistay", delay: 80 * time.Millisecond},
		"bedesten_yargitay": {name: "bedesten_yargitay", delay: 10 * time.Millisecond},
	}
	orch := NewOrchestrator(newStubRegistry(t, overrides), nil)

	results, err := orch.Search(context.Background(), &SearchRequest{
		Operation:  "bedesten_unified_search",
		CourtTypes: []string{"DANISTAYKARAR", "YARGITAYKARARI"},
		Params:     map[string]interface{}{"phrase": "mülkiyet"},
		PageNumber: 1,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Source != "bedesten_danistay" || results[1].Source != "bedesten_yargitay" {
		t.Errorf("Order not request-stable: %s, %s", results[0].Source, results[1].Source)
	}
	for _, r := range results {
		if r.IsFallback {
			t.Errorf("Unexpected fallback for %s: %s", r.Source, r.Error)
		}
	}
}

func TestUnifiedSearchDropsUnknownCourtTypes(t *testing.T) {
	orch := NewOrchestrator(newStubRegistry(t, nil), nil)

	results, err := orch.Search(context.Background(), &SearchRequest{
		Operation:  "bedesten_unified_search",
		CourtTypes: []string{"YARGITAYKARARI", "NOSUCHCOURT", "KYB"},
		Params:     map[string]interface{}{"phrase": "tazminat"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results for 2 registered court types, got %d", len(results))
	}
	if results[0].Source != "bedesten_yargitay" || results[1].Source != "bedesten_kyb" {
		t.Errorf("Unexpected sources: %s, %s", results[0].Source, results[1].Source)
	}
}

func TestOrderInvariantUnderArbitraryLatency(t *testing.T) {
	// Descending latencies: completion order is the reverse of request
	// order for every backend.
	courtTypes := []string{"YARGITAYKARARI", "DANISTAYKARAR", "YERELHUKUK", "ISTINAFHUKUK", "KYB"}
	backends := []string{"bedesten_yargitay", "bedesten_danistay", "bedesten_yerel_hukuk", "bedesten_istinaf_hukuk", "bedesten_kyb"}

	overrides := map[string]*stubAdapter{}
	for i, name := range backends {
		overrides[name] = &stubAdapter{name: name, delay: time.Duration(len(backends)-i) * 20 * time.Millisecond}
	}
	orch := NewOrchestrator(newStubRegistry(t, overrides), nil)

	results, err := orch.Search(context.Background(), &SearchRequest{
		Operation:  "bedesten_unified_search",
		CourtTypes: courtTypes,
		Params:     map[string]interface{}{"phrase": "kira"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != len(backends) {
		t.Fatalf("Expected %d results, got %d", len(backends), len(results))
	}
	for i, want := range backends {
		if results[i].Source != want {
			t.Errorf("Position %d: expected %s, got %s", i, want, results[i].Source)
		}
	}
}

func TestTimeoutYieldsFallbackAndMarksUnavailable(t *testing.T) {
	reg := newStubRegistry(t, map[string]*stubAdapter{
		"anayasa": {name: "anayasa", delay: time.Second},
	})
	orch := NewOrchestrator(reg, nil)
	orch.SetBackendTimeout(30 * time.Millisecond)

	results, err := orch.Search(context.Background(), &SearchRequest{
		Operation:  "constitutional_court_search",
		Params:     map[string]interface{}{"keywords": []string{"ifade özgürlüğü"}},
		PageNumber: 1,
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	r := results[0]
	if !r.IsFallback {
		t.Error("Expected fallback result")
	}
	if r.Error != "constitutional court service unavailable" {
		t.Errorf("Unexpected error message: %q", r.Error)
	}
	if r.Items == nil {
		t.Error("Fallback items must be non-nil")
	}

	if got := reg.Availability("anayasa"); got != registry.AvailabilityUnavailable {
		t.Errorf("Expected anayasa unavailable after timeout, got %s", got)
	}
}

func TestPartialFailureDegradesOnlyFailedBackend(t *testing.T) {
	reg := newStubRegistry(t, map[string]*stubAdapter{
		"bedesten_kyb": {name: "bedesten_kyb", searchErr: base.NewBackendError("bedesten_kyb", "search", "upstream 503", nil)},
	})
	orch := NewOrchestrator(reg, nil)

	results, err := orch.Search(context.Background(), &SearchRequest{
		Operation:  "bedesten_unified_search",
		CourtTypes: []string{"YARGITAYKARARI", "KYB"},
		Params:     map[string]interface{}{"phrase": "haciz"},
	})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if results[0].IsFallback {
		t.Error("Healthy backend must not degrade")
	}
	if !results[1].IsFallback || results[1].Error != "extraordinary appeals service unavailable" {
		t.Errorf("Expected kyb fallback, got %+v", results[1])
	}

	if got := reg.Availability("bedesten_yargitay"); got != registry.AvailabilityAvailable {
		t.Errorf("Expected yargitay available, got %s", got)
	}
	if got := reg.Availability("bedesten_kyb"); got != registry.AvailabilityUnavailable {
		t.Errorf("Expected kyb unavailable, got %s", got)
	}
}

func TestUnknownOperationRejected(t *testing.T) {
	orch := NewOrchestrator(newStubRegistry(t, nil), nil)

	_, err := orch.Search(context.Background(), &SearchRequest{
		Operation: "supreme_court_search",
		Params:    map[string]interface{}{},
	})
	if !errors.Is(err, registry.ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation, got %v", err)
	}
}

func TestUnknownParameterRejectedBeforeFanOut(t *testing.T) {
	override := &stubAdapter{name: "emsal"}
	orch := NewOrchestrator(newStubRegistry(t, map[string]*stubAdapter{"emsal": override}), nil)

	_, err := orch.Search(context.Background(), &SearchRequest{
		Operation: "emsal_search",
		Params:    map[string]interface{}{"keyword": "kira", "bogus": true},
	})
	if err == nil {
		t.Fatal("Expected validation error")
	}
}

func TestCancelledCallerDiscardsResults(t *testing.T) {
	overrides := map[string]*stubAdapter{
		"anayasa": {name: "anayasa", delay: 200 * time.Millisecond},
	}
	orch := NewOrchestrator(newStubRegistry(t, overrides), nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := orch.Search(ctx, &SearchRequest{
		Operation: "constitutional_court_search",
		Params:    map[string]interface{}{"keywords": []string{"seçim"}},
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestDocumentServedFromCacheOnSecondFetch(t *testing.T) {
	stub := &stubAdapter{
		name: "emsal",
		doc: &base.Document{
			ID: "dec-1", Source: "emsal", Markdown: "# Karar", PageNumber: 1, TotalPages: 1,
		},
	}
	reg := newStubRegistry(t, map[string]*stubAdapter{"emsal": stub})

	mr := miniredis.RunT(t)
	docCache := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour, logger.New("test-cache"))
	orch := NewOrchestrator(reg, docCache)

	req := &base.DocumentRequest{ID: "dec-1", PageNumber: 1}
	for i := 0; i < 2; i++ {
		doc, err := orch.Document(context.Background(), "emsal", req)
		if err != nil {
			t.Fatalf("Document fetch %d failed: %v", i, err)
		}
		if doc.Markdown != "# Karar" {
			t.Errorf("Unexpected document: %+v", doc)
		}
	}

	if calls := atomic.LoadInt32(&stub.docCalls); calls != 1 {
		t.Errorf("Expected 1 upstream fetch, got %d", calls)
	}
}

func TestDocumentUnknownBackend(t *testing.T) {
	orch := NewOrchestrator(newStubRegistry(t, nil), nil)

	_, err := orch.Document(context.Background(), "nosuch", &base.DocumentRequest{ID: "x"})
	if !errors.Is(err, registry.ErrUnknownBackend) {
		t.Errorf("Expected ErrUnknownBackend, got %v", err)
	}
}
