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
	"fmt"
	"sync"
	"time"

	"lexgate/backends/base"
	"lexgate/backends/registry"
	"lexgate/cache"
	"lexgate/shared/logger"
)

const (
	// Upstream government services document a soft rate limit; keep at
	// most this many backend calls in flight per search.
	defaultMaxInFlight = 10

	// Per-backend deadline. One slow court must not stall the others'
	// results, only the overall response.
	defaultBackendTimeout = 10 * time.Second

	// Document fetches render full decisions to Markdown upstream and
	// run outside the fan-out, so they get a looser deadline.
	defaultDocumentTimeout = 30 * time.Second
)

// Orchestrator resolves search requests against the registry, fans out
// to the selected backends with bounded concurrency, and reassembles
// results positionally so output order matches request order no matter
// which backend answers first. Failed backends are replaced by labeled
// fallback results; a degraded source never aborts the overall call.
type Orchestrator struct {
	registry        *registry.Registry
	fallback        *FallbackResponder
	docCache        *cache.DocumentCache
	log             *logger.Logger
	maxInFlight     int
	backendTimeout  time.Duration
	documentTimeout time.Duration
}

// NewOrchestrator creates an orchestrator over a populated registry.
// docCache may be nil to disable document caching.
func NewOrchestrator(reg *registry.Registry, docCache *cache.DocumentCache) *Orchestrator {
	return &Orchestrator{
		registry:        reg,
		fallback:        NewFallbackResponder(),
		docCache:        docCache,
		log:             logger.New("search-orchestrator"),
		maxInFlight:     defaultMaxInFlight,
		backendTimeout:  defaultBackendTimeout,
		documentTimeout: defaultDocumentTimeout,
	}
}

// SetBackendTimeout overrides the per-backend search deadline
func (o *Orchestrator) SetBackendTimeout(d time.Duration) {
	if d > 0 {
		o.backendTimeout = d
	}
}

// Search resolves the request's operation and fans out to every
// selected backend. It returns one SearchResult per resolved backend,
// in resolution order. Errors are returned only for caller mistakes
// (unknown operation, invalid parameters) or caller cancellation;
// backend failures come back as fallback results inside the sequence.
func (o *Orchestrator) Search(ctx context.Context, req *SearchRequest) ([]SearchResult, error) {
	descs, err := o.registry.Resolve(req.Operation, req.CourtTypes)
	if err != nil {
		return nil, err
	}

	for _, desc := range descs {
		if err := desc.ValidateParams(req.Params); err != nil {
			return nil, fmt.Errorf("invalid parameters: %w", err)
		}
	}

	results := make([]SearchResult, len(descs))
	sem := make(chan struct{}, o.maxInFlight)
	var wg sync.WaitGroup

	for i, desc := range descs {
		wg.Add(1)
		go func(i int, desc *registry.Descriptor) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}

			results[i] = o.callBackend(ctx, desc, req)
		}(i, desc)
	}
	wg.Wait()

	// Caller disconnected: partial results are discarded, not served
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return results, nil
}

// callBackend runs one backend search under its own deadline and
// converts any failure into a fallback result for that backend only.
func (o *Orchestrator) callBackend(ctx context.Context, desc *registry.Descriptor, req *SearchRequest) SearchResult {
	adapter, err := o.registry.Adapter(desc.Name)
	if err != nil {
		// Descriptor resolved but adapter missing: wiring bug, degrade
		return o.degrade(desc, req, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, o.backendTimeout)
	defer cancel()

	start := time.Now()
	page, err := adapter.Search(callCtx, &base.SearchQuery{
		Params:     req.Params,
		PageNumber: req.PageNumber,
		PageSize:   req.PageSize,
	})
	elapsed := time.Since(start)
	promBackendDuration.WithLabelValues(desc.Name, "search").Observe(float64(elapsed.Milliseconds()))

	if err != nil {
		promBackendCalls.WithLabelValues(desc.Name, "search", "error").Inc()
		return o.degrade(desc, req, err)
	}

	promBackendCalls.WithLabelValues(desc.Name, "search", "success").Inc()
	o.registry.RecordOutcome(desc.Name, true)

	return SearchResult{
		Source:     page.Source,
		Items:      page.Items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}

func (o *Orchestrator) degrade(desc *registry.Descriptor, req *SearchRequest, cause error) SearchResult {
	o.registry.RecordOutcome(desc.Name, false)
	promFallbackResults.WithLabelValues(desc.Name).Inc()

	o.log.Warn(req.RequestID, "Backend degraded, serving fallback result", map[string]interface{}{
		"backend":   desc.Name,
		"operation": req.Operation,
		"error":     cause.Error(),
		"timeout":   base.IsTimeout(cause),
	})

	reason := fmt.Sprintf("%s service unavailable", desc.DisplayName)
	return o.fallback.Build(desc, reason)
}

// Document fetches one document from a named backend, serving from the
// cache when possible. Unlike searches, a document failure is surfaced
// to the caller: there is no meaningful fallback content for a single
// decision text.
func (o *Orchestrator) Document(ctx context.Context, source string, req *base.DocumentRequest) (*base.Document, error) {
	adapter, err := o.registry.Adapter(source)
	if err != nil {
		return nil, err
	}

	if doc := o.docCache.Get(ctx, source, req.ID, req.PageNumber); doc != nil {
		promBackendCalls.WithLabelValues(source, "document", "cache_hit").Inc()
		return doc, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, o.documentTimeout)
	defer cancel()

	start := time.Now()
	doc, err := adapter.Document(callCtx, req)
	promBackendDuration.WithLabelValues(source, "document").Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		promBackendCalls.WithLabelValues(source, "document", "error").Inc()
		o.registry.RecordOutcome(source, false)
		return nil, err
	}

	promBackendCalls.WithLabelValues(source, "document", "success").Inc()
	o.registry.RecordOutcome(source, true)
	o.docCache.Set(ctx, doc)

	return doc, nil
}
