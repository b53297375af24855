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
	"lexgate/backends/base"
	"lexgate/backends/registry"
)

// FallbackResponder produces the labeled placeholder result served
// when a backend is unreachable. It is the last line of defense before
// a response reaches the caller: no I/O, no parsing, no state, so it
// cannot itself fail.
type FallbackResponder struct{}

// NewFallbackResponder creates a responder
func NewFallbackResponder() *FallbackResponder {
	return &FallbackResponder{}
}

// Build returns a fallback SearchResult for one backend. The result is
// deterministic for a given descriptor and reason, carries the reason
// in Error, and holds a single synthetic placeholder item so callers
// can render something meaningful.
func (f *FallbackResponder) Build(desc *registry.Descriptor, reason string) SearchResult {
	placeholder := base.DocumentSummary{
		ID:      "fallback-" + desc.Name,
		Title:   desc.DisplayName + " is temporarily unavailable",
		Excerpt: "The upstream service could not be reached. Retry later or consult " + sourceHint(desc.Category) + " directly.",
	}

	return SearchResult{
		Source:     desc.Name,
		Items:      []base.DocumentSummary{placeholder},
		TotalCount: 0,
		IsFallback: true,
		Error:      reason,
	}
}

func sourceHint(category base.Category) string {
	if category == base.CategoryLegislation {
		return "mevzuat.gov.tr"
	}
	return "the court's official portal"
}
