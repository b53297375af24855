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

package llm

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Catalog is the static, ordered list of interchangeable models.
// Immutable after construction; ordering follows PriorityRank
// ascending so Models()[0] is the default chain head.
type Catalog struct {
	models []ModelDescriptor
	byID   map[string]*ModelDescriptor
}

// DefaultCatalog returns the built-in model catalog. Rates are USD per
// million tokens as published by the aggregator.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]ModelDescriptor{
		{ID: "openai/gpt-4o", InputCostPerMTok: 2.50, OutputCostPerMTok: 10.00, PriorityRank: 1},
		{ID: "anthropic/claude-sonnet-4", InputCostPerMTok: 3.00, OutputCostPerMTok: 15.00, PriorityRank: 2},
		{ID: "google/gemini-2.5-pro", InputCostPerMTok: 1.25, OutputCostPerMTok: 10.00, PriorityRank: 3},
		{ID: "openai/gpt-4o-mini", InputCostPerMTok: 0.15, OutputCostPerMTok: 0.60, PriorityRank: 4},
		{ID: "meta-llama/llama-3.3-70b-instruct", InputCostPerMTok: 0.10, OutputCostPerMTok: 0.30, PriorityRank: 5},
	})
	if err != nil {
		// The built-in table is validated by tests; this cannot happen
		// at runtime with the shipped entries.
		panic(err)
	}
	return catalog
}

// NewCatalog builds a catalog from descriptors, sorting by priority
// rank. Duplicate ids and duplicate ranks are rejected.
func NewCatalog(models []ModelDescriptor) (*Catalog, error) {
	if len(models) == 0 {
		return nil, fmt.Errorf("catalog must contain at least one model")
	}

	sorted := append([]ModelDescriptor(nil), models...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityRank < sorted[j].PriorityRank
	})

	byID := make(map[string]*ModelDescriptor, len(sorted))
	seenRanks := make(map[int]string, len(sorted))
	for i := range sorted {
		m := &sorted[i]
		if m.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has empty model id", i)
		}
		if _, dup := byID[m.ID]; dup {
			return nil, fmt.Errorf("duplicate model id '%s' in catalog", m.ID)
		}
		if prev, dup := seenRanks[m.PriorityRank]; dup {
			return nil, fmt.Errorf("models '%s' and '%s' share priority rank %d", prev, m.ID, m.PriorityRank)
		}
		byID[m.ID] = m
		seenRanks[m.PriorityRank] = m.ID
	}

	return &Catalog{models: sorted, byID: byID}, nil
}

// catalogFile is the YAML shape for catalog overrides
type catalogFile struct {
	Models []ModelDescriptor `yaml:"models"`
}

// LoadCatalog reads a catalog override from a YAML file
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	return NewCatalog(file.Models)
}

// Models returns the catalog in priority order
func (c *Catalog) Models() []ModelDescriptor {
	return append([]ModelDescriptor(nil), c.models...)
}

// Get looks up a model by id
func (c *Catalog) Get(id string) (*ModelDescriptor, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Default returns the highest-priority model
func (c *Catalog) Default() *ModelDescriptor {
	return &c.models[0]
}

// Chain builds the fallback chain for a request: the requested model
// first (if known), then all remaining catalog entries in priority
// order, duplicates removed. An unknown requested model falls through
// to the default chain rather than failing; the aggregator would
// reject it anyway and the chain must stay non-empty.
func (c *Catalog) Chain(requestedModel string) []ModelDescriptor {
	chain := make([]ModelDescriptor, 0, len(c.models))

	if requestedModel != "" {
		if m, ok := c.byID[requestedModel]; ok {
			chain = append(chain, *m)
		}
	}

	for _, m := range c.models {
		if len(chain) > 0 && m.ID == chain[0].ID {
			continue
		}
		chain = append(chain, m)
	}

	return chain
}
