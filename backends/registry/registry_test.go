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

package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"lexgate/backends/base"
)

// stubAdapter is a no-op adapter for registry tests
type stubAdapter struct {
	name    string
	healthy bool
}

func (s *stubAdapter) Search(ctx context.Context, query *base.SearchQuery) (*base.SearchPage, error) {
	return &base.SearchPage{Source: s.name, Items: []base.DocumentSummary{}}, nil
}

func (s *stubAdapter) Document(ctx context.Context, req *base.DocumentRequest) (*base.Document, error) {
	return &base.Document{ID: req.ID, Source: s.name}, nil
}

func (s *stubAdapter) HealthCheck(ctx context.Context) (*base.HealthStatus, error) {
	if !s.healthy {
		return nil, errors.New("upstream unreachable")
	}
	return &base.HealthStatus{Healthy: true, Timestamp: time.Now()}, nil
}

func (s *stubAdapter) Name() string            { return s.name }
func (s *stubAdapter) Category() base.Category { return base.CategoryCourt }
func (s *stubAdapter) Capabilities() []string  { return []string{"search", "document"} }

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := New()
	for _, desc := range DefaultDescriptors() {
		if err := r.Register(desc, &stubAdapter{name: desc.Name, healthy: true}); err != nil {
			t.Fatalf("Failed to register %s: %v", desc.Name, err)
		}
	}
	return r
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	desc := &Descriptor{Name: "emsal", Category: base.CategoryCourt}

	if err := r.Register(desc, &stubAdapter{name: "emsal"}); err != nil {
		t.Fatalf("First registration failed: %v", err)
	}
	if err := r.Register(desc, &stubAdapter{name: "emsal"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}
}

func TestResolveUnknownOperation(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve("nonexistent_search", nil)
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation, got %v", err)
	}
}

func TestResolveSingleBackendOperations(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		operation string
		backend   string
	}{
		{"emsal_search", "emsal"},
		{"constitutional_court_search", "anayasa"},
		{"uyusmazlik_search", "uyusmazlik"},
		{"kik_search", "kik"},
		{"rekabet_search", "rekabet"},
		{"sayistay_search", "sayistay"},
		{"kvkk_search", "kvkk"},
		{"bddk_search", "bddk"},
		{"mevzuat_search", "mevzuat"},
	}

	for _, tt := range tests {
		t.Run(tt.operation, func(t *testing.T) {
			descs, err := r.Resolve(tt.operation, nil)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if len(descs) != 1 {
				t.Fatalf("Expected 1 descriptor, got %d", len(descs))
			}
			if descs[0].Name != tt.backend {
				t.Errorf("Expected backend %s, got %s", tt.backend, descs[0].Name)
			}
		})
	}
}

func TestResolveUnifiedSearchDefaultsToAllCourts(t *testing.T) {
	r := newTestRegistry(t)

	descs, err := r.Resolve("bedesten_unified_search", nil)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(descs) != 5 {
		t.Fatalf("Expected 5 descriptors, got %d", len(descs))
	}

	expected := []string{
		"bedesten_yargitay", "bedesten_danistay", "bedesten_yerel_hukuk",
		"bedesten_istinaf_hukuk", "bedesten_kyb",
	}
	for i, name := range expected {
		if descs[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, descs[i].Name)
		}
	}
}

func TestResolveUnifiedSearchPreservesCourtTypeOrder(t *testing.T) {
	r := newTestRegistry(t)

	descs, err := r.Resolve("bedesten_unified_search", []string{"KYB", "YARGITAYKARARI"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(descs) != 2 {
		t.Fatalf("Expected 2 descriptors, got %d", len(descs))
	}
	if descs[0].Name != "bedesten_kyb" || descs[1].Name != "bedesten_yargitay" {
		t.Errorf("Court type order not preserved: got %s, %s", descs[0].Name, descs[1].Name)
	}
}

func TestResolveUnifiedSearchDropsUnknownCourtTypes(t *testing.T) {
	r := newTestRegistry(t)

	descs, err := r.Resolve("bedesten_unified_search", []string{"DANISTAYKARAR", "BOGUS"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("Expected 1 descriptor after dropping unknown type, got %d", len(descs))
	}
	if descs[0].Name != "bedesten_danistay" {
		t.Errorf("Expected bedesten_danistay, got %s", descs[0].Name)
	}
}

func TestResolveUnifiedSearchAllCourtTypesUnknown(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Resolve("bedesten_unified_search", []string{"BOGUS", "NOPE"})
	if !errors.Is(err, ErrUnknownOperation) {
		t.Errorf("Expected ErrUnknownOperation when all court types unknown, got %v", err)
	}
}

func TestRecordOutcomeStickyAvailability(t *testing.T) {
	r := newTestRegistry(t)

	if got := r.Availability("anayasa"); got != AvailabilityUnknown {
		t.Errorf("Expected initial availability unknown, got %s", got)
	}

	// One failure flips to unavailable
	r.RecordOutcome("anayasa", false)
	if got := r.Availability("anayasa"); got != AvailabilityUnavailable {
		t.Errorf("Expected unavailable after failure, got %s", got)
	}

	// Stays unavailable across repeated failures
	r.RecordOutcome("anayasa", false)
	if got := r.Availability("anayasa"); got != AvailabilityUnavailable {
		t.Errorf("Expected unavailable to stick, got %s", got)
	}

	// One success restores available
	r.RecordOutcome("anayasa", true)
	if got := r.Availability("anayasa"); got != AvailabilityAvailable {
		t.Errorf("Expected available after success, got %s", got)
	}
}

func TestRecordOutcomeUnknownBackendIgnored(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordOutcome("not-a-backend", false)

	if got := r.Availability("not-a-backend"); got != AvailabilityUnknown {
		t.Errorf("Expected unknown for unregistered backend, got %s", got)
	}
}

func TestStatusSnapshot(t *testing.T) {
	r := newTestRegistry(t)
	r.RecordOutcome("kvkk", false)
	r.RecordOutcome("emsal", true)

	status := r.Status()
	if status["kvkk"] != AvailabilityUnavailable {
		t.Errorf("Expected kvkk unavailable, got %s", status["kvkk"])
	}
	if status["emsal"] != AvailabilityAvailable {
		t.Errorf("Expected emsal available, got %s", status["emsal"])
	}
	if status["bddk"] != AvailabilityUnknown {
		t.Errorf("Expected bddk unknown, got %s", status["bddk"])
	}
}

func TestValidateParams(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		params    map[string]interface{}
		expectErr bool
	}{
		{
			name:    "valid bedesten params",
			backend: "bedesten_yargitay",
			params:  map[string]interface{}{"phrase": "mülkiyet hakkı", "birimAdi": "1. Hukuk Dairesi"},
		},
		{
			name:      "unknown field rejected",
			backend:   "bedesten_yargitay",
			params:    map[string]interface{}{"phrase": "tazminat", "bogus_field": 1},
			expectErr: true,
		},
		{
			name:      "missing required phrase",
			backend:   "bedesten_yargitay",
			params:    map[string]interface{}{"birimAdi": "ALL"},
			expectErr: true,
		},
		{
			name:    "anayasa with decision type",
			backend: "anayasa",
			params:  map[string]interface{}{"decision_type": "norm_denetimi", "keywords": []string{"ifade özgürlüğü"}},
		},
		{
			name:    "anayasa keywords only",
			backend: "anayasa",
			params:  map[string]interface{}{"keywords": []string{"ifade özgürlüğü"}},
		},
		{
			name:      "kvkk missing required keywords",
			backend:   "kvkk",
			params:    map[string]interface{}{},
			expectErr: true,
		},
		{
			name:    "mevzuat optional params",
			backend: "mevzuat",
			params:  map[string]interface{}{"mevzuat_no": "5237"},
		},
		{
			name:    "empty params allowed when nothing required",
			backend: "uyusmazlik",
			params:  map[string]interface{}{},
		},
	}

	r := newTestRegistry(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc, err := r.Descriptor(tt.backend)
			if err != nil {
				t.Fatalf("Descriptor lookup failed: %v", err)
			}
			err = desc.ValidateParams(tt.params)
			if tt.expectErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectErr && err != nil {
				t.Errorf("Unexpected validation error: %v", err)
			}
		})
	}
}

func TestHealthCheck(t *testing.T) {
	r := New()
	descs := DefaultDescriptors()

	if err := r.Register(descs[0], &stubAdapter{name: descs[0].Name, healthy: true}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(descs[1], &stubAdapter{name: descs[1].Name, healthy: false}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	results := r.HealthCheck(context.Background())
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if !results[descs[0].Name].Healthy {
		t.Errorf("Expected %s healthy", descs[0].Name)
	}
	if results[descs[1].Name].Healthy {
		t.Errorf("Expected %s unhealthy", descs[1].Name)
	}
	if results[descs[1].Name].Error == "" {
		t.Error("Expected error message on unhealthy backend")
	}
}
