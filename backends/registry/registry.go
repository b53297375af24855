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
	"fmt"
	"sync"

	"lexgate/backends/base"
	"lexgate/shared/logger"
)

// ErrUnknownOperation is returned when no backend serves the requested
// logical operation.
var ErrUnknownOperation = errors.New("unknown operation")

// ErrUnknownBackend is returned when a backend name is not registered
var ErrUnknownBackend = errors.New("unknown backend")

// Availability is the advisory health state of one backend. It is
// sticky: a single failed call marks the backend Unavailable, a single
// successful call restores Available. It never blocks dispatch.
type Availability string

const (
	AvailabilityUnknown     Availability = "unknown"
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

type entry struct {
	desc         *Descriptor
	adapter      base.Adapter
	availability Availability
}

// Registry maps logical operation names to legal backend descriptors
// and tracks per-backend availability.
// Thread-safe for concurrent access.
type Registry struct {
	entries    map[string]*entry
	operations map[string][]string
	mu         sync.RWMutex
	logger     *logger.Logger
}

// New creates a registry with the default operation table and no
// backends registered yet.
func New() *Registry {
	ops := make(map[string][]string, len(defaultOperations))
	for op, names := range defaultOperations {
		ops[op] = append([]string(nil), names...)
	}
	return &Registry{
		entries:    make(map[string]*entry),
		operations: ops,
		logger:     logger.New("backend-registry"),
	}
}

// Register adds a backend to the registry.
// Returns error if a backend with the same name already exists.
func (r *Registry) Register(desc *Descriptor, adapter base.Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[desc.Name]; exists {
		return fmt.Errorf("backend '%s' already registered", desc.Name)
	}

	r.entries[desc.Name] = &entry{
		desc:         desc,
		adapter:      adapter,
		availability: AvailabilityUnknown,
	}

	r.logger.Info("", "Registered backend", map[string]interface{}{
		"backend":  desc.Name,
		"category": string(desc.Category),
	})

	return nil
}

// Resolve maps a logical operation name to the ordered list of backend
// descriptors that serve it. For the unified Bedesten search the
// caller's court types select a subset, preserving the caller's order;
// unrecognized court types are dropped with a warning, and an empty
// selection falls back to the canonical five-court order. Availability
// is advisory and never filters the result.
func (r *Registry) Resolve(operation string, courtTypes []string) ([]*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names, ok := r.operations[operation]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownOperation, operation)
	}

	if operation == "bedesten_unified_search" {
		selected := courtTypes
		if len(selected) == 0 {
			selected = bedestenCourtOrder
		}
		names = make([]string, 0, len(selected))
		for _, ct := range selected {
			backend, ok := bedestenCourtBackends[ct]
			if !ok {
				r.logger.Warn("", "Dropping unrecognized court type", map[string]interface{}{
					"court_type": ct,
				})
				continue
			}
			names = append(names, backend)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("%w: no recognized court types for '%s'", ErrUnknownOperation, operation)
		}
	}

	descs := make([]*Descriptor, 0, len(names))
	for _, name := range names {
		e, ok := r.entries[name]
		if !ok {
			return nil, fmt.Errorf("%w: backend '%s' not registered for '%s'", ErrUnknownOperation, name, operation)
		}
		descs = append(descs, e.desc)
	}

	return descs, nil
}

// RecordOutcome updates a backend's sticky availability after a call.
// Unknown backend names are ignored.
func (r *Registry) RecordOutcome(name string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[name]
	if !ok {
		return
	}

	next := AvailabilityUnavailable
	if success {
		next = AvailabilityAvailable
	}

	if e.availability != next {
		r.logger.Info("", "Backend availability changed", map[string]interface{}{
			"backend": name,
			"from":    string(e.availability),
			"to":      string(next),
		})
	}
	e.availability = next
}

// Availability returns the current advisory state for one backend
func (r *Registry) Availability(name string) Availability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.entries[name]; ok {
		return e.availability
	}
	return AvailabilityUnknown
}

// Status returns a snapshot of every backend's availability
func (r *Registry) Status() map[string]Availability {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]Availability, len(r.entries))
	for name, e := range r.entries {
		result[name] = e.availability
	}
	return result
}

// Adapter retrieves the adapter registered for a backend
func (r *Registry) Adapter(name string) (base.Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownBackend, name)
	}
	return e.adapter, nil
}

// Descriptor retrieves the descriptor registered for a backend
func (r *Registry) Descriptor(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownBackend, name)
	}
	return e.desc, nil
}

// Operations returns the logical operation names and the backends that
// serve each, for the tool-listing endpoint.
func (r *Registry) Operations() map[string][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string][]string, len(r.operations))
	for op, names := range r.operations {
		result[op] = append([]string(nil), names...)
	}
	return result
}

// List returns all registered backend names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered backends
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// HealthCheck probes every registered backend's upstream.
// Returns a map of backend names to their health status.
func (r *Registry) HealthCheck(ctx context.Context) map[string]*base.HealthStatus {
	r.mu.RLock()
	adapters := make(map[string]base.Adapter, len(r.entries))
	for name, e := range r.entries {
		adapters[name] = e.adapter
	}
	r.mu.RUnlock()

	results := make(map[string]*base.HealthStatus, len(adapters))
	for name, adapter := range adapters {
		status, err := adapter.HealthCheck(ctx)
		if err != nil {
			r.logger.Error("", "Health check failed", map[string]interface{}{
				"backend": name,
				"error":   err.Error(),
			})
			status = &base.HealthStatus{
				Healthy: false,
				Error:   err.Error(),
			}
		}
		results[name] = status
	}

	return results
}
