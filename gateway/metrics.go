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
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for backend fan-out and LLM completions
var (
	promBackendCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexgate_backend_calls_total",
			Help: "Total number of legal backend calls",
		},
		[]string{"backend", "operation", "status"},
	)
	promBackendDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lexgate_backend_duration_milliseconds",
			Help:    "Legal backend call duration in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"backend", "operation"},
	)
	promFallbackResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexgate_fallback_results_total",
			Help: "Total number of fallback results substituted for failed backends",
		},
		[]string{"backend"},
	)
	promCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lexgate_completions_total",
			Help: "Total number of LLM completion requests",
		},
		[]string{"model", "status"},
	)
	promCompletionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lexgate_completion_duration_milliseconds",
			Help:    "LLM completion duration in milliseconds, including fallback attempts",
			Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		},
		[]string{"model"},
	)
)

func init() {
	prometheus.MustRegister(promBackendCalls)
	prometheus.MustRegister(promBackendDuration)
	prometheus.MustRegister(promFallbackResults)
	prometheus.MustRegister(promCompletions)
	prometheus.MustRegister(promCompletionDuration)
}
