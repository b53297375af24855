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
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"lexgate/backends/mevzuat"
	"lexgate/backends/registry"
	"lexgate/backends/sdk"
	"lexgate/backends/yargi"
	"lexgate/cache"
	"lexgate/llm"
	"lexgate/shared/logger"
	"lexgate/usage"
)

// Run is the exported entry point for the gateway service.
//
// It wires the backend registry, the document cache, the model router,
// and the usage tracker, registers the HTTP routes, and starts the
// server. The function blocks until the server is shut down.
func Run() {
	log.Println("Starting LexGate gateway...")

	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Legal backends: every court source plus the legislation service
	reg := registry.New()
	courtAdapters := yargi.NewCourtAdapters(sdk.NewToolClient(config.YargiURL))
	legislation := mevzuat.NewLegislationAdapter(sdk.NewToolClient(config.MevzuatURL))

	for _, desc := range registry.DefaultDescriptors() {
		var err error
		if desc.Name == legislation.Name() {
			err = reg.Register(desc, legislation)
		} else {
			adapter, ok := courtAdapters[desc.Name]
			if !ok {
				log.Fatalf("No adapter for backend '%s'", desc.Name)
			}
			err = reg.Register(desc, adapter)
		}
		if err != nil {
			log.Fatalf("Failed to register backend '%s': %v", desc.Name, err)
		}
	}
	log.Printf("Registered %d legal backends (yargi: %s, mevzuat: %s)", reg.Count(), config.YargiURL, config.MevzuatURL)

	// Document cache is optional
	var docCache *cache.DocumentCache
	if config.RedisURL != "" {
		docCache, err = cache.New(config.RedisURL, config.CacheTTL, logger.New("document-cache"))
		if err != nil {
			log.Fatalf("Failed to connect document cache: %v", err)
		}
		defer docCache.Close()
		log.Printf("Document cache enabled: %s", config.RedisURL)
	} else {
		log.Println("Document cache disabled (REDIS_URL not set)")
	}

	// Usage tracker, with the Postgres sink when configured
	var tracker *usage.Tracker
	if config.DatabaseURL != "" {
		sink, err := usage.NewPostgresSink(config.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to open usage sink: %v", err)
		}
		defer sink.Close()
		tracker = usage.NewTrackerWithSink(sink)
		log.Println("Usage tracking: in-memory log + PostgreSQL sink")
	} else {
		tracker = usage.NewTracker()
		log.Println("Usage tracking: in-memory log only")
	}

	// Model catalog and fallback-chain router
	catalog := llm.DefaultCatalog()
	if config.CatalogPath != "" {
		catalog, err = llm.LoadCatalog(config.CatalogPath)
		if err != nil {
			log.Fatalf("Failed to load model catalog: %v", err)
		}
	}
	router := llm.NewRouter(catalog, llm.NewAggregatorClient(config.LLMEndpoint, config.LLMAPIKey), tracker)
	log.Printf("Model catalog: %d models, default %s", len(catalog.Models()), catalog.Default().ID)

	orch := NewOrchestrator(reg, docCache)
	server := NewServer(orch, reg, router, tracker, legislation)

	r := mux.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Configure for production
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	server.Routes(r)

	handler := c.Handler(r)
	log.Printf("LexGate gateway listening on port %s", config.Port)
	log.Fatal(http.ListenAndServe(":"+config.Port, handler))
}
