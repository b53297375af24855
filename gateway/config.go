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
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the gateway needs at startup. Values come
// from environment variables, optionally overridden by a YAML file
// named in CONFIG_FILE.
type Config struct {
	Port string `yaml:"port"`

	YargiURL   string `yaml:"yargi_url"`   // yargi tool server base URL
	MevzuatURL string `yaml:"mevzuat_url"` // mevzuat tool server base URL

	LLMEndpoint string `yaml:"llm_endpoint"` // OpenAI-compatible aggregator
	LLMAPIKey   string `yaml:"-"`            // secrets stay out of config files
	CatalogPath string `yaml:"catalog_path"` // optional model catalog YAML

	RedisURL    string        `yaml:"redis_url"`    // empty disables the document cache
	CacheTTL    time.Duration `yaml:"cache_ttl"`    //
	DatabaseURL string        `yaml:"database_url"` // empty disables the Postgres usage sink
}

// LoadConfig reads gateway configuration from the environment, then
// applies the optional CONFIG_FILE YAML on top.
//
// Environment variables used:
//   - PORT: HTTP server port (default: 8080)
//   - YARGI_TOOL_SERVER_URL: court decision tool server (default: http://localhost:8001)
//   - MEVZUAT_TOOL_SERVER_URL: legislation tool server (default: http://localhost:8002)
//   - LLM_ENDPOINT: OpenAI-compatible completion endpoint (default: https://openrouter.ai/api)
//   - LLM_API_KEY: aggregator API key
//   - MODEL_CATALOG_PATH: YAML model catalog (optional, built-in catalog otherwise)
//   - REDIS_URL: document cache (optional)
//   - CACHE_TTL: document cache TTL, Go duration syntax (optional)
//   - DATABASE_URL: PostgreSQL usage sink (optional)
//   - CONFIG_FILE: YAML file overriding the above (optional)
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		YargiURL:    getEnv("YARGI_TOOL_SERVER_URL", "http://localhost:8001"),
		MevzuatURL:  getEnv("MEVZUAT_TOOL_SERVER_URL", "http://localhost:8002"),
		LLMEndpoint: getEnv("LLM_ENDPOINT", "https://openrouter.ai/api"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		CatalogPath: os.Getenv("MODEL_CATALOG_PATH"),
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if raw := os.Getenv("CACHE_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid CACHE_TTL '%s': %w", raw, err)
		}
		cfg.CacheTTL = ttl
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
