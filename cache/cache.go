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

// Package cache provides a Redis-backed cache for retrieved legal
// documents. Court decisions and legislation articles are immutable
// once published, so cached copies are safe to serve for the full TTL.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"lexgate/backends/base"
	"lexgate/shared/logger"
)

// DefaultTTL is how long cached documents are kept. Decisions do not
// change after publication; the TTL only bounds storage growth.
const DefaultTTL = 6 * time.Hour

// DocumentCache caches fetched documents in Redis keyed by
// source, document id, and page. All failures are treated as cache
// misses: a broken cache degrades latency, never correctness.
type DocumentCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// New connects to Redis and verifies the connection. redisURL uses the
// redis://host:port/db format.
func New(redisURL string, ttl time.Duration, log *logger.Logger) (*DocumentCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, ttl, log), nil
}

// NewWithClient wraps an existing Redis client
func NewWithClient(client *redis.Client, ttl time.Duration, log *logger.Logger) *DocumentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DocumentCache{client: client, ttl: ttl, log: log}
}

func documentKey(source, id string, page int) string {
	if page < 1 {
		page = 1
	}
	return fmt.Sprintf("doc:%s:%s:%d", source, id, page)
}

// Get returns a cached document, or nil on a miss. Redis errors and
// undecodable entries count as misses.
func (c *DocumentCache) Get(ctx context.Context, source, id string, page int) *base.Document {
	if c == nil {
		return nil
	}

	key := documentKey(source, id, page)
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.log.Warn("", "Document cache read failed, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}

	var doc base.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		c.log.Warn("", "Document cache entry undecodable, treating as miss", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return nil
	}
	return &doc
}

// Set stores a document. Write failures are logged and swallowed.
func (c *DocumentCache) Set(ctx context.Context, doc *base.Document) {
	if c == nil || doc == nil {
		return
	}

	key := documentKey(doc.Source, doc.ID, doc.PageNumber)
	data, err := json.Marshal(doc)
	if err != nil {
		c.log.Warn("", "Document cache encode failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("", "Document cache write failed", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// Close releases the Redis connection
func (c *DocumentCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
