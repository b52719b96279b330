// Package querycache is a shared read-through cache of collection reads,
// keyed by query signature. A mutation bumps a generation counter so every
// cached window is dropped at once.
package querycache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"go.uber.org/zap"
)

type Cache struct {
	kv     KV
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a cache storing entries under prefix for ttl.
func New(kv KV, prefix string, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{kv: kv, prefix: prefix, ttl: ttl, logger: logger}
}

// Get returns the cached result for signature along with the generation it
// was looked up under. Pass that generation to Put so a window read before a
// mutation is never stored as current. Any redis failure is treated as a miss
// with an empty generation.
func (c *Cache) Get(ctx context.Context, signature string) (earthquake.PagedResult, string, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		c.logger.Warn("Query cache unavailable", zap.Error(err))
		return earthquake.PagedResult{}, "", false
	}

	raw, err := c.kv.Get(ctx, c.entryKey(gen, signature))
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn("Query cache read failed", zap.Error(err))
		}
		return earthquake.PagedResult{}, gen, false
	}

	var result earthquake.PagedResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		c.logger.Warn("Discarding corrupt query cache entry", zap.String("signature", signature), zap.Error(err))
		return earthquake.PagedResult{}, gen, false
	}
	if result.Data == nil {
		result.Data = []earthquake.Record{}
	}
	return result, gen, true
}

// Put stores result under signature for generation gen, as returned by Get.
// An empty gen stores nothing.
func (c *Cache) Put(ctx context.Context, gen, signature string, result earthquake.PagedResult) {
	if gen == "" {
		return
	}

	payload, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("Failed to encode query cache entry", zap.Error(err))
		return
	}
	if err := c.kv.Set(ctx, c.entryKey(gen, signature), string(payload), c.ttl); err != nil {
		c.logger.Warn("Query cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached window. Old entries are left to expire.
func (c *Cache) Invalidate(ctx context.Context) error {
	if _, err := c.kv.Incr(ctx, c.generationKey()); err != nil {
		return fmt.Errorf("failed to bump query cache generation: %w", err)
	}
	return nil
}

func (c *Cache) generation(ctx context.Context) (string, error) {
	gen, err := c.kv.Get(ctx, c.generationKey())
	if errors.Is(err, ErrMiss) {
		return "0", nil
	}
	return gen, err
}

func (c *Cache) generationKey() string {
	return c.prefix + ":generation"
}

func (c *Cache) entryKey(gen, signature string) string {
	return c.prefix + ":" + gen + ":" + signature
}
