package cache

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// TieredCache layers the fast ephemeral tier over an optional persistent
// tier. Reads check fast first, then slow (promoting a persistent hit into
// the fast tier); writes populate both. Invalidation is by exact key or a
// full clear; there is no pattern matching.
//
// It is explicitly constructed and dependency-injected; there is no global
// instance.
type TieredCache struct {
	fast   Tier
	slow   Tier // may be nil for a memory-only cache
	stats  *Stats
	now    func() time.Time
	logger *zap.Logger
}

// NewTieredCache wires the tiers together. slow may be nil.
func NewTieredCache(fast, slow Tier, stats *Stats, logger *zap.Logger) *TieredCache {
	if stats == nil {
		stats = NewStats()
	}
	return &TieredCache{fast: fast, slow: slow, stats: stats, now: time.Now, logger: logger}
}

// Set stores the payload in both tiers with the given TTL.
func (c *TieredCache) Set(key string, payload []byte, ttl time.Duration) error {
	e := Entry{Payload: payload, StoredAt: c.now(), TTL: ttl}
	if err := c.fast.Set(key, e); err != nil {
		return err
	}
	if c.slow != nil {
		if err := c.slow.Set(key, e); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the cached payload, classifying the read as hit or miss.
// A persistent-tier hit is promoted into the fast tier with its original
// StoredAt, so the remaining TTL is preserved.
func (c *TieredCache) Get(key string) ([]byte, bool) {
	if e, ok, err := c.fast.Get(key); err == nil && ok {
		c.stats.recordHit(key)
		return e.Payload, true
	}

	if c.slow != nil {
		e, ok, err := c.slow.Get(key)
		if err != nil && c.logger != nil {
			c.logger.Warn("Persistent cache read failed", zap.String("key", key), zap.Error(err))
		}
		if err == nil && ok {
			if perr := c.fast.Set(key, e); perr != nil && c.logger != nil {
				c.logger.Warn("Failed to promote cache entry", zap.String("key", key), zap.Error(perr))
			}
			c.stats.recordHit(key)
			return e.Payload, true
		}
	}

	c.stats.recordMiss(key)
	return nil, false
}

// Fetch returns the cached payload for the key, invoking the producer only
// on a full miss and storing its result in both tiers.
func (c *TieredCache) Fetch(key string, ttl time.Duration, producer func() ([]byte, error)) ([]byte, error) {
	if payload, ok := c.Get(key); ok {
		return payload, nil
	}

	payload, err := producer()
	if err != nil {
		return nil, err
	}
	if err := c.Set(key, payload, ttl); err != nil && c.logger != nil {
		c.logger.Warn("Failed to populate cache", zap.String("key", key), zap.Error(err))
	}
	return payload, nil
}

// FetchJSON is Fetch with JSON encoding on both sides, used by the view
// services to memoize aggregate structures.
func FetchJSON[T any](c *TieredCache, key string, ttl time.Duration, producer func() (T, error)) (T, error) {
	var zero T
	payload, err := c.Fetch(key, ttl, func() ([]byte, error) {
		value, err := producer()
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if err != nil {
		return zero, err
	}
	var out T
	if err := json.Unmarshal(payload, &out); err != nil {
		// A corrupt cached payload should not fail the view; recompute
		// and repopulate so the next read hits the cache again.
		_ = c.Delete(key)
		value, perr := producer()
		if perr != nil {
			return zero, perr
		}
		if fresh, merr := json.Marshal(value); merr == nil {
			if serr := c.Set(key, fresh, ttl); serr != nil && c.logger != nil {
				c.logger.Warn("Failed to repopulate cache after corrupt entry", zap.String("key", key), zap.Error(serr))
			}
		}
		return value, nil
	}
	return out, nil
}

// Delete removes the exact key from both tiers.
func (c *TieredCache) Delete(key string) error {
	if err := c.fast.Delete(key); err != nil {
		return err
	}
	if c.slow != nil {
		return c.slow.Delete(key)
	}
	return nil
}

// Clear wipes both tiers.
func (c *TieredCache) Clear() error {
	if err := c.fast.Clear(); err != nil {
		return err
	}
	if c.slow != nil {
		return c.slow.Clear()
	}
	return nil
}

// Stats exposes the hit/miss instrumentation.
func (c *TieredCache) Stats() *Stats {
	return c.stats
}
