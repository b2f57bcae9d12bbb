// Package cache implements the two-tier aggregate cache: an ephemeral
// in-process tier in front of a persistent badger-backed tier, with
// per-key TTL and lazy expiry.
package cache

import (
	"encoding/json"
	"time"
)

// Entry is the stored envelope. An entry is logically absent once
// now - StoredAt > TTL, even while physically present until the next
// read-triggered eviction.
type Entry struct {
	Payload  json.RawMessage `json:"payload"`
	StoredAt time.Time       `json:"storedAt"`
	TTL      time.Duration   `json:"ttl"`
}

// Expired reports whether the entry's TTL has elapsed at the given instant.
func (e Entry) Expired(now time.Time) bool {
	return now.Sub(e.StoredAt) > e.TTL
}

// Tier is the contract both cache tiers share. Get must treat an expired
// entry as absent and delete it as a side effect of the check.
type Tier interface {
	Set(key string, e Entry) error
	Get(key string) (Entry, bool, error)
	Delete(key string) error
	Clear() error
}
