package cache

import "sync"

// KeyStats are the accumulated hit/miss counters for one key.
type KeyStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
}

// HitRate is hits / (hits + misses); 0 when the key was never read.
func (k KeyStats) HitRate() float64 {
	total := k.Hits + k.Misses
	if total == 0 {
		return 0
	}
	return float64(k.Hits) / float64(total)
}

// Stats classifies every cache read as a hit or miss, per key and in
// aggregate.
type Stats struct {
	mu     sync.Mutex
	perKey map[string]*KeyStats
	total  KeyStats
}

// NewStats creates empty counters.
func NewStats() *Stats {
	return &Stats{perKey: make(map[string]*KeyStats)}
}

func (s *Stats) recordHit(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key(key).Hits++
	s.total.Hits++
}

func (s *Stats) recordMiss(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key(key).Misses++
	s.total.Misses++
}

func (s *Stats) key(key string) *KeyStats {
	ks, ok := s.perKey[key]
	if !ok {
		ks = &KeyStats{}
		s.perKey[key] = ks
	}
	return ks
}

// Total returns the aggregate counters.
func (s *Stats) Total() KeyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Key returns the counters for one key.
func (s *Stats) Key(key string) KeyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ks, ok := s.perKey[key]; ok {
		return *ks
	}
	return KeyStats{}
}

// Snapshot copies the per-key counters for reporting.
func (s *Stats) Snapshot() map[string]KeyStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]KeyStats, len(s.perKey))
	for key, ks := range s.perKey {
		out[key] = *ks
	}
	return out
}
