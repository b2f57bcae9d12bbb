// Package dataset owns the in-memory record list the views operate on.
package dataset

import (
	"sync"

	"go.uber.org/zap"

	"github.com/agridash/dealer-insights/internal/models"
)

// Store holds the current dataset as an immutable-per-snapshot list. An
// import either replaces the whole list or appends to it; records are
// never mutated in place, so snapshots can be shared freely with the
// filter and aggregation code.
type Store struct {
	logger *zap.Logger

	mu      sync.RWMutex
	records []models.NormalizedRecord
}

// NewStore creates an empty dataset.
func NewStore(logger *zap.Logger) *Store {
	return &Store{logger: logger}
}

// Replace swaps the entire dataset for the given records.
func (s *Store) Replace(records []models.NormalizedRecord) {
	s.mu.Lock()
	s.records = records
	size := len(s.records)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("Dataset replaced", zap.Int("records", size))
	}
}

// Append adds records to the current dataset. The backing array is copied
// so previously handed-out snapshots stay untouched.
func (s *Store) Append(records []models.NormalizedRecord) {
	s.mu.Lock()
	merged := make([]models.NormalizedRecord, 0, len(s.records)+len(records))
	merged = append(merged, s.records...)
	merged = append(merged, records...)
	s.records = merged
	size := len(s.records)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info("Dataset appended", zap.Int("added", len(records)), zap.Int("records", size))
	}
}

// Apply merges records per the import mode.
func (s *Store) Apply(records []models.NormalizedRecord, mode models.ImportMode) {
	if mode == models.ImportModeAppend {
		s.Append(records)
		return
	}
	s.Replace(records)
}

// Snapshot returns the current record list. Callers must treat it as
// read-only; state transitions always swap the whole slice.
func (s *Store) Snapshot() []models.NormalizedRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Len reports the current dataset size.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Clear empties the dataset.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = nil
	s.mu.Unlock()
}
