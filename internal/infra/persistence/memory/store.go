// Package memory provides the in-memory implementation of the sample store
// used for tests and ephemeral deployments.
package memory

import (
	"context"
	"sync"

	"ancientdna/pkg/domain"
)

// Compile-time contract assertion.
var _ domain.SampleStore = (*Store)(nil)

// Store keeps samples in a mutex-guarded map plus an insertion-order index.
// Overwriting an existing id keeps the entry's original position, matching
// the iteration order callers observe through List.
type Store struct {
	mu      sync.RWMutex
	samples map[string]domain.Sample
	order   []string
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{samples: make(map[string]domain.Sample)}
}

// Upsert inserts or overwrites the entry for sample.ID.
func (s *Store) Upsert(_ context.Context, sample domain.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertLocked(sample)
	return nil
}

// UpsertBatch applies Upsert for each sample under a single lock acquisition.
func (s *Store) UpsertBatch(_ context.Context, samples []domain.Sample) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sample := range samples {
		s.upsertLocked(sample)
	}
	return len(samples), nil
}

func (s *Store) upsertLocked(sample domain.Sample) {
	if _, exists := s.samples[sample.ID]; !exists {
		s.order = append(s.order, sample.ID)
	}
	s.samples[sample.ID] = sample
}

// Lookup returns the sample for id or domain.ErrNotFound.
func (s *Store) Lookup(_ context.Context, id string) (domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.samples[id]
	if !ok {
		return domain.Sample{}, domain.ErrNotFound{ID: id}
	}
	return sample, nil
}

// List returns all samples in insertion/overwrite order.
func (s *Store) List(_ context.Context) ([]domain.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(), nil
}

func (s *Store) listLocked() []domain.Sample {
	out := make([]domain.Sample, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.samples[id])
	}
	return out
}

// ExportState returns a deep copy of the current state.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Snapshot{Samples: s.listLocked()}
}

// ImportState replaces the current state with the snapshot contents.
func (s *Store) ImportState(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.samples = make(map[string]domain.Sample, len(snapshot.Samples))
	s.order = s.order[:0]
	for _, sample := range snapshot.Samples {
		s.upsertLocked(sample)
	}
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
