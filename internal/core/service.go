// Package core exposes the sample operations behind the HTTP surface:
// upserts, sequence generation, pairwise comparison, aggregates, and the
// question dispatcher.
package core

import (
	"context"

	"ancientdna/internal/sequence"
	"ancientdna/pkg/domain"
)

type (
	// Sample aliases domain.Sample for service-level operations.
	Sample = domain.Sample
	// ErrNotFound aliases the store's not-found error.
	ErrNotFound = domain.ErrNotFound
)

// Logger is the minimal structured logging surface the service needs.
// *charmbracelet/log.Logger satisfies it.
type Logger interface {
	Debug(msg any, keyvals ...any)
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}
func (nopLogger) Info(any, ...any)  {}
func (nopLogger) Warn(any, ...any)  {}
func (nopLogger) Error(any, ...any) {}

// Answerer produces a free-text answer for a prompt. Implemented by the
// genai client; absent when no API credential is configured.
type Answerer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// Service wires the sample store to the sequence derivation and the question
// dispatcher. The store is constructor-injected so tests can isolate state
// and deployments can swap persistence drivers.
type Service struct {
	store    domain.SampleStore
	answerer Answerer
	logger   Logger
}

// Option adjusts service construction.
type Option func(*Service)

// WithAnswerer enables the external fallback for open-ended questions.
func WithAnswerer(a Answerer) Option {
	return func(s *Service) { s.answerer = a }
}

// WithLogger routes service logging to the supplied logger.
func WithLogger(l Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.SampleStore, opts ...Option) *Service {
	s := &Service{store: store, logger: nopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.SampleStore { return s.store }

// AddSample inserts or overwrites one sample.
func (s *Service) AddSample(ctx context.Context, sample Sample) error {
	return s.store.Upsert(ctx, sample)
}

// AddSamples inserts or overwrites a batch and reports how many records were
// written.
func (s *Service) AddSamples(ctx context.Context, samples []Sample) (int, error) {
	return s.store.UpsertBatch(ctx, samples)
}

// ListSamples returns all samples in store order.
func (s *Service) ListSamples(ctx context.Context) ([]Sample, error) {
	return s.store.List(ctx)
}

// GenerateSequence derives the sequence for the stored sample id. The
// sequence is recomputed on every call, never stored.
func (s *Service) GenerateSequence(ctx context.Context, sampleID string) (string, error) {
	sample, err := s.store.Lookup(ctx, sampleID)
	if err != nil {
		return "", err
	}
	return sequence.Generate(sample.ID, sample.Region, sample.Age, sample.Seed), nil
}

// Comparison reports the similarity between two samples' derived sequences.
type Comparison struct {
	ID1        string  `json:"id1"`
	ID2        string  `json:"id2"`
	Similarity float64 `json:"similarity"`
}

// CompareSequences derives both samples' sequences and scores them.
func (s *Service) CompareSequences(ctx context.Context, id1, id2 string) (Comparison, error) {
	seq1, err := s.GenerateSequence(ctx, id1)
	if err != nil {
		return Comparison{}, err
	}
	seq2, err := s.GenerateSequence(ctx, id2)
	if err != nil {
		return Comparison{}, err
	}
	pct, err := sequence.Similarity(seq1, seq2)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{ID1: id1, ID2: id2, Similarity: pct}, nil
}

// CountSamples returns the total number of stored samples.
func (s *Service) CountSamples(ctx context.Context) (int, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// AverageAge returns the mean age across all stored samples. The second
// return is false when the store is empty.
func (s *Service) AverageAge(ctx context.Context) (float64, bool, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return 0, false, err
	}
	if len(list) == 0 {
		return 0, false, nil
	}
	total := 0
	for _, sample := range list {
		total += sample.Age
	}
	return float64(total) / float64(len(list)), true, nil
}

// RegionCount is one bucket of the region histogram.
type RegionCount struct {
	Region string `json:"region"`
	Count  int    `json:"count"`
}

// RegionCounts returns the histogram of samples per region, ordered by each
// region's first appearance in the store.
func (s *Service) RegionCounts(ctx context.Context) ([]RegionCount, error) {
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int)
	var out []RegionCount
	for _, sample := range list {
		if i, ok := index[sample.Region]; ok {
			out[i].Count++
			continue
		}
		index[sample.Region] = len(out)
		out = append(out, RegionCount{Region: sample.Region, Count: 1})
	}
	return out, nil
}
