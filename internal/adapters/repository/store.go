// Package repository holds the per-category results of one grading run.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/autograder/internal/domain/analysis"
	"github.com/okian/autograder/internal/domain/model"
	"github.com/okian/autograder/pkg/metrics"
)

// Store provides read/write access to a run's result table.
type Store interface {
	// Record stores the outcome of one analyzer. Errors are converted into
	// zero-score failed results.
	Record(ctx context.Context, o analysis.Outcome) error

	// Results returns a copy of the table.
	Results(ctx context.Context) model.Results

	// Has reports whether a category was recorded.
	Has(c model.Category) bool
}

// MemoryStore is a mutex-guarded Store. Workers record into it
// concurrently; the first outcome per category wins.
type MemoryStore struct {
	mu      sync.RWMutex
	results model.Results
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{results: make(model.Results, len(model.AllCategories()))}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, o analysis.Outcome) error {
	if !o.Category.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidCategory, int(o.Category))
	}

	result := o.Partial()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.results[o.Category]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, o.Category)
	}
	s.results[o.Category] = result

	name := o.Category.String()
	if o.OK() {
		metrics.RecordAnalyzer(name, o.Elapsed.Seconds(), result.Score)
	} else {
		metrics.RecordAnalyzerFailure(name, o.Reason())
	}
	return nil
}

// Results implements Store.
func (s *MemoryStore) Results(_ context.Context) model.Results {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.results.Clone()
}

// Has implements Store.
func (s *MemoryStore) Has(c model.Category) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.results[c]
	return ok
}
