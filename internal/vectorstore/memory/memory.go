// Package memory provides an in-memory vector store using brute-force
// cosine distance. It backs tests and small corpora; nothing persists.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gnss-assistant/internal/domain"
	"gnss-assistant/internal/vectorstore"
)

var _ domain.VectorStore = (*Store)(nil)

// Store holds chunks in process memory.
type Store struct {
	mu        sync.RWMutex
	dimension int
	chunks    []domain.Chunk
}

// NewStore creates an empty in-memory store.
func NewStore() *Store { return &Store{} }

// Exists reports whether any chunk with the given source is present.
func (s *Store) Exists(ctx context.Context, source string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chunks {
		if c.Meta.Source == source {
			return true, nil
		}
	}
	return false, nil
}

// Add appends chunks. The first insert establishes the collection's
// dimensionality; later inserts must match it.
func (s *Store) Add(ctx context.Context, chunks []domain.Chunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range chunks {
		if s.dimension == 0 {
			s.dimension = len(c.Embedding)
		}
		if len(c.Embedding) != s.dimension {
			return fmt.Errorf("%w: got %d, collection has %d", domain.ErrDimensionMismatch, len(c.Embedding), s.dimension)
		}
	}
	s.chunks = append(s.chunks, chunks...)
	return nil
}

// Query returns the k nearest chunks by cosine distance, fewer if the
// collection is smaller. Ties keep insertion order.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 {
		k = 1
	}
	scored := make([]domain.ScoredChunk, 0, len(s.chunks))
	for _, c := range s.chunks {
		scored = append(scored, domain.ScoredChunk{
			Text:     c.Text,
			Meta:     c.Meta,
			Distance: vectorstore.CosineDistance(embedding, c.Embedding),
		})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// Count returns the number of stored chunks.
func (s *Store) Count(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.chunks)), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }
