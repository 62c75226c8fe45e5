package vectorstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory vector store for tests and ephemeral runs.
// Records keep insertion order so ties rank deterministically.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends records in order.
func (s *MemoryStore) Insert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

// Search returns the topK closest records by brute-force cosine similarity.
func (s *MemoryStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if topK <= 0 {
		topK = 5
	}

	results := make([]SearchResult, 0, len(s.records))
	for _, rec := range s.records {
		results = append(results, SearchResult{
			Record: rec,
			Score:  CosineSimilarity(embedding, rec.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count returns the number of stored records.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Reset removes all records.
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = nil
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
