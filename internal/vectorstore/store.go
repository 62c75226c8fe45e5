// Package vectorstore provides persistent vector storage and similarity search.
package vectorstore

import (
	"context"
	"math"
)

// Record is a stored chunk with its embedding vector.
type Record struct {
	ID        string
	Content   string
	Source    string
	Index     int
	Embedding []float32
}

// SearchResult pairs a record with its similarity to the query vector.
type SearchResult struct {
	Record
	Score float64 // cosine similarity, higher is closer
}

// Store is the capability interface over a vector index: append-only
// insertion plus nearest-neighbor search. Reset wipes the index so a new
// batch can be built from scratch.
type Store interface {
	Insert(ctx context.Context, records []Record) error
	Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
	Close() error
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
