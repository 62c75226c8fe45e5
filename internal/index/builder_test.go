package index

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/documents"
	"github.com/docchat/cli/internal/vectorstore"
)

type stubEmbedder struct {
	err error
}

func (s stubEmbedder) Model() string { return "stub" }

func (s stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = []float32{float32(len(text)), 1}
	}
	return vectors, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCreateStoreEmptyInput(t *testing.T) {
	b := NewBuilder(stubEmbedder{}, vectorstore.NewMemoryStore(), testLogger())

	_, err := b.CreateStore(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoChunks)
}

func TestCreateStore(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	b := NewBuilder(stubEmbedder{}, store, testLogger())

	chunks := []documents.Chunk{
		{Content: "first chunk", Source: "a.txt", Index: 0},
		{Content: "second chunk here", Source: "a.txt", Index: 1},
	}
	got, err := b.CreateStore(context.Background(), chunks)
	require.NoError(t, err)
	assert.Same(t, store, got)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := store.Search(context.Background(), []float32{float32(len("first chunk")), 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "first chunk", results[0].Content)
	assert.Equal(t, "a.txt", results[0].Source)
	assert.NotEmpty(t, results[0].ID)
}

func TestCreateStoreReplacesPreviousBatch(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	require.NoError(t, store.Insert(context.Background(), []vectorstore.Record{
		{ID: "old", Content: "stale", Embedding: []float32{1, 1}},
	}))

	b := NewBuilder(stubEmbedder{}, store, testLogger())
	_, err := b.CreateStore(context.Background(), []documents.Chunk{
		{Content: "fresh", Source: "a.txt", Index: 0},
	})
	require.NoError(t, err)

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "previous batch must be wiped")

	results, err := store.Search(context.Background(), []float32{1, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "fresh", results[0].Content)
}

func TestCreateStoreEmbedFailure(t *testing.T) {
	store := vectorstore.NewMemoryStore()
	require.NoError(t, store.Insert(context.Background(), []vectorstore.Record{
		{ID: "keep", Content: "kept", Embedding: []float32{1}},
	}))

	b := NewBuilder(stubEmbedder{err: errors.New("ollama down")}, store, testLogger())
	_, err := b.CreateStore(context.Background(), []documents.Chunk{
		{Content: "doomed", Source: "a.txt", Index: 0},
	})
	require.Error(t, err)

	// A failed embed pass leaves the existing store untouched.
	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
