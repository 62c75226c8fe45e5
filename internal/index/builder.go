// Package index builds the vector index from split documents.
package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/docchat/cli/internal/documents"
	"github.com/docchat/cli/internal/vectorstore"
)

// ErrNoChunks indicates an empty chunk sequence was passed to the builder.
var ErrNoChunks = errors.New("no documents provided")

// Embedder is the subset of the text embedder the builder needs.
type Embedder interface {
	Model() string
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Builder embeds chunks and populates the vector store. Every batch rebuilds
// the store from scratch; incremental indexing is deliberately not offered.
type Builder struct {
	embedder Embedder
	store    vectorstore.Store
	logger   *slog.Logger
}

// NewBuilder creates a builder over the given embedder and store.
func NewBuilder(embedder Embedder, store vectorstore.Store, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{embedder: embedder, store: store, logger: logger}
}

// CreateStore embeds every chunk and replaces the store's contents with the
// new batch, returning the populated store handle. Fails with ErrNoChunks on
// an empty input.
func (b *Builder) CreateStore(ctx context.Context, chunks []documents.Chunk) (vectorstore.Store, error) {
	if len(chunks) == 0 {
		return nil, ErrNoChunks
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	b.logger.Info("creating vector store", "chunks", len(chunks), "model", b.embedder.Model())
	vectors, err := b.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}

	records := make([]vectorstore.Record, len(chunks))
	for i, chunk := range chunks {
		records[i] = vectorstore.Record{
			ID:        uuid.New().String(),
			Content:   chunk.Content,
			Source:    chunk.Source,
			Index:     chunk.Index,
			Embedding: vectors[i],
		}
	}

	if err := b.store.Reset(ctx); err != nil {
		return nil, fmt.Errorf("failed to reset store: %w", err)
	}
	if err := b.store.Insert(ctx, records); err != nil {
		return nil, fmt.Errorf("failed to insert chunks: %w", err)
	}

	b.logger.Info("vector store created", "records", len(records))
	return b.store, nil
}
