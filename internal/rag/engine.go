// Package rag answers questions by retrieving relevant chunks and
// conditioning a language model's generation on them.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/docchat/cli/internal/ollama"
	"github.com/docchat/cli/internal/vectorstore"
)

var (
	// ErrNotInitialized indicates a query arrived before any documents
	// were indexed.
	ErrNotInitialized = errors.New("no documents have been indexed")

	// ErrEmptyQuestion indicates a blank question.
	ErrEmptyQuestion = errors.New("question is empty")
)

// Settings control retrieval count and generation randomness. They take
// effect on the next query only and never trigger re-indexing.
type Settings struct {
	Temperature   float64 // generation randomness, 0.0-1.0
	ContextLength int     // number of chunks retrieved per query, 1-5
}

// DefaultSettings returns the defaults: temperature 0.7, context length 3.
func DefaultSettings() Settings {
	return Settings{Temperature: 0.7, ContextLength: 3}
}

// Validate checks both fields are within range.
func (s Settings) Validate() error {
	if s.Temperature < 0 || s.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0.0 and 1.0, got %.2f", s.Temperature)
	}
	if s.ContextLength < 1 || s.ContextLength > 5 {
		return fmt.Errorf("context length must be between 1 and 5, got %d", s.ContextLength)
	}
	return nil
}

// Embedder is the subset of the text embedder the engine needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Engine embeds a question, retrieves the closest chunks from the store and
// forwards them with the question to the language model.
type Engine struct {
	mu       sync.Mutex
	store    vectorstore.Store
	embedder Embedder
	llm      *ollama.Client
	model    string
	settings Settings
	logger   *slog.Logger
}

// NewEngine creates an engine over the given store, embedder and model.
// The store may be nil until the first index build.
func NewEngine(store vectorstore.Store, embedder Embedder, llm *ollama.Client, model string, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:    store,
		embedder: embedder,
		llm:      llm,
		model:    model,
		settings: DefaultSettings(),
		logger:   logger,
	}
}

// SetStore swaps in a freshly built store. Chat history is unaffected.
func (e *Engine) SetStore(store vectorstore.Store) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store = store
}

// UpdateSettings replaces the settings after validation. The change applies
// from the next query on.
func (e *Engine) UpdateSettings(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings = s
	return nil
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Answer retrieves the top-k chunks for the question and returns the model's
// response verbatim. External failures surface with their message.
func (e *Engine) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyQuestion
	}

	e.mu.Lock()
	store := e.store
	settings := e.settings
	e.mu.Unlock()

	if store == nil {
		return "", ErrNotInitialized
	}
	count, err := store.Count(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to inspect store: %w", err)
	}
	if count == 0 {
		return "", ErrNotInitialized
	}

	queryVec, err := e.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := store.Search(ctx, queryVec, settings.ContextLength)
	if err != nil {
		return "", fmt.Errorf("failed to search store: %w", err)
	}
	e.logger.Debug("retrieved context", "chunks", len(results), "k", settings.ContextLength)

	prompt := BuildPrompt(results, question)
	response, err := e.llm.Generate(ctx, &ollama.GenerateRequest{
		Model:  e.model,
		Prompt: prompt,
		Options: map[string]any{
			"temperature": settings.Temperature,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}
	return response, nil
}
