package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// TextEmbedder generates sentence embeddings through the Ollama embeddings
// API. The same embedder must be used at index time and at query time so
// vectors live in one space.
type TextEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
	cache      *Cache
	workers    int
}

// NewTextEmbedder creates an embedder for the given Ollama endpoint and model.
func NewTextEmbedder(baseURL, model string) *TextEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	return &TextEmbedder{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		workers:    4,
	}
}

// SetCache attaches a persistent cache consulted before calling the API.
func (e *TextEmbedder) SetCache(c *Cache) {
	e.cache = c
}

// SetWorkers bounds the parallelism of EmbedBatch.
func (e *TextEmbedder) SetWorkers(n int) {
	if n > 0 {
		e.workers = n
	}
}

// Model returns the embedding model name.
func (e *TextEmbedder) Model() string {
	return e.model
}

// Embed generates an embedding vector for the given text.
func (e *TextEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	if e.cache != nil {
		if vec, ok, err := e.cache.Get(e.model, text); err == nil && ok {
			return vec, nil
		}
	}

	vec, err := e.requestEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if e.cache != nil {
		// Cache failures are not fatal; the vector was computed.
		_ = e.cache.Put(e.model, text, vec)
	}
	return vec, nil
}

func (e *TextEmbedder) requestEmbedding(ctx context.Context, text string) ([]float32, error) {
	payload := map[string]any{
		"model":  e.model,
		"prompt": text,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/api/embeddings", e.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error: %d - %s", resp.StatusCode, string(body))
	}

	var result struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("empty embedding returned")
	}
	return result.Embedding, nil
}

// EmbedBatch generates embeddings for multiple texts, preserving order.
// Texts are embedded in parallel with bounded concurrency; the texts share
// no state so only the result slot is written per goroutine.
func (e *TextEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, text := range texts {
		g.Go(func() error {
			vec, err := e.Embed(ctx, text)
			if err != nil {
				return fmt.Errorf("failed to embed text %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}
