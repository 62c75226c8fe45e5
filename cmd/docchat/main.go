package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/docchat/cli/config"
	"github.com/docchat/cli/internal/documents"
	"github.com/docchat/cli/internal/embeddings"
	"github.com/docchat/cli/internal/index"
	"github.com/docchat/cli/internal/ollama"
	"github.com/docchat/cli/internal/rag"
	"github.com/docchat/cli/internal/session"
	"github.com/docchat/cli/internal/tui"
	"github.com/docchat/cli/internal/vectorstore"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger()
	slog.SetDefault(logger)

	// The embedding cache lives under the same persistence root as the
	// store, so wiping the documents directory wipes everything.
	embedder := embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Embeddings.TextModel)
	embedder.SetWorkers(cfg.Processing.Workers)
	cache, err := embeddings.OpenCache(filepath.Join(cfg.Store.PersistDir, "models"))
	if err != nil {
		logger.Warn("embedding cache unavailable", "error", err)
	} else {
		embedder.SetCache(cache)
		defer cache.Close()
	}

	store, err := vectorstore.Open(context.Background(), vectorstore.Config{
		Type:             cfg.Store.Type,
		PersistDir:       cfg.Store.PersistDir,
		ConnectionString: cfg.Store.ConnectionString,
		Dimension:        cfg.Embeddings.Dimension,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening vector store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	loader := documents.NewLoader(cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap, logger)
	builder := index.NewBuilder(embedder, store, logger)
	llm := ollama.NewClient(cfg.Ollama.BaseURL, 5*time.Minute)

	engine := rag.NewEngine(store, embedder, llm, cfg.Ollama.ChatModel, logger)
	if err := engine.UpdateSettings(rag.Settings{
		Temperature:   cfg.Retrieval.Temperature,
		ContextLength: cfg.Retrieval.ContextLength,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error in retrieval settings: %v\n", err)
		os.Exit(1)
	}

	app := tui.NewApp(cfg, loader, builder, engine, session.New())
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running app: %v\n", err)
		os.Exit(1)
	}
}

// newLogger logs to a file in the config directory; the terminal belongs to
// the TUI.
func newLogger() *slog.Logger {
	dir := filepath.Join(os.Getenv("HOME"), ".docchat")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	f, err := os.OpenFile(filepath.Join(dir, "docchat.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(f, nil))
}
