package vectorstore

import (
	"context"
	"fmt"
)

// Config selects and configures a store backend.
type Config struct {
	Type             string // "sqlite" (default), "pgvector", or "memory"
	PersistDir       string // sqlite persistence root
	ConnectionString string // pgvector DSN
	Dimension        int    // embedding dimension, pgvector only
}

// Open creates a store for the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		return NewSQLiteStore(cfg.PersistDir)
	case "pgvector":
		return NewPgStore(ctx, cfg.ConnectionString, cfg.Dimension)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s", cfg.Type)
	}
}
