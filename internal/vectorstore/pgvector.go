package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// PgStore is a PostgreSQL-backed vector store using the pgvector extension.
// Unlike the SQLite backend, similarity search runs inside the database.
type PgStore struct {
	pool      *pgxpool.Pool
	dimension int
}

// NewPgStore connects to PostgreSQL and prepares the chunks table. The
// embedding dimension must match the configured embedding model.
func NewPgStore(ctx context.Context, connString string, dimension int) (*PgStore, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	config.MaxConns = 10
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PgStore{pool: pool, dimension: dimension}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

func (s *PgStore) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS chunks (
			position    BIGSERIAL PRIMARY KEY,
			id          TEXT NOT NULL,
			content     TEXT NOT NULL,
			source      TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			embedding   vector(%d) NOT NULL
		)`, s.dimension),
		`CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, m := range migrations {
		if _, err := s.pool.Exec(ctx, m); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}

// Insert appends records in order using a single batch.
func (s *PgStore) Insert(ctx context.Context, records []Record) error {
	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(
			`INSERT INTO chunks (id, content, source, chunk_index, embedding) VALUES ($1, $2, $3, $4, $5)`,
			rec.ID, rec.Content, rec.Source, rec.Index, pgvector.NewVector(rec.Embedding),
		)
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := range records {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return nil
}

// Search returns the topK closest records by cosine distance, most similar
// first. Ties break on insertion order.
func (s *PgStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	query := pgvector.NewVector(embedding)
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, source, chunk_index, embedding, 1 - (embedding <=> $1) AS score
		 FROM chunks
		 ORDER BY embedding <=> $1, position
		 LIMIT $2`,
		query, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var res SearchResult
		var vec pgvector.Vector
		if err := rows.Scan(&res.Record.ID, &res.Record.Content, &res.Record.Source,
			&res.Record.Index, &vec, &res.Score); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		res.Record.Embedding = vec.Slice()
		results = append(results, res)
	}
	return results, rows.Err()
}

// Count returns the number of stored records.
func (s *PgStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Reset removes all records so the next batch starts from scratch.
func (s *PgStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `TRUNCATE chunks RESTART IDENTITY`); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PgStore) Close() error {
	s.pool.Close()
	return nil
}
