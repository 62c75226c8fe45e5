package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a single-file vector store rooted at a persistence
// directory. Search is brute-force cosine similarity over all rows, which is
// exact and plenty fast for corpus sizes a single session produces.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the store database under persistDir,
// creating the directory if absent.
func NewSQLiteStore(persistDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(persistDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create persist directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(persistDir, "chunks.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		position    INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL,
		content     TEXT NOT NULL,
		source      TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		embedding   BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Insert appends records in order inside one transaction.
func (s *SQLiteStore) Insert(ctx context.Context, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chunks (id, content, source, chunk_index, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range records {
		if _, err := stmt.ExecContext(ctx, rec.ID, rec.Content, rec.Source, rec.Index, encodeEmbedding(rec.Embedding)); err != nil {
			return fmt.Errorf("failed to insert chunk %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Search returns the topK records closest to embedding, most similar first.
// Ties keep insertion order, so repeated queries against an unchanged store
// return identical result sets.
func (s *SQLiteStore) Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, source, chunk_index, embedding FROM chunks ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var rec Record
		var blob []byte
		if err := rows.Scan(&rec.ID, &rec.Content, &rec.Source, &rec.Index, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk: %w", err)
		}
		rec.Embedding = decodeEmbedding(blob)
		results = append(results, SearchResult{
			Record: rec,
			Score:  CosineSimilarity(embedding, rec.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunks: %w", err)
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
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return n, nil
}

// Reset removes all records so the next batch starts from scratch.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM chunks`); err != nil {
		return fmt.Errorf("failed to reset store: %w", err)
	}
	return nil
}

// Close closes the store database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func encodeEmbedding(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeEmbedding(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}
