package embeddings

import (
	"crypto/sha256"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache persists computed embeddings under the store's persistence root so
// repeated runs over the same corpus avoid recomputation. Entries are keyed
// by model name and content hash; a model change never returns stale vectors.
type Cache struct {
	db *sql.DB
}

// OpenCache opens (or creates) the cache database under dir.
func OpenCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "embeddings.db"))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS embeddings (
		model     TEXT NOT NULL,
		text_hash TEXT NOT NULL,
		vector    BLOB NOT NULL,
		PRIMARY KEY (model, text_hash)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate cache: %w", err)
	}
	return &Cache{db: db}, nil
}

// Get returns the cached vector for (model, text), if present.
func (c *Cache) Get(model, text string) ([]float32, bool, error) {
	var blob []byte
	err := c.db.QueryRow(
		`SELECT vector FROM embeddings WHERE model = ? AND text_hash = ?`,
		model, hashText(text),
	).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to query cache: %w", err)
	}
	return decodeVector(blob), true, nil
}

// Put stores a vector for (model, text), replacing any previous entry.
func (c *Cache) Put(model, text string, vec []float32) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO embeddings (model, text_hash, vector) VALUES (?, ?, ?)`,
		model, hashText(text), encodeVector(vec),
	)
	if err != nil {
		return fmt.Errorf("failed to store cache entry: %w", err)
	}
	return nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func hashText(text string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(text)))
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

func decodeVector(blob []byte) []float32 {
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vec
}
