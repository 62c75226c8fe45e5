package documents

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrNotFound indicates the input directory does not exist.
	ErrNotFound = errors.New("directory not found")

	// ErrNoValidDocuments indicates no file produced any chunks.
	ErrNoValidDocuments = errors.New("no valid documents found or all documents were empty")
)

// Chunk is a bounded-length span of a source document, the unit of retrieval.
type Chunk struct {
	Content string
	Source  string // base name of the originating file
	Index   int    // position among chunks of the same source
}

// FileResult records the outcome of loading one file: either its chunks or
// the reason it was skipped. Per-file failures never abort the batch.
type FileResult struct {
	Source string
	Chunks []Chunk
	Err    error
}

// Skipped reports whether the file contributed no chunks.
func (r FileResult) Skipped() bool { return r.Err != nil }

// Stats summarizes a load pass for display.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	Chunks         int
}

// Loader reads documents from a directory and splits them into chunks.
type Loader struct {
	splitter *Splitter
	parsers  map[string]Parser
	logger   *slog.Logger
}

// NewLoader creates a loader with the given chunking parameters.
func NewLoader(chunkSize, overlap int, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		splitter: NewSplitter(chunkSize, overlap),
		parsers: map[string]Parser{
			".txt": TextParser{},
			".pdf": PDFParser{},
		},
		logger: logger,
	}
}

// Load enumerates recognized files under dir and returns one FileResult per
// file, in lexical filename order. Files with unrecognized extensions are
// ignored. Fails with ErrNotFound if dir does not exist.
func (l *Loader) Load(dir string) ([]FileResult, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var results []FileResult
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		parser, ok := l.parsers[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}
		results = append(results, l.loadFile(filepath.Join(dir, entry.Name()), parser))
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Source < results[j].Source })
	return results, nil
}

func (l *Loader) loadFile(path string, parser Parser) FileResult {
	source := filepath.Base(path)

	text, err := parser.Parse(path)
	if err != nil {
		return FileResult{Source: source, Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return FileResult{Source: source, Err: errors.New("empty file")}
	}

	pieces := l.splitter.Split(text)
	chunks := make([]Chunk, 0, len(pieces))
	for i, content := range pieces {
		chunks = append(chunks, Chunk{Content: content, Source: source, Index: i})
	}
	return FileResult{Source: source, Chunks: chunks}
}

// LoadAndSplit loads every recognized file under dir and returns the
// aggregated chunks in insertion order. Skipped files are logged as warnings.
// Fails with ErrNoValidDocuments if nothing survived.
func (l *Loader) LoadAndSplit(dir string) ([]Chunk, Stats, error) {
	results, err := l.Load(dir)
	if err != nil {
		return nil, Stats{}, err
	}

	var chunks []Chunk
	var stats Stats
	for _, res := range results {
		if res.Skipped() {
			stats.FilesSkipped++
			l.logger.Warn("skipping file", "source", res.Source, "reason", res.Err)
			continue
		}
		stats.FilesProcessed++
		chunks = append(chunks, res.Chunks...)
	}
	stats.Chunks = len(chunks)

	if len(chunks) == 0 {
		return nil, stats, ErrNoValidDocuments
	}
	l.logger.Info("documents processed", "files", stats.FilesProcessed, "chunks", stats.Chunks)
	return chunks, stats, nil
}
