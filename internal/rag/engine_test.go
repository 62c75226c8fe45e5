package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docchat/cli/internal/ollama"
	"github.com/docchat/cli/internal/vectorstore"
)

type stubEmbedder struct {
	vec []float32
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vec, nil
}

// fakeLLM serves /api/generate with a canned answer and records the prompts
// it received.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	answer  string
}

func (f *fakeLLM) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ollama.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.prompts = append(f.prompts, req.Prompt)
		f.mu.Unlock()
		json.NewEncoder(w).Encode(ollama.GenerateResponse{Response: f.answer, Done: true})
	}
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func populatedStore(t *testing.T, n int) *vectorstore.MemoryStore {
	t.Helper()
	store := vectorstore.NewMemoryStore()
	records := make([]vectorstore.Record, n)
	for i := range records {
		records[i] = vectorstore.Record{
			ID:        fmt.Sprintf("%d", i),
			Content:   fmt.Sprintf("fact number %d", i),
			Source:    "facts.txt",
			Index:     i,
			Embedding: []float32{1, float32(i) * 0.01},
		}
	}
	require.NoError(t, store.Insert(context.Background(), records))
	return store
}

func newTestEngine(t *testing.T, store vectorstore.Store, llm *fakeLLM) *Engine {
	t.Helper()
	srv := httptest.NewServer(llm.handler())
	t.Cleanup(srv.Close)
	client := ollama.NewClient(srv.URL, 30*time.Second)
	return NewEngine(store, stubEmbedder{vec: []float32{1, 0}}, client, "mistral", testLogger())
}

func TestAnswerEmptyQuestion(t *testing.T) {
	e := newTestEngine(t, populatedStore(t, 3), &fakeLLM{answer: "x"})

	_, err := e.Answer(context.Background(), "   \t ")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
}

func TestAnswerNilStore(t *testing.T) {
	e := newTestEngine(t, nil, &fakeLLM{answer: "x"})

	_, err := e.Answer(context.Background(), "question")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAnswerEmptyStore(t *testing.T) {
	e := newTestEngine(t, vectorstore.NewMemoryStore(), &fakeLLM{answer: "x"})

	_, err := e.Answer(context.Background(), "question")
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestAnswerVerbatim(t *testing.T) {
	llm := &fakeLLM{answer: "Cats purr because they are content."}
	e := newTestEngine(t, populatedStore(t, 3), llm)

	answer, err := e.Answer(context.Background(), "Why do cats purr?")
	require.NoError(t, err)
	assert.Equal(t, "Cats purr because they are content.", answer)
	assert.Contains(t, llm.lastPrompt(), "Why do cats purr?")
}

func TestAnswerUsesContextLength(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	e := newTestEngine(t, populatedStore(t, 5), llm)

	for _, k := range []int{1, 3, 5} {
		require.NoError(t, e.UpdateSettings(Settings{Temperature: 0.7, ContextLength: k}))

		_, err := e.Answer(context.Background(), "question")
		require.NoError(t, err)
		assert.Equal(t, k, strings.Count(llm.lastPrompt(), "### Excerpt"),
			"prompt should carry %d excerpts", k)
	}
}

func TestAnswerFewerChunksThanContextLength(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	e := newTestEngine(t, populatedStore(t, 2), llm)
	require.NoError(t, e.UpdateSettings(Settings{Temperature: 0.7, ContextLength: 5}))

	_, err := e.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(llm.lastPrompt(), "### Excerpt"))
}

func TestAnswerLLMFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := ollama.NewClient(srv.URL, 30*time.Second)
	e := NewEngine(populatedStore(t, 3), stubEmbedder{vec: []float32{1, 0}}, client, "mistral", testLogger())

	_, err := e.Answer(context.Background(), "question")
	assert.ErrorContains(t, err, "failed to generate answer")
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.Equal(t, 0.7, s.Temperature)
	assert.Equal(t, 3, s.ContextLength)
	assert.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Settings
		wantErr bool
	}{
		{"defaults", DefaultSettings(), false},
		{"bounds", Settings{Temperature: 0, ContextLength: 1}, false},
		{"upper bounds", Settings{Temperature: 1, ContextLength: 5}, false},
		{"temperature too high", Settings{Temperature: 1.1, ContextLength: 3}, true},
		{"temperature negative", Settings{Temperature: -0.1, ContextLength: 3}, true},
		{"context length zero", Settings{Temperature: 0.5, ContextLength: 0}, true},
		{"context length too high", Settings{Temperature: 0.5, ContextLength: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestUpdateSettingsRejectsInvalid(t *testing.T) {
	e := newTestEngine(t, nil, &fakeLLM{})

	err := e.UpdateSettings(Settings{Temperature: 2, ContextLength: 3})
	require.Error(t, err)
	assert.Equal(t, DefaultSettings(), e.Settings(), "invalid update must not change settings")
}

func TestSetStoreEnablesAnswering(t *testing.T) {
	llm := &fakeLLM{answer: "ok"}
	e := newTestEngine(t, nil, llm)

	_, err := e.Answer(context.Background(), "question")
	require.ErrorIs(t, err, ErrNotInitialized)

	e.SetStore(populatedStore(t, 1))

	answer, err := e.Answer(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
}
