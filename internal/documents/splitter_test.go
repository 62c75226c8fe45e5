package documents

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reconstruct strips the leading overlap runes from every chunk after the
// first and concatenates the rest.
func reconstruct(chunks []string, overlap int) string {
	var b strings.Builder
	for i, chunk := range chunks {
		runes := []rune(chunk)
		if i > 0 {
			runes = runes[overlap:]
		}
		b.WriteString(string(runes))
	}
	return b.String()
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(1000, 200)

	text := "AI is great. ML is a subset of AI."
	chunks := s.Split(text)

	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestSplitEmptyText(t *testing.T) {
	s := NewSplitter(1000, 200)
	assert.Nil(t, s.Split(""))
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	s := NewSplitter(1000, 200)

	text := strings.Repeat("a", 2500)
	chunks := s.Split(text)

	require.Equal(t, []int{1000, 1000, 900}, chunkLengths(chunks))
	assert.Equal(t, text, reconstruct(chunks, 200))
}

func TestSplitRespectsMaxChunkSize(t *testing.T) {
	s := NewSplitter(1000, 200)

	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 200)
	for i, chunk := range s.Split(text) {
		assert.LessOrEqual(t, len([]rune(chunk)), 1000, "chunk %d too long", i)
	}
}

func TestSplitExactOverlap(t *testing.T) {
	s := NewSplitter(1000, 200)

	text := strings.Repeat("Sentences pile up here, one after another, for a while. ", 100)
	chunks := s.Split(text)
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		cur := []rune(chunks[i])
		assert.Equal(t, string(prev[len(prev)-200:]), string(cur[:200]),
			"chunks %d and %d do not share a 200-rune overlap", i-1, i)
	}
	assert.Equal(t, text, reconstruct(chunks, 200))
}

func TestSplitPrefersParagraphBreak(t *testing.T) {
	s := NewSplitter(1000, 200)

	// A paragraph break at rune 600 must win over the later periods.
	text := strings.Repeat("a", 598) + "\n\n" + strings.Repeat("b. ", 300)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], "\n\n"), "first chunk should end at the paragraph break")
	assert.Equal(t, 600, len([]rune(chunks[0])))
}

func TestSplitFallsBackThroughSeparators(t *testing.T) {
	s := NewSplitter(1000, 200)

	// No paragraph or line breaks, no sentence punctuation: the splitter
	// must fall back to commas.
	text := strings.Repeat("word word word word, ", 100)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	assert.True(t, strings.HasSuffix(chunks[0], ","), "first chunk should end at a comma")
}

func TestSplitMultiByteText(t *testing.T) {
	s := NewSplitter(100, 20)

	text := strings.Repeat("héllo wörld, über ällen. ", 30)
	chunks := s.Split(text)

	require.Greater(t, len(chunks), 1)
	for _, chunk := range chunks {
		assert.LessOrEqual(t, len([]rune(chunk)), 100)
	}
	assert.Equal(t, text, reconstruct(chunks, 20))
}

func chunkLengths(chunks []string) []int {
	lengths := make([]int, len(chunks))
	for i, c := range chunks {
		lengths[i] = len([]rune(c))
	}
	return lengths
}
