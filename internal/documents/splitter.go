package documents

// defaultSeparators is the split-point priority order: paragraph break,
// line break, sentence-ending punctuation, comma, space.
var defaultSeparators = []string{"\n\n", "\n", ".", "!", "?", ",", " "}

// Splitter cuts document text into overlapping chunks. Lengths are measured
// in runes so multi-byte text is not cut mid-character.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

// NewSplitter creates a splitter with the given maximum chunk size and
// overlap between consecutive chunks.
func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 5
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split cuts text into chunks of at most chunkSize runes. Each cut prefers
// the highest-priority separator found inside the window, falling back to
// lower-priority ones and finally to a hard cut at chunkSize. Consecutive
// chunks share exactly overlap runes, so stripping the first overlap runes
// of every chunk after the first reconstructs the original text.
func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		remaining := len(runes) - pos
		if remaining <= s.chunkSize {
			chunks = append(chunks, string(runes[pos:]))
			break
		}

		end := pos + s.cutLength(runes[pos:pos+s.chunkSize])
		chunks = append(chunks, string(runes[pos:end]))

		next := end - s.overlap
		if next <= pos {
			// The cut landed so early that overlapping would not
			// advance; continue without overlap.
			next = end
		}
		pos = next
	}
	return chunks
}

// cutLength returns how many runes of window belong to the current chunk.
// The separator stays with the chunk it terminates.
func (s *Splitter) cutLength(window []rune) int {
	for _, sep := range s.separators {
		if idx := lastIndex(window, []rune(sep)); idx >= 0 {
			return idx + len([]rune(sep))
		}
	}
	return len(window)
}

// lastIndex returns the index of the last occurrence of sep in runes, or -1.
func lastIndex(runes, sep []rune) int {
	if len(sep) == 0 || len(sep) > len(runes) {
		return -1
	}
outer:
	for i := len(runes) - len(sep); i >= 0; i-- {
		for j := range sep {
			if runes[i+j] != sep[j] {
				continue outer
			}
		}
		return i
	}
	return -1
}
