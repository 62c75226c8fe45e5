package rag

import (
	"fmt"
	"strings"

	"github.com/docchat/cli/internal/vectorstore"
)

// BuildPrompt formats the retrieved chunks, each tagged with its source
// document, followed by the user's question.
func BuildPrompt(results []vectorstore.SearchResult, question string) string {
	var parts []string

	parts = append(parts, "Answer the question using the context below. If the context does not contain the answer, say so.")
	parts = append(parts, "")

	if len(results) > 0 {
		parts = append(parts, "## Context:")
		for i, res := range results {
			parts = append(parts, fmt.Sprintf("### Excerpt %d (source: %s):", i+1, res.Record.Source))
			parts = append(parts, res.Record.Content)
			parts = append(parts, "")
		}
	}

	parts = append(parts, "## Question:")
	parts = append(parts, question)
	return strings.Join(parts, "\n")
}
