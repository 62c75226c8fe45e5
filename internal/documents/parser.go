package documents

import (
	"fmt"
	"os"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Parser extracts plain text from a file on disk.
type Parser interface {
	Parse(path string) (string, error)
}

// TextParser reads UTF-8 plain-text files verbatim.
type TextParser struct{}

// Parse returns the file content as a string.
func (TextParser) Parse(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// PDFParser extracts text from PDF files page by page.
type PDFParser struct{}

// Parse concatenates the text of every page, separated by paragraph breaks.
func (PDFParser) Parse(path string) (string, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer doc.Close()

	var pages []string
	for i := 0; i < doc.NumPage(); i++ {
		text, err := doc.Text(i)
		if err == nil && strings.TrimSpace(text) != "" {
			pages = append(pages, text)
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
