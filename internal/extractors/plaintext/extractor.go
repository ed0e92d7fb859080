// Package plaintext extracts text blocks from plain text files.
package plaintext

import (
	"context"
	"regexp"
	"strings"

	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// paragraphSplitter separates blocks at blank lines.
var paragraphSplitter = regexp.MustCompile(`\n[ \t]*\n`)

// Extractor handles plain text files.
type Extractor struct{}

// New creates a plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"txt"}
}

// Extract splits the file content into paragraph blocks at blank lines.
// Block order follows the source text; empty paragraphs are dropped.
func (e *Extractor) Extract(_ context.Context, _ string, content []byte) ([]string, error) {
	text := strings.ReplaceAll(string(content), "\r\n", "\n")

	var blocks []string
	for _, part := range paragraphSplitter.Split(text, -1) {
		part = strings.TrimSpace(part)
		if part != "" {
			blocks = append(blocks, part)
		}
	}
	return blocks, nil
}
