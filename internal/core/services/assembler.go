package services

import (
	"strings"

	"github.com/quillon/docuchat/internal/core/domain"
)

// Instruction template pieces for the grounded system prompt.
// Expansion is purely deterministic: identical inputs produce identical output.
const (
	groundedHeader = "You are an assistant that answers questions about a private document corpus. " +
		"Answer using only the reference content below. Do not speculate or draw on outside " +
		"knowledge. If the reference content does not answer the question, say so explicitly."

	groundedContentLabel = "Reference content:"

	groundedEmptyNotice = "No relevant content was found in the document corpus for this question. " +
		"Tell the user that no relevant content was found and do not attempt an answer from memory."
)

// ContextAssembler builds the grounded system instruction from retrieved chunks.
type ContextAssembler struct{}

// NewContextAssembler creates a context assembler.
func NewContextAssembler() *ContextAssembler {
	return &ContextAssembler{}
}

// Assemble concatenates each result's title and content in retrieval order,
// wrapped in the fixed grounding instructions. An empty result set still
// produces a well-formed instruction block.
func (a *ContextAssembler) Assemble(_ string, retrieved []domain.SearchResult) string {
	var b strings.Builder
	b.WriteString(groundedHeader)
	b.WriteString("\n\n")

	if len(retrieved) == 0 {
		b.WriteString(groundedEmptyNotice)
		return b.String()
	}

	b.WriteString(groundedContentLabel)
	for i := range retrieved {
		b.WriteString("\n\n")
		b.WriteString(retrieved[i].Chunk.Title)
		b.WriteString("\n")
		b.WriteString(retrieved[i].Chunk.Content)
	}
	return b.String()
}
