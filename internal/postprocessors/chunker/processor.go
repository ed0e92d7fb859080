// Package chunker provides a fixed-size text chunking processor with overlap.
package chunker

import (
	"fmt"
	"strings"

	"github.com/quillon/docuchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// blockSeparator joins input text blocks into one logical text.
const blockSeparator = "\n\n"

// Processor splits extracted text blocks into fixed-size overlapping chunks.
type Processor struct {
	chunkSize int
	overlap   int
}

// New creates a chunking processor. The overlap must be smaller than the
// chunk size and non-negative, otherwise ErrInvalidChunkConfig is returned.
func New(chunkSize, overlap int) (*Processor, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", domain.ErrInvalidChunkConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap %d must be non-negative", domain.ErrInvalidChunkConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk size %d",
			domain.ErrInvalidChunkConfig, overlap, chunkSize)
	}
	return &Processor{chunkSize: chunkSize, overlap: overlap}, nil
}

// ChunkSize returns the configured window width.
func (p *Processor) ChunkSize() int { return p.chunkSize }

// Overlap returns the configured overlap width.
func (p *Processor) Overlap() int { return p.overlap }

// Chunk joins the text blocks with a blank line and slides a window of the
// configured size forward by (size - overlap) until the window reaches the
// end of the text. Windows are trimmed; whitespace-only windows are dropped.
// The final window is clipped to the text end. Output is deterministic for
// identical input.
func (p *Processor) Chunk(blocks []string) []string {
	content := strings.Join(blocks, blockSeparator)
	if content == "" {
		return nil
	}

	stride := p.chunkSize - p.overlap
	chunks := make([]string, 0, len(content)/stride+1)

	start := 0
	for {
		end := start + p.chunkSize
		last := end >= len(content)
		if last {
			end = len(content)
		}

		if window := strings.TrimSpace(content[start:end]); window != "" {
			chunks = append(chunks, window)
		}

		if last {
			break
		}
		start += stride
	}

	return chunks
}
