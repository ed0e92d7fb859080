// Package memory provides an in-memory vector index using brute-force
// cosine similarity. It is the default backend for tests and small corpora.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry pairs a stored chunk with its insertion sequence number.
// The sequence breaks score ties in favour of earliest-stored chunks.
type entry struct {
	chunk domain.Chunk
	seq   int
}

// Index is an in-memory implementation of driven.VectorIndex.
type Index struct {
	mu        sync.RWMutex
	dimension int
	entries   []entry
	byID      map[string]int // chunk ID -> position in entries
	nextSeq   int
}

// NewIndex creates an in-memory vector index for vectors of the given length.
func NewIndex(dimension int) (*Index, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("%w: dimension %d must be positive", domain.ErrInvalidQuery, dimension)
	}
	return &Index{
		dimension: dimension,
		byID:      make(map[string]int),
	}, nil
}

// Dimension returns the fixed vector length of the index.
func (x *Index) Dimension() int { return x.dimension }

// Store inserts the chunks, replacing any chunk whose ID already exists.
// A replaced chunk keeps its original insertion position so tie-breaking
// stays stable across re-ingestion. The whole batch is validated before
// anything becomes visible to concurrent searches.
func (x *Index) Store(_ context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for i := range chunks {
		if len(chunks[i].Embedding) != x.dimension {
			return fmt.Errorf("%w: chunk %s has %d dimensions, index expects %d",
				domain.ErrDimensionMismatch, chunks[i].ID, len(chunks[i].Embedding), x.dimension)
		}
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range chunks {
		if pos, ok := x.byID[chunks[i].ID]; ok {
			x.entries[pos].chunk = chunks[i]
			continue
		}
		x.byID[chunks[i].ID] = len(x.entries)
		x.entries = append(x.entries, entry{chunk: chunks[i], seq: x.nextSeq})
		x.nextSeq++
	}
	return nil
}

// Search returns up to topK chunks with cosine similarity >= minScore,
// ordered by descending score then insertion order.
func (x *Index) Search(_ context.Context, query []float32, topK int, minScore float64) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK %d must be positive", domain.ErrInvalidQuery, topK)
	}
	if len(query) != x.dimension {
		return nil, fmt.Errorf("%w: query has %d dimensions, index expects %d",
			domain.ErrDimensionMismatch, len(query), x.dimension)
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		chunk domain.Chunk
		score float64
		seq   int
	}

	matches := make([]scored, 0, len(x.entries))
	for i := range x.entries {
		score := cosine(query, x.entries[i].chunk.Embedding)
		if score >= minScore {
			matches = append(matches, scored{
				chunk: x.entries[i].chunk,
				score: score,
				seq:   x.entries[i].seq,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].seq < matches[j].seq
	})

	if topK > len(matches) {
		topK = len(matches)
	}
	results := make([]domain.SearchResult, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, domain.SearchResult{
			Chunk: matches[i].chunk,
			Score: matches[i].score,
		})
	}
	return results, nil
}

// Delete removes every chunk whose ID starts with idPrefix.
func (x *Index) Delete(_ context.Context, idPrefix string) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	kept := x.entries[:0]
	removed := 0
	for i := range x.entries {
		if strings.HasPrefix(x.entries[i].chunk.ID, idPrefix) {
			removed++
			continue
		}
		kept = append(kept, x.entries[i])
	}
	if removed == 0 {
		return 0, nil
	}

	x.entries = kept
	x.byID = make(map[string]int, len(x.entries))
	for i := range x.entries {
		x.byID[x.entries[i].chunk.ID] = i
	}
	return removed, nil
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// cosine computes the cosine similarity between two equal-length vectors.
// Zero vectors score 0.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
