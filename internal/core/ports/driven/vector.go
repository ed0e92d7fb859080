package driven

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
)

// VectorIndex stores chunk embeddings and answers similarity queries.
//
// Every vector stored in a given index instance has identical length.
// Implementations must make per-chunk writes atomic: a concurrent Search
// never observes a half-written chunk.
type VectorIndex interface {
	// Store inserts the chunks. Idempotent per chunk ID: a chunk whose ID
	// already exists is replaced atomically. Returns ErrDimensionMismatch
	// if a vector's length does not match the index dimension, and
	// ErrStoreUnavailable if the backend is unreachable.
	Store(ctx context.Context, chunks []domain.Chunk) error

	// Search returns up to topK results with score >= minScore, ordered by
	// descending cosine similarity; ties break by insertion order (earliest
	// stored first). topK <= 0 returns ErrInvalidQuery. A query vector with
	// the wrong length returns ErrDimensionMismatch.
	Search(ctx context.Context, query []float32, topK int, minScore float64) ([]domain.SearchResult, error)

	// Delete removes every chunk whose ID starts with idPrefix and returns
	// the number removed. A prefix matching nothing is a no-op returning 0.
	Delete(ctx context.Context, idPrefix string) (int, error)

	// Close releases resources.
	Close() error
}
