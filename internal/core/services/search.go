package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// previewLength bounds the content excerpt returned per hit.
const previewLength = 160

// SearchService answers free-text similarity queries over the vector index.
type SearchService struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewSearchService creates a search service.
func NewSearchService(embedder driven.EmbeddingService, index driven.VectorIndex) *SearchService {
	return &SearchService{embedder: embedder, index: index}
}

// Search embeds the query and returns matching chunks as external hits.
func (s *SearchService) Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	logger.Section("Search")

	query = strings.TrimSpace(query)
	if query == "" {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchHit{}, nil
	}

	opts = opts.Normalised()
	logger.Debug("Query: %q, topK=%d, threshold=%.2f", query, opts.TopK, opts.Threshold)

	var vector []float32
	err := withRetry(ctx, "embed query", nil, func() error {
		var embedErr error
		vector, embedErr = s.embedder.Embed(ctx, query)
		return embedErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	var results []domain.SearchResult
	storeRetryable := func(err error) bool { return errors.Is(err, domain.ErrStoreUnavailable) }
	err = withRetry(ctx, "vector search", storeRetryable, func() error {
		var searchErr error
		results, searchErr = s.index.Search(ctx, vector, opts.TopK, opts.Threshold)
		return searchErr
	})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	logger.Info("Results: %d", len(results))

	hits := make([]domain.SearchHit, len(results))
	for i := range results {
		hits[i] = domain.SearchHit{
			ID:             results[i].Chunk.ID,
			Title:          results[i].Chunk.Title,
			ContentPreview: preview(results[i].Chunk.Content),
			Department:     results[i].Chunk.Metadata.Department,
			Score:          results[i].Score,
		}
	}
	return hits, nil
}

// preview shortens chunk content for display.
func preview(content string) string {
	if len(content) <= previewLength {
		return content
	}
	return content[:previewLength] + "..."
}
