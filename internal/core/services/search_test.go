package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/docuchat/internal/core/domain"
)

func TestSearchService_Search_DefaultsApplied(t *testing.T) {
	index := &mockIndex{}
	svc := NewSearchService(newMockEmbedder(""), index)

	_, err := svc.Search(context.Background(), "query", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTopK, index.lastTopK)
	assert.InDelta(t, domain.DefaultThreshold, index.lastMin, 1e-9)
}

func TestSearchService_Search_EmptyQuery(t *testing.T) {
	index := &mockIndex{}
	svc := NewSearchService(newMockEmbedder(""), index)

	hits, err := svc.Search(context.Background(), "   ", domain.SearchOptions{})
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.Zero(t, index.searchCalls)
}

func TestSearchService_Search_MapsHits(t *testing.T) {
	index := &mockIndex{
		searchOut: []domain.SearchResult{
			{
				Chunk: domain.Chunk{
					ID:      "policy.txt#0",
					Title:   "policy.txt - chunk 1",
					Content: strings.Repeat("x", 200),
					Metadata: domain.DocumentMetadata{
						FileName:   "policy.txt",
						Department: "HR",
					},
				},
				Score: 0.91,
			},
		},
	}
	svc := NewSearchService(newMockEmbedder(""), index)

	hits, err := svc.Search(context.Background(), "vacation", domain.SearchOptions{TopK: 3, Threshold: 0.5})
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "policy.txt#0", hits[0].ID)
	assert.Equal(t, "policy.txt - chunk 1", hits[0].Title)
	assert.Equal(t, "HR", hits[0].Department)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	// Long content is shortened for display.
	assert.Len(t, hits[0].ContentPreview, 163)
	assert.True(t, strings.HasSuffix(hits[0].ContentPreview, "..."))
}

func TestSearchService_Search_ShortContentNotTruncated(t *testing.T) {
	index := &mockIndex{
		searchOut: []domain.SearchResult{
			{Chunk: domain.Chunk{ID: "a#0", Content: "short"}, Score: 0.8},
		},
	}
	svc := NewSearchService(newMockEmbedder(""), index)

	hits, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "short", hits[0].ContentPreview)
}

func TestSearchService_Search_EmbeddingFailure(t *testing.T) {
	embedder := newMockEmbedder("")
	embedder.embedErrs = []error{
		assert.AnError, assert.AnError, assert.AnError,
	}
	svc := NewSearchService(embedder, &mockIndex{})

	_, err := svc.Search(context.Background(), "q", domain.SearchOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)
}

func TestSearchService_Search_InvalidTopKSurfaced(t *testing.T) {
	index := &mockIndex{searchErr: domain.ErrInvalidQuery}
	svc := NewSearchService(newMockEmbedder(""), index)

	_, err := svc.Search(context.Background(), "q", domain.SearchOptions{TopK: -1})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	// Not a transient failure: no retries.
	assert.Equal(t, 1, index.searchCalls)
}
