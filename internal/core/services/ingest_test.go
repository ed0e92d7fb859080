package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/postprocessors/chunker"
)

func newIngestFixture(t *testing.T, blocks []string) (*IngestService, *mockIndex, *mockDocStore) {
	t.Helper()
	processor, err := chunker.New(1000, 200)
	require.NoError(t, err)

	index := &mockIndex{}
	docStore := newMockDocStore()
	svc := NewIngestService(
		&mockRegistry{extractor: &mockExtractor{blocks: blocks}},
		processor,
		newMockEmbedder(""),
		index,
		docStore,
	)
	return svc, index, docStore
}

func TestIngestService_Ingest_Success(t *testing.T) {
	svc, index, docStore := newIngestFixture(t, []string{"some document text"})

	count, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName:   "notes.txt",
		Content:    []byte("some document text"),
		Department: "HR",
		Tags:       []string{"policy"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// A single store call carries the complete buffered chunk set.
	require.Len(t, index.storeCalls, 1)
	chunks := index.storeCalls[0]
	require.Len(t, chunks, 1)
	assert.Equal(t, "notes.txt#0", chunks[0].ID)
	assert.Equal(t, "notes.txt - chunk 1", chunks[0].Title)
	assert.Equal(t, "some document text", chunks[0].Content)
	assert.Equal(t, "HR", chunks[0].Metadata.Department)
	assert.Equal(t, []string{"policy"}, chunks[0].Metadata.Tags)
	assert.Equal(t, domain.FileTypeText, chunks[0].Metadata.FileType)
	assert.NotEmpty(t, chunks[0].Embedding)

	meta, err := docStore.GetDocument(context.Background(), "notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "HR", meta.Department)
}

func TestIngestService_Ingest_ThreeOverlappingChunks(t *testing.T) {
	// 2500 characters with window 1000 and overlap 200 yields 3 chunks.
	text := make([]byte, 2500)
	for i := range text {
		text[i] = byte('a' + i%26)
	}
	svc, index, _ := newIngestFixture(t, []string{string(text)})

	count, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "large.txt",
		Content:  text,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.Len(t, index.storeCalls, 1)
	chunks := index.storeCalls[0]
	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 1000)
	}
	// Consecutive chunks share a 200-character overlap region.
	assert.Equal(t, chunks[0].Content[800:], chunks[1].Content[:200])
	assert.Equal(t, chunks[1].Content[800:], chunks[2].Content[:200])
}

func TestIngestService_Ingest_UnsupportedFileType(t *testing.T) {
	svc, index, _ := newIngestFixture(t, []string{"text"})

	_, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "image.png",
		Content:  []byte{1, 2, 3},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFileType)
	assert.Empty(t, index.storeCalls)
}

func TestIngestService_Ingest_EmbeddingFailureAbortsWholeFile(t *testing.T) {
	processor, err := chunker.New(1000, 200)
	require.NoError(t, err)

	embedder := newMockEmbedder("")
	boom := errors.New("embedding backend down")
	embedder.embedErrs = []error{boom, boom, boom}

	index := &mockIndex{}
	svc := NewIngestService(
		&mockRegistry{extractor: &mockExtractor{blocks: []string{"text"}}},
		processor, embedder, index, newMockDocStore(),
	)

	_, err = svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "doc.txt",
		Content:  []byte("text"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingFailed)

	// Bounded retry: three attempts, then surfaced with nothing stored.
	assert.Equal(t, 3, embedder.calls)
	assert.Empty(t, index.storeCalls)
}

func TestIngestService_Ingest_EmbeddingRecoversWithinRetryBudget(t *testing.T) {
	processor, err := chunker.New(1000, 200)
	require.NoError(t, err)

	embedder := newMockEmbedder("")
	embedder.embedErrs = []error{errors.New("transient"), nil}

	index := &mockIndex{}
	svc := NewIngestService(
		&mockRegistry{extractor: &mockExtractor{blocks: []string{"text"}}},
		processor, embedder, index, newMockDocStore(),
	)

	count, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "doc.txt",
		Content:  []byte("text"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, index.storeCalls, 1)
}

func TestIngestService_Ingest_StoreUnavailableRetried(t *testing.T) {
	svc, index, _ := newIngestFixture(t, []string{"text"})
	index.storeErrs = []error{domain.ErrStoreUnavailable, nil}

	count, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "doc.txt",
		Content:  []byte("text"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, index.storeCalls, 1)
}

func TestIngestService_Ingest_DimensionMismatchNotRetried(t *testing.T) {
	svc, index, _ := newIngestFixture(t, []string{"text"})
	index.storeErrs = []error{domain.ErrDimensionMismatch, nil}

	_, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "doc.txt",
		Content:  []byte("text"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	// The configuration error surfaced immediately with no second attempt.
	assert.Empty(t, index.storeCalls)
}

func TestIngestService_Ingest_EmptyContent(t *testing.T) {
	svc, index, docStore := newIngestFixture(t, nil)

	count, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "empty.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Empty(t, index.storeCalls)

	_, err = docStore.GetDocument(context.Background(), "empty.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_Delete(t *testing.T) {
	svc, index, docStore := newIngestFixture(t, []string{"text"})

	_, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "doc.txt",
		Content:  []byte("text"),
	})
	require.NoError(t, err)

	index.deleteOut = 1
	removed, err := svc.Delete(context.Background(), "doc.txt")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.Equal(t, "doc.txt#", index.lastPrefix)

	_, err = docStore.GetDocument(context.Background(), "doc.txt")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestIngestService_Delete_MissingDocument(t *testing.T) {
	svc, _, _ := newIngestFixture(t, nil)

	removed, err := svc.Delete(context.Background(), "never-ingested.txt")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestIngestService_List(t *testing.T) {
	svc, _, _ := newIngestFixture(t, []string{"text"})

	_, err := svc.Ingest(context.Background(), driving.IngestRequest{
		FileName: "a.txt", Content: []byte("text"),
	})
	require.NoError(t, err)

	docs, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a.txt", docs[0].FileName)
}
