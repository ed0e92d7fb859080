package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
	"github.com/quillon/docuchat/internal/postprocessors/chunker"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService runs the ingestion pipeline: extract text, chunk, embed,
// and index. Ingestion is all-or-nothing per file: chunks are buffered with
// their embeddings and stored in a single call, so a failure at any step
// leaves no partial chunk set indexed.
type IngestService struct {
	registry  driven.ExtractorRegistry
	processor *chunker.Processor
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	docStore  driven.DocumentStore
	now       func() time.Time
}

// NewIngestService creates an ingest service.
func NewIngestService(
	registry driven.ExtractorRegistry,
	processor *chunker.Processor,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
) *IngestService {
	return &IngestService{
		registry:  registry,
		processor: processor,
		embedder:  embedder,
		index:     index,
		docStore:  docStore,
		now:       time.Now,
	}
}

// Ingest processes one file and returns the number of chunks stored.
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (int, error) {
	logger.Section("Ingestion")
	logger.Debug("File: %s (%d bytes)", req.FileName, len(req.Content))

	fileType, err := domain.FileTypeForName(req.FileName)
	if err != nil {
		return 0, err
	}

	extractor, err := s.registry.ExtractorFor(req.FileName)
	if err != nil {
		return 0, err
	}

	blocks, err := extractor.Extract(ctx, req.FileName, req.Content)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", req.FileName, err)
	}
	logger.Debug("Extracted %d text blocks", len(blocks))

	texts := s.processor.Chunk(blocks)
	if len(texts) == 0 {
		logger.Info("No chunkable text in %s", req.FileName)
		return 0, nil
	}
	logger.Debug("Produced %d chunks", len(texts))

	var embeddings [][]float32
	err = withRetry(ctx, "embed batch", nil, func() error {
		var embedErr error
		embeddings, embedErr = s.embedder.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}
	if len(embeddings) != len(texts) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingFailed, len(embeddings), len(texts))
	}

	meta := domain.DocumentMetadata{
		FileName:   req.FileName,
		FileType:   fileType,
		UploadedAt: s.now(),
		Department: req.Department,
		Tags:       req.Tags,
	}

	// Buffer the complete chunk set before a single store call.
	chunks := make([]domain.Chunk, len(texts))
	for i := range texts {
		chunks[i] = domain.Chunk{
			ID:        domain.ChunkID(req.FileName, i),
			Title:     domain.ChunkTitle(req.FileName, i),
			Content:   texts[i],
			Embedding: embeddings[i],
			Metadata:  meta,
		}
	}

	storeRetryable := func(err error) bool { return errors.Is(err, domain.ErrStoreUnavailable) }
	err = withRetry(ctx, "store chunks", storeRetryable, func() error {
		return s.index.Store(ctx, chunks)
	})
	if err != nil {
		return 0, fmt.Errorf("store %s: %w", req.FileName, err)
	}

	if err := s.docStore.SaveDocument(ctx, meta); err != nil {
		return 0, fmt.Errorf("save document metadata: %w", err)
	}

	logger.Info("Ingested %s: %d chunks", req.FileName, len(chunks))
	return len(chunks), nil
}

// Delete removes a document's chunks from the index and its metadata from
// the store. Returns the number of chunks removed.
func (s *IngestService) Delete(ctx context.Context, fileName string) (int, error) {
	removed, err := s.index.Delete(ctx, domain.ChunkIDPrefix(fileName))
	if err != nil {
		return 0, fmt.Errorf("delete chunks for %s: %w", fileName, err)
	}

	if err := s.docStore.DeleteDocument(ctx, fileName); err != nil {
		return removed, fmt.Errorf("delete document metadata: %w", err)
	}

	logger.Info("Deleted %s: %d chunks", fileName, removed)
	return removed, nil
}

// List returns metadata for all ingested documents.
func (s *IngestService) List(ctx context.Context) ([]domain.DocumentMetadata, error) {
	return s.docStore.ListDocuments(ctx)
}
