package driving

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
)

// IngestService drives the document ingestion pipeline.
type IngestService interface {
	// Ingest extracts, chunks, embeds and indexes a file. All-or-nothing:
	// a failure at any step leaves no partial chunks indexed.
	// Returns the number of chunks stored.
	Ingest(ctx context.Context, req IngestRequest) (int, error)

	// Delete removes a document and all of its chunks.
	// Returns the number of chunks removed.
	Delete(ctx context.Context, fileName string) (int, error)

	// List returns metadata for all ingested documents.
	List(ctx context.Context) ([]domain.DocumentMetadata, error)
}

// IngestRequest carries one file into the ingestion pipeline.
type IngestRequest struct {
	// FileName is the original file name including extension.
	FileName string

	// Content is the raw file bytes.
	Content []byte

	// Department is the owning department label.
	Department string

	// Tags are labels attached to the document.
	Tags []string
}

// SearchService answers free-text similarity queries over the index.
type SearchService interface {
	// Search embeds the query and returns matching chunks.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchHit, error)
}
