package driven

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
)

// DocumentStore persists document metadata.
// Backed by SQLite for durable deployments, memory for tests.
type DocumentStore interface {
	// SaveDocument stores or updates metadata for a source file.
	SaveDocument(ctx context.Context, meta domain.DocumentMetadata) error

	// GetDocument retrieves metadata by file name.
	GetDocument(ctx context.Context, fileName string) (*domain.DocumentMetadata, error)

	// ListDocuments returns all ingested documents.
	ListDocuments(ctx context.Context) ([]domain.DocumentMetadata, error)

	// DeleteDocument removes metadata for a file. Missing files are a no-op.
	DeleteDocument(ctx context.Context, fileName string) error
}
