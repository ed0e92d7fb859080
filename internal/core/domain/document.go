package domain

import (
	"fmt"
	"strings"
	"time"
)

// FileType identifies a supported source document format.
type FileType string

// Supported source document formats.
const (
	FileTypePDF   FileType = "pdf"
	FileTypeExcel FileType = "xlsx"
	FileTypeWord  FileType = "docx"
	FileTypeText  FileType = "txt"
)

// FileTypeForName resolves the file type from a file name extension.
// Returns ErrUnsupportedFileType for anything outside the accepted set.
func FileTypeForName(fileName string) (FileType, error) {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFileType, fileName)
	}
	switch strings.ToLower(fileName[idx+1:]) {
	case "pdf":
		return FileTypePDF, nil
	case "xlsx", "xls":
		return FileTypeExcel, nil
	case "docx":
		return FileTypeWord, nil
	case "txt":
		return FileTypeText, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileName)
	}
}

// DocumentMetadata describes an ingested source file.
// It is immutable once created and shared by every chunk derived from the file.
type DocumentMetadata struct {
	// FileName is the original name of the uploaded file.
	FileName string

	// FileType is the resolved source format.
	FileType FileType

	// UploadedAt is when the file was ingested.
	UploadedAt time.Time

	// Department is a free-text owning department label.
	Department string

	// Tags are arbitrary labels attached at upload time.
	Tags []string
}

// Chunk is a bounded slice of a source document's text, the unit of
// embedding and retrieval. Chunks are immutable after creation;
// re-ingestion replaces a chunk by ID rather than mutating it.
type Chunk struct {
	// ID is derived deterministically from the source file name and the
	// chunk index, so re-ingesting the same file yields the same IDs.
	ID string

	// Title is a human-readable label, e.g. "policy.txt - chunk 3".
	Title string

	// Content is the chunk text.
	Content string

	// Embedding is the vector representation of Content.
	Embedding []float32

	// Metadata is the source document's metadata.
	Metadata DocumentMetadata
}

// ChunkID derives the deterministic identifier for a chunk of the given file.
func ChunkID(fileName string, index int) string {
	return fmt.Sprintf("%s#%d", fileName, index)
}

// ChunkIDPrefix returns the ID prefix shared by every chunk of the given file.
// Deleting this prefix removes the whole document from the index.
func ChunkIDPrefix(fileName string) string {
	return fileName + "#"
}

// ChunkTitle builds the human-readable chunk label. Indexes are zero-based
// internally but displayed one-based.
func ChunkTitle(fileName string, index int) string {
	return fmt.Sprintf("%s - chunk %d", fileName, index+1)
}
