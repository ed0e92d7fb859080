package driven

import "context"

// TextExtractor converts a raw file into an ordered sequence of text blocks.
// Each extractor handles specific file extensions (e.g. PDF, DOCX).
// The extraction itself is opaque to the core: blocks go straight to chunking.
type TextExtractor interface {
	// Extensions returns the lower-case file extensions this extractor
	// handles, without the leading dot.
	Extensions() []string

	// Extract converts file content into ordered text blocks.
	Extract(ctx context.Context, fileName string, content []byte) ([]string, error)
}

// ExtractorRegistry resolves the extractor for a file name.
type ExtractorRegistry interface {
	// ExtractorFor returns the extractor handling the file's extension.
	// Returns ErrUnsupportedFileType if no extractor is registered for it.
	ExtractorFor(fileName string) (TextExtractor, error)
}
