package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidChunkConfig indicates an invalid chunk size / overlap pair.
	// Rejected before any chunking work begins.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrUnsupportedFileType indicates a file extension outside the accepted set.
	// Ingestion is aborted with no partial chunks stored.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrInvalidQuery indicates malformed search parameters (e.g. topK <= 0).
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrEmbeddingFailed indicates the embedding call failed or timed out
	// after bounded retries.
	ErrEmbeddingFailed = errors.New("embedding generation failed")

	// ErrStoreUnavailable indicates the vector store backend is unreachable.
	// Callers retry a bounded number of times with backoff before surfacing it.
	ErrStoreUnavailable = errors.New("vector store unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match the
	// index dimension. This is a configuration error and is never retried.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrChatModelFailure indicates the chat completion call failed.
	// Surfaced to the user as an apology message, never as an uncaught error.
	ErrChatModelFailure = errors.New("chat model failure")

	// ErrGenerationInFlight indicates a session already has a generation
	// running; new input for that session is rejected until it completes.
	ErrGenerationInFlight = errors.New("generation already in flight for session")
)
