package domain

// Search defaults applied when options are left unset.
const (
	// DefaultTopK is the default number of results for the search surface.
	DefaultTopK = 5

	// DefaultThreshold is the default minimum similarity score.
	DefaultThreshold = 0.7
)

// SearchOptions configures a similarity search.
type SearchOptions struct {
	// TopK is the maximum number of results (default DefaultTopK).
	TopK int

	// Threshold is the minimum similarity score (default DefaultThreshold).
	Threshold float64
}

// Normalised returns a copy with defaults applied to unset fields.
func (o SearchOptions) Normalised() SearchOptions {
	if o.TopK == 0 {
		o.TopK = DefaultTopK
	}
	if o.Threshold == 0 {
		o.Threshold = DefaultThreshold
	}
	return o
}

// SearchResult is a chunk matched by a similarity query.
// Results are produced by search calls only and never persisted.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the cosine similarity between the query and the chunk.
	Score float64
}

// SearchHit is the external search surface's view of a result.
type SearchHit struct {
	// ID is the matched chunk ID.
	ID string `json:"id"`

	// Title is the chunk's human-readable label.
	Title string `json:"title"`

	// ContentPreview is a shortened excerpt of the chunk content.
	ContentPreview string `json:"contentPreview"`

	// Department is the owning department of the source document.
	Department string `json:"department"`

	// Score is the similarity score.
	Score float64 `json:"score"`
}
