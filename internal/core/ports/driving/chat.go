package driving

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// ChatService drives grounded conversation over the document corpus.
type ChatService interface {
	// Query answers one user turn for the session, grounding the reply in
	// retrieved chunks. Model failures never surface as errors: the reply
	// degrades to an apology message appended to the history. Concurrent
	// input for a session already generating returns ErrGenerationInFlight.
	Query(ctx context.Context, conv *domain.ConversationContext, message string, opts driven.ChatOptions) (driven.ChatResult, error)
}
