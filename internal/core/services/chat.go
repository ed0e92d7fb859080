package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/ports/driving"
	"github.com/quillon/docuchat/internal/logger"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// apologyMessage is appended in place of a reply when generation fails.
const apologyMessage = "I'm sorry, I ran into a problem while answering. Please try again."

// ChatConfig tunes the retrieval and conversation windowing behaviour.
type ChatConfig struct {
	// TopK is the number of chunks retrieved per turn.
	TopK int

	// Threshold is the minimum similarity score for retrieved chunks.
	Threshold float64

	// HistoryWindow is the number of trailing messages sent to the model.
	HistoryWindow int
}

// Normalised returns a copy with defaults applied to unset fields.
func (c ChatConfig) Normalised() ChatConfig {
	if c.TopK == 0 {
		c.TopK = 3
	}
	if c.Threshold == 0 {
		c.Threshold = domain.DefaultThreshold
	}
	if c.HistoryWindow == 0 {
		c.HistoryWindow = 10
	}
	return c
}

// ChatService orchestrates one grounded conversation turn: embed the user
// message, retrieve matching chunks, assemble the grounding instruction,
// invoke the chat model, and record the exchange in the session history.
type ChatService struct {
	embedder      driven.EmbeddingService
	index         driven.VectorIndex
	model         driven.ChatModel
	assembler     *ContextAssembler
	conversations *ConversationManager
	cfg           ChatConfig

	// One in-flight generation per session.
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewChatService creates a chat orchestrator.
func NewChatService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	model driven.ChatModel,
	assembler *ContextAssembler,
	conversations *ConversationManager,
	cfg ChatConfig,
) *ChatService {
	return &ChatService{
		embedder:      embedder,
		index:         index,
		model:         model,
		assembler:     assembler,
		conversations: conversations,
		cfg:           cfg.Normalised(),
		inFlight:      make(map[string]struct{}),
	}
}

// Query answers one user turn. Retrieval or model failures never escape as
// errors: the turn degrades to a single apology message appended after the
// user message. Cancellation appends nothing. A session with a generation
// already running rejects new input with ErrGenerationInFlight.
func (s *ChatService) Query(
	ctx context.Context,
	conv *domain.ConversationContext,
	message string,
	opts driven.ChatOptions,
) (driven.ChatResult, error) {
	if err := s.acquire(conv.SessionID); err != nil {
		return driven.ChatResult{}, err
	}
	defer s.release(conv.SessionID)

	logger.Section("Chat Turn")
	logger.Debug("Session: %s", conv.SessionID)

	modelName := opts.Model
	if modelName == "" {
		modelName = s.model.ModelName()
	}

	reply, err := s.generate(ctx, conv, message, opts)
	if err != nil {
		// A cancelled turn is discarded entirely: no partial assistant
		// message and no user turn in history.
		if ctx.Err() != nil {
			logger.Info("Turn cancelled: %v", ctx.Err())
			return driven.ChatResult{}, ctx.Err()
		}

		logger.Warn("Turn failed, degrading to apology: %v", err)
		s.conversations.Append(conv, domain.RoleUser, message)
		s.conversations.Append(conv, domain.RoleAssistant, apologyMessage)
		return driven.ChatResult{Response: apologyMessage, Model: modelName}, nil
	}

	s.conversations.Append(conv, domain.RoleUser, message)
	s.conversations.Append(conv, domain.RoleAssistant, reply)
	return driven.ChatResult{Response: reply, Model: modelName}, nil
}

// generate runs retrieval, assembly and the model call for one turn.
func (s *ChatService) generate(
	ctx context.Context,
	conv *domain.ConversationContext,
	message string,
	opts driven.ChatOptions,
) (string, error) {
	// Retrieving
	var vector []float32
	err := withRetry(ctx, "embed query", nil, func() error {
		var embedErr error
		vector, embedErr = s.embedder.Embed(ctx, message)
		return embedErr
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrEmbeddingFailed, err)
	}

	var retrieved []domain.SearchResult
	storeRetryable := func(err error) bool { return errors.Is(err, domain.ErrStoreUnavailable) }
	err = withRetry(ctx, "retrieve chunks", storeRetryable, func() error {
		var searchErr error
		retrieved, searchErr = s.index.Search(ctx, vector, s.cfg.TopK, s.cfg.Threshold)
		return searchErr
	})
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	logger.Debug("Retrieved %d chunks", len(retrieved))

	// Assembling
	system := s.assembler.Assemble(message, retrieved)

	messages := make([]driven.ChatMessage, 0, s.cfg.HistoryWindow+2)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleSystem, Content: system})
	messages = append(messages, s.conversations.Outbound(conv, s.cfg.HistoryWindow)...)
	messages = append(messages, driven.ChatMessage{Role: domain.RoleUser, Content: message})

	// Generating
	reply, err := s.model.Chat(ctx, messages, opts)
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrChatModelFailure, err)
	}
	return reply, nil
}

// acquire marks the session as generating. Returns ErrGenerationInFlight
// when a generation is already running for it.
func (s *ChatService) acquire(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[sessionID]; busy {
		return domain.ErrGenerationInFlight
	}
	s.inFlight[sessionID] = struct{}{}
	return nil
}

func (s *ChatService) release(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, sessionID)
}
