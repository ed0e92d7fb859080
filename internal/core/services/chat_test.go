package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

func newChatFixture(index *mockIndex, model *mockChatModel) *ChatService {
	return NewChatService(
		newMockEmbedder(""),
		index,
		model,
		NewContextAssembler(),
		NewConversationManager(),
		ChatConfig{},
	)
}

func TestChatConfig_Normalised(t *testing.T) {
	cfg := ChatConfig{}.Normalised()
	assert.Equal(t, 3, cfg.TopK)
	assert.InDelta(t, domain.DefaultThreshold, cfg.Threshold, 1e-9)
	assert.Equal(t, 10, cfg.HistoryWindow)
}

func TestChatService_Query_Success(t *testing.T) {
	index := &mockIndex{
		searchOut: []domain.SearchResult{
			{Chunk: domain.Chunk{Title: "doc.txt - chunk 1", Content: "grounding text"}, Score: 0.9},
		},
	}
	model := &mockChatModel{reply: "a grounded answer"}
	svc := newChatFixture(index, model)
	conv := domain.NewConversationContext("user-1")

	result, err := svc.Query(context.Background(), conv, "what does the doc say?", driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "a grounded answer", result.Response)
	assert.Equal(t, "mock-chat", result.Model)

	// History got exactly the user turn and the assistant reply.
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "what does the doc say?", conv.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, "a grounded answer", conv.Messages[1].Content)
}

func TestChatService_Query_OutboundMessageShape(t *testing.T) {
	index := &mockIndex{
		searchOut: []domain.SearchResult{
			{Chunk: domain.Chunk{Title: "t", Content: "c"}, Score: 0.9},
		},
	}
	model := &mockChatModel{reply: "ok"}
	svc := newChatFixture(index, model)
	conv := domain.NewConversationContext("user-1")

	// Seed prior history, including an unrecognised role.
	svc.conversations.Append(conv, domain.RoleUser, "earlier question")
	svc.conversations.Append(conv, domain.RoleAssistant, "earlier answer")
	svc.conversations.Append(conv, domain.Role("moderator"), "aside")

	_, err := svc.Query(context.Background(), conv, "new question", driven.ChatOptions{})
	require.NoError(t, err)

	// System instruction first, then windowed history, then the new turn.
	msgs := model.messages
	require.Len(t, msgs, 5)
	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Reference content:")
	assert.Equal(t, "earlier question", msgs[1].Content)
	assert.Equal(t, "earlier answer", msgs[2].Content)
	// The unrecognised role went out mapped to user.
	assert.Equal(t, domain.RoleUser, msgs[3].Role)
	assert.Equal(t, "aside", msgs[3].Content)
	assert.Equal(t, "new question", msgs[4].Content)
}

func TestChatService_Query_TopKThreeForRetrieval(t *testing.T) {
	index := &mockIndex{}
	svc := newChatFixture(index, &mockChatModel{reply: "ok"})
	conv := domain.NewConversationContext("user-1")

	_, err := svc.Query(context.Background(), conv, "q", driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, index.lastTopK)
	assert.InDelta(t, domain.DefaultThreshold, index.lastMin, 1e-9)
}

func TestChatService_Query_EmptyCorpusStillAnswers(t *testing.T) {
	// No documents ingested: retrieval returns nothing, yet the turn
	// completes with a well-formed system instruction.
	index := &mockIndex{}
	model := &mockChatModel{reply: "I could not find relevant content."}
	svc := newChatFixture(index, model)
	conv := domain.NewConversationContext("user-1")

	result, err := svc.Query(context.Background(), conv, "anything indexed?", driven.ChatOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Response)
	require.NotEmpty(t, model.messages)
	assert.Contains(t, model.messages[0].Content, "No relevant content was found")
}

func TestChatService_Query_ModelFailureAppendsApology(t *testing.T) {
	index := &mockIndex{}
	model := &mockChatModel{err: errors.New("upstream 500")}
	svc := newChatFixture(index, model)
	conv := domain.NewConversationContext("user-1")

	result, err := svc.Query(context.Background(), conv, "question", driven.ChatOptions{})
	// The failure never escapes to the caller.
	require.NoError(t, err)
	assert.Equal(t, apologyMessage, result.Response)

	// History contains the user turn followed by exactly one apology.
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "question", conv.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
	assert.Equal(t, apologyMessage, conv.Messages[1].Content)
}

func TestChatService_Query_RetrievalFailureAppendsApology(t *testing.T) {
	index := &mockIndex{searchErr: domain.ErrDimensionMismatch}
	svc := newChatFixture(index, &mockChatModel{reply: "never reached"})
	conv := domain.NewConversationContext("user-1")

	result, err := svc.Query(context.Background(), conv, "question", driven.ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, apologyMessage, result.Response)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, apologyMessage, conv.Messages[1].Content)
}

func TestChatService_Query_CancellationAppendsNothing(t *testing.T) {
	block := make(chan struct{})
	model := &mockChatModel{reply: "late answer", block: block}
	svc := newChatFixture(&mockIndex{}, model)
	conv := domain.NewConversationContext("user-1")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Query(ctx, conv, "question", driven.ChatOptions{})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()
	close(block)

	err := <-done
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	// No partial turn in history.
	assert.Empty(t, conv.Messages)
}

func TestChatService_Query_OneInFlightPerSession(t *testing.T) {
	block := make(chan struct{})
	model := &mockChatModel{reply: "slow answer", block: block}
	svc := newChatFixture(&mockIndex{}, model)
	conv := domain.NewConversationContext("user-1")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = svc.Query(context.Background(), conv, "first", driven.ChatOptions{})
	}()

	// Wait until the first turn reaches the model call.
	require.Eventually(t, func() bool {
		model.mu.Lock()
		defer model.mu.Unlock()
		return len(model.messages) > 0
	}, time.Second, 5*time.Millisecond)

	_, err := svc.Query(context.Background(), conv, "second", driven.ChatOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationInFlight)

	close(block)
	wg.Wait()

	// A different session is never blocked.
	other := domain.NewConversationContext("user-2")
	_, err = svc.Query(context.Background(), other, "hello", driven.ChatOptions{})
	require.NoError(t, err)
}

func TestChatService_Query_ModelOverride(t *testing.T) {
	svc := newChatFixture(&mockIndex{}, &mockChatModel{reply: "ok"})
	conv := domain.NewConversationContext("user-1")

	result, err := svc.Query(context.Background(), conv, "q", driven.ChatOptions{Model: "gpt-4o"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", result.Model)
}
