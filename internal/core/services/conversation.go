package services

import (
	"time"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// ConversationManager maintains ordered, append-only message history per
// session and produces trailing-window views for outbound model calls.
type ConversationManager struct {
	now func() time.Time
}

// NewConversationManager creates a conversation manager.
func NewConversationManager() *ConversationManager {
	return &ConversationManager{now: time.Now}
}

// Append adds one message to the session history. History is append-only;
// earlier messages are never mutated or removed.
func (m *ConversationManager) Append(conv *domain.ConversationContext, role domain.Role, content string) {
	conv.Messages = append(conv.Messages, domain.ConversationMessage{
		Role:      role,
		Content:   content,
		Timestamp: m.now(),
	})
}

// Windowed returns the most recent maxTurns messages in original
// chronological order. The whole history is returned when it is shorter.
// The context is never mutated: trimming is a read-time view.
func (m *ConversationManager) Windowed(conv *domain.ConversationContext, maxTurns int) []domain.ConversationMessage {
	if maxTurns <= 0 {
		return nil
	}
	msgs := conv.Messages
	if len(msgs) > maxTurns {
		msgs = msgs[len(msgs)-maxTurns:]
	}
	out := make([]domain.ConversationMessage, len(msgs))
	copy(out, msgs)
	return out
}

// Outbound builds the windowed history as chat model messages. Roles not
// recognised as assistant or system are sent as user; the stored history
// keeps the original role untouched.
func (m *ConversationManager) Outbound(conv *domain.ConversationContext, maxTurns int) []driven.ChatMessage {
	windowed := m.Windowed(conv, maxTurns)
	out := make([]driven.ChatMessage, len(windowed))
	for i := range windowed {
		out[i] = driven.ChatMessage{
			Role:    domain.OutboundRole(windowed[i].Role),
			Content: windowed[i].Content,
		}
	}
	return out
}
