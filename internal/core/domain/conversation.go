package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the author of a conversation message.
type Role string

// Recognised conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// OutboundRole maps an arbitrary stored role to the role sent to the chat
// model. Anything not recognised as assistant or system is treated as user.
// The stored history keeps the original role verbatim for display.
func OutboundRole(role Role) Role {
	switch role {
	case RoleAssistant, RoleSystem:
		return role
	default:
		return RoleUser
	}
}

// ConversationMessage is a single turn in a chat session.
// Messages are ordered and append-only within a session.
type ConversationMessage struct {
	// Role is the author role as supplied, preserved verbatim.
	Role Role

	// Content is the message text.
	Content string

	// Timestamp is when the message was appended.
	Timestamp time.Time
}

// ConversationContext holds the state of one active chat session.
// It is created at session start and discarded when the session ends.
type ConversationContext struct {
	// SessionID uniquely identifies the session.
	SessionID string

	// UserID identifies the user owning the session.
	UserID string

	// Messages is the ordered, append-only message history.
	Messages []ConversationMessage

	// Variables holds auxiliary key-value state for the session.
	Variables map[string]string
}

// NewConversationContext creates an empty session for the given user.
func NewConversationContext(userID string) *ConversationContext {
	return &ConversationContext{
		SessionID: uuid.New().String(),
		UserID:    userID,
		Variables: make(map[string]string),
	}
}
