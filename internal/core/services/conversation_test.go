package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quillon/docuchat/internal/core/domain"
)

func TestConversationManager_AppendOrdered(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")

	m.Append(conv, domain.RoleUser, "hello")
	m.Append(conv, domain.RoleAssistant, "hi there")

	require.Len(t, conv.Messages, 2)
	assert.Equal(t, domain.RoleUser, conv.Messages[0].Role)
	assert.Equal(t, "hello", conv.Messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, conv.Messages[1].Role)
	assert.False(t, conv.Messages[0].Timestamp.IsZero())
}

func TestConversationManager_Windowed_ShortHistory(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	m.Append(conv, domain.RoleUser, "one")
	m.Append(conv, domain.RoleAssistant, "two")

	windowed := m.Windowed(conv, 10)
	require.Len(t, windowed, 2)
	assert.Equal(t, "one", windowed[0].Content)
	assert.Equal(t, "two", windowed[1].Content)
}

func TestConversationManager_Windowed_TrailingWindow(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	for i := 0; i < 7; i++ {
		m.Append(conv, domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	windowed := m.Windowed(conv, 3)
	require.Len(t, windowed, 3)
	// The last N messages in original chronological order, not reversed.
	assert.Equal(t, "msg-4", windowed[0].Content)
	assert.Equal(t, "msg-5", windowed[1].Content)
	assert.Equal(t, "msg-6", windowed[2].Content)
}

func TestConversationManager_Windowed_DoesNotMutate(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	for i := 0; i < 5; i++ {
		m.Append(conv, domain.RoleUser, fmt.Sprintf("msg-%d", i))
	}

	_ = m.Windowed(conv, 2)
	assert.Len(t, conv.Messages, 5)

	// The view is a copy: editing it leaves history untouched.
	view := m.Windowed(conv, 2)
	view[0].Content = "edited"
	assert.Equal(t, "msg-3", conv.Messages[3].Content)
}

func TestConversationManager_Windowed_NonPositive(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	m.Append(conv, domain.RoleUser, "hello")

	assert.Nil(t, m.Windowed(conv, 0))
	assert.Nil(t, m.Windowed(conv, -1))
}

func TestConversationManager_Outbound_RoleMapping(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	m.Append(conv, domain.RoleUser, "question")
	m.Append(conv, domain.RoleAssistant, "answer")
	m.Append(conv, domain.Role("moderator"), "note")

	out := m.Outbound(conv, 10)
	require.Len(t, out, 3)
	assert.Equal(t, domain.RoleUser, out[0].Role)
	assert.Equal(t, domain.RoleAssistant, out[1].Role)
	// Unrecognised roles go out as user...
	assert.Equal(t, domain.RoleUser, out[2].Role)
	// ...but the stored history keeps the original role verbatim.
	assert.Equal(t, domain.Role("moderator"), conv.Messages[2].Role)
}

func TestConversationManager_Outbound_SystemRolePassesThrough(t *testing.T) {
	m := NewConversationManager()
	conv := domain.NewConversationContext("user-1")
	m.Append(conv, domain.RoleSystem, "be terse")
	m.Append(conv, domain.RoleUser, "question")

	out := m.Outbound(conv, 10)
	require.Len(t, out, 2)
	assert.Equal(t, domain.RoleSystem, out[0].Role)
	assert.Equal(t, domain.RoleUser, out[1].Role)
}
