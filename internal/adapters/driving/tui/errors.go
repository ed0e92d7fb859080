package tui

import "errors"

// Errors returned when required ports are missing.
var (
	ErrMissingChatService = errors.New("tui: chat service is required")
)
