// Package tui provides the interactive chat terminal interface.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/quillon/docuchat/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Chat answers grounded questions over the document corpus.
	Chat driving.ChatService

	// Ingest supplies the indexed document count shown in the header.
	// Optional; the count is omitted when nil.
	Ingest driving.IngestService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
