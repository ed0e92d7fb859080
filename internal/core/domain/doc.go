// Package domain contains the core business entities of docuchat:
// documents, chunks, embeddings, search results, and conversation state.
// It has no dependencies on adapters or infrastructure.
package domain
