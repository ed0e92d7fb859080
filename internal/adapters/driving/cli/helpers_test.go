package cli

import (
	"context"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/ports/driving"
)

// mockIngestService is a test double for driving.IngestService.
type mockIngestService struct {
	stored      int
	ingestErr   error
	removed     int
	deleteErr   error
	docs        []domain.DocumentMetadata
	listErr     error
	lastRequest driving.IngestRequest
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (int, error) {
	m.lastRequest = req
	return m.stored, m.ingestErr
}

func (m *mockIngestService) Delete(_ context.Context, _ string) (int, error) {
	return m.removed, m.deleteErr
}

func (m *mockIngestService) List(_ context.Context) ([]domain.DocumentMetadata, error) {
	return m.docs, m.listErr
}

// mockSearchService is a test double for driving.SearchService.
type mockSearchService struct {
	hits     []domain.SearchHit
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(_ context.Context, _ string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	m.lastOpts = opts
	return m.hits, m.err
}

// mockChatService is a test double for driving.ChatService.
type mockChatService struct {
	result driven.ChatResult
	err    error
}

func (m *mockChatService) Query(_ context.Context, _ *domain.ConversationContext, _ string, _ driven.ChatOptions) (driven.ChatResult, error) {
	return m.result, m.err
}

// setupTestServices injects mock services and returns a cleanup func that
// restores the previous ones.
func setupTestServices() func() {
	return setupTestServicesWith(&mockIngestService{}, &mockSearchService{}, &mockChatService{})
}

func setupTestServicesWith(ingest driving.IngestService, search driving.SearchService, chat driving.ChatService) func() {
	prevIngest, prevSearch, prevChat := ingestService, searchService, chatService
	SetServices(ingest, search, chat)
	return func() {
		SetServices(prevIngest, prevSearch, prevChat)
	}
}
