package services

import (
	"context"
	"strings"
	"sync"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// mockEmbedder is a test double for driven.EmbeddingService.
// It embeds deterministically: texts containing a keyword map onto the
// first axis, everything else onto the second.
type mockEmbedder struct {
	mu         sync.Mutex
	keyword    string
	dimensions int
	embedErrs  []error // consumed per call, nil entries succeed
	calls      int
}

func newMockEmbedder(keyword string) *mockEmbedder {
	return &mockEmbedder{keyword: keyword, dimensions: 4}
}

func (m *mockEmbedder) nextErr() error {
	if len(m.embedErrs) == 0 {
		return nil
	}
	err := m.embedErrs[0]
	m.embedErrs = m.embedErrs[1:]
	return err
}

func (m *mockEmbedder) vector(text string) []float32 {
	vec := make([]float32, m.dimensions)
	if m.keyword != "" && strings.Contains(strings.ToLower(text), m.keyword) {
		vec[0] = 1
	} else {
		vec[1] = 1
	}
	return vec
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	return m.vector(text), nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := m.nextErr(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dimensions }
func (m *mockEmbedder) ModelName() string            { return "mock-embedder" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex is a test double for driven.VectorIndex recording store calls.
type mockIndex struct {
	mu          sync.Mutex
	storeCalls  [][]domain.Chunk
	storeErrs   []error // consumed per call
	searchOut   []domain.SearchResult
	searchErr   error
	deleteOut   int
	deleteErr   error
	lastTopK    int
	lastMin     float64
	lastPrefix  string
	searchCalls int
}

func (m *mockIndex) Store(_ context.Context, chunks []domain.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.storeErrs) > 0 {
		err := m.storeErrs[0]
		m.storeErrs = m.storeErrs[1:]
		if err != nil {
			return err
		}
	}
	buffered := make([]domain.Chunk, len(chunks))
	copy(buffered, chunks)
	m.storeCalls = append(m.storeCalls, buffered)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, topK int, minScore float64) ([]domain.SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastTopK = topK
	m.lastMin = minScore
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchOut, nil
}

func (m *mockIndex) Delete(_ context.Context, idPrefix string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPrefix = idPrefix
	return m.deleteOut, m.deleteErr
}

func (m *mockIndex) Close() error { return nil }

// mockChatModel is a test double for driven.ChatModel.
type mockChatModel struct {
	mu       sync.Mutex
	reply    string
	err      error
	messages []driven.ChatMessage
	block    chan struct{} // when non-nil, Chat waits until closed
}

func (m *mockChatModel) Chat(ctx context.Context, messages []driven.ChatMessage, _ driven.ChatOptions) (string, error) {
	m.mu.Lock()
	m.messages = append([]driven.ChatMessage(nil), messages...)
	block := m.block
	m.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return m.reply, m.err
}

func (m *mockChatModel) ModelName() string            { return "mock-chat" }
func (m *mockChatModel) Ping(_ context.Context) error { return nil }
func (m *mockChatModel) Close() error                 { return nil }

// mockExtractor returns fixed text blocks for any file.
type mockExtractor struct {
	blocks []string
	err    error
}

func (m *mockExtractor) Extensions() []string { return []string{"txt"} }

func (m *mockExtractor) Extract(_ context.Context, _ string, _ []byte) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.blocks, nil
}

// mockRegistry resolves every supported file name to one extractor.
type mockRegistry struct {
	extractor driven.TextExtractor
}

func (m *mockRegistry) ExtractorFor(fileName string) (driven.TextExtractor, error) {
	if _, err := domain.FileTypeForName(fileName); err != nil {
		return nil, err
	}
	return m.extractor, nil
}

// mockDocStore is an in-memory driven.DocumentStore.
type mockDocStore struct {
	mu   sync.Mutex
	docs map[string]domain.DocumentMetadata
}

func newMockDocStore() *mockDocStore {
	return &mockDocStore{docs: make(map[string]domain.DocumentMetadata)}
}

func (m *mockDocStore) SaveDocument(_ context.Context, meta domain.DocumentMetadata) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[meta.FileName] = meta
	return nil
}

func (m *mockDocStore) GetDocument(_ context.Context, fileName string) (*domain.DocumentMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	meta, ok := m.docs[fileName]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &meta, nil
}

func (m *mockDocStore) ListDocuments(_ context.Context) ([]domain.DocumentMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.DocumentMetadata, 0, len(m.docs))
	for _, meta := range m.docs {
		out = append(out, meta)
	}
	return out, nil
}

func (m *mockDocStore) DeleteDocument(_ context.Context, fileName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, fileName)
	return nil
}
