package file

import (
	"github.com/quillon/docuchat/internal/core/ports/driven"
	"github.com/quillon/docuchat/internal/core/services"
	"github.com/quillon/docuchat/internal/postprocessors/chunker"
)

// Configuration keys.
const (
	KeyChunkSize    = "chunking.size"
	KeyChunkOverlap = "chunking.overlap"

	KeySearchTopK      = "search.top_k"
	KeySearchThreshold = "search.threshold"

	KeyChatTopK          = "chat.top_k"
	KeyChatThreshold     = "chat.threshold"
	KeyChatHistoryWindow = "chat.history_window"

	KeyOpenAIAPIKeyEnv     = "openai.api_key_env"
	KeyOpenAIBaseURL       = "openai.base_url"
	KeyOpenAIEmbedModel    = "openai.embedding_model"
	KeyOpenAIEmbedDims     = "openai.embedding_dimensions"
	KeyOpenAIChatModel     = "openai.chat_model"
	KeyOpenAIChatMaxTokens = "openai.chat_max_tokens"

	KeyStorageDataDir = "storage.data_dir"

	KeyIngestWatchDir   = "ingest.watch_dir"
	KeyIngestDepartment = "ingest.department"
	KeyIngestTags       = "ingest.tags"
)

// DefaultAPIKeyEnv is the environment variable consulted for the OpenAI key
// when the config file does not name one.
const DefaultAPIKeyEnv = "OPENAI_API_KEY"

// Settings is the typed view over a ConfigStore with defaults applied.
type Settings struct {
	ChunkSize    int
	ChunkOverlap int

	SearchTopK      int
	SearchThreshold float64

	Chat services.ChatConfig

	APIKeyEnv     string
	BaseURL       string
	EmbedModel    string
	EmbedDims     int
	ChatModel     string
	ChatMaxTokens int

	DataDir string

	WatchDir   string
	Department string
	Tags       []string
}

// LoadSettings reads the typed settings from the store, filling in defaults
// for unset keys.
func LoadSettings(store driven.ConfigStore) Settings {
	s := Settings{
		ChunkSize:       store.GetInt(KeyChunkSize),
		ChunkOverlap:    store.GetInt(KeyChunkOverlap),
		SearchTopK:      store.GetInt(KeySearchTopK),
		SearchThreshold: store.GetFloat64(KeySearchThreshold),
		Chat: services.ChatConfig{
			TopK:          store.GetInt(KeyChatTopK),
			Threshold:     store.GetFloat64(KeyChatThreshold),
			HistoryWindow: store.GetInt(KeyChatHistoryWindow),
		},
		APIKeyEnv:     store.GetString(KeyOpenAIAPIKeyEnv),
		BaseURL:       store.GetString(KeyOpenAIBaseURL),
		EmbedModel:    store.GetString(KeyOpenAIEmbedModel),
		EmbedDims:     store.GetInt(KeyOpenAIEmbedDims),
		ChatModel:     store.GetString(KeyOpenAIChatModel),
		ChatMaxTokens: store.GetInt(KeyOpenAIChatMaxTokens),
		DataDir:       store.GetString(KeyStorageDataDir),
		WatchDir:      store.GetString(KeyIngestWatchDir),
		Department:    store.GetString(KeyIngestDepartment),
		Tags:          store.GetStringSlice(KeyIngestTags),
	}

	if s.ChunkSize <= 0 {
		s.ChunkSize = chunker.DefaultChunkSize
	}
	// Overlap zero is a valid setting, so only default when the key is absent.
	if _, ok := store.Get(KeyChunkOverlap); !ok {
		s.ChunkOverlap = chunker.DefaultChunkOverlap
	}
	if s.APIKeyEnv == "" {
		s.APIKeyEnv = DefaultAPIKeyEnv
	}
	s.Chat = s.Chat.Normalised()

	// SearchTopK and SearchThreshold stay zero when unset; the search
	// service applies its own defaults per query.
	return s
}
