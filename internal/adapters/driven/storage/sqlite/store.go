package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/quillon/docuchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that backs both the document
// metadata store and the vector index through wrapper types.
type Store struct {
	db        *sql.DB
	path      string
	dimension int
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docuchat/data/docuchat.db.
// dimension fixes the embedding vector length for the vector index.
func NewStore(dataDir string, dimension int) (*Store, error) {
	if dimension <= 0 {
		return nil, fmt.Errorf("vector dimension must be positive, got %d", dimension)
	}

	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docuchat", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "docuchat.db")

	// WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:        db,
		path:      dbPath,
		dimension: dimension,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// VectorIndex returns a VectorIndex interface backed by this store.
func (s *Store) VectorIndex() driven.VectorIndex {
	return &vectorIndex{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Document Store ====================

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

// SaveDocument stores or updates document metadata.
func (s *documentStore) SaveDocument(ctx context.Context, meta domain.DocumentMetadata) error {
	tagsJSON, err := json.Marshal(meta.Tags)
	if err != nil {
		return fmt.Errorf("marshalling tags: %w", err)
	}

	if meta.UploadedAt.IsZero() {
		meta.UploadedAt = time.Now().UTC()
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents (file_name, file_type, uploaded_at, department, tags)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_name) DO UPDATE SET
			file_type = excluded.file_type,
			uploaded_at = excluded.uploaded_at,
			department = excluded.department,
			tags = excluded.tags
	`, meta.FileName, string(meta.FileType), meta.UploadedAt, meta.Department, string(tagsJSON))

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// GetDocument retrieves metadata by file name.
func (s *documentStore) GetDocument(ctx context.Context, fileName string) (*domain.DocumentMetadata, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT file_name, file_type, uploaded_at, department, tags
		FROM documents WHERE file_name = ?
	`, fileName)

	meta, err := scanDocument(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return meta, nil
}

// ListDocuments returns all ingested documents ordered by file name.
func (s *documentStore) ListDocuments(ctx context.Context) ([]domain.DocumentMetadata, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT file_name, file_type, uploaded_at, department, tags
		FROM documents ORDER BY file_name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.DocumentMetadata //nolint:prealloc // size unknown from query
	for rows.Next() {
		meta, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *meta)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// DeleteDocument removes metadata for a file. Missing files are a no-op.
func (s *documentStore) DeleteDocument(ctx context.Context, fileName string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE file_name = ?", fileName)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	return nil
}

// scanDocument scans a document row via the given Scan function.
func scanDocument(scan func(dest ...any) error) (*domain.DocumentMetadata, error) {
	var meta domain.DocumentMetadata
	var fileType, tagsJSON string

	if err := scan(&meta.FileName, &fileType, &meta.UploadedAt, &meta.Department, &tagsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	meta.FileType = domain.FileType(fileType)
	if err := json.Unmarshal([]byte(tagsJSON), &meta.Tags); err != nil {
		return nil, fmt.Errorf("unmarshalling tags: %w", err)
	}

	return &meta, nil
}

// ==================== Vector Index ====================

// vectorIndex implements driven.VectorIndex with brute-force cosine search
// over embedding blobs.
type vectorIndex struct {
	store *Store
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Store inserts or replaces chunks. A replaced chunk keeps its original
// sequence number so search tie-breaking stays stable across re-ingestion.
func (v *vectorIndex) Store(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	for _, chunk := range chunks {
		if len(chunk.Embedding) != v.store.dimension {
			return fmt.Errorf("%w: chunk %q has dimension %d, index expects %d",
				domain.ErrDimensionMismatch, chunk.ID, len(chunk.Embedding), v.store.dimension)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: beginning transaction: %v", domain.ErrStoreUnavailable, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var nextSeq int64
	row := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq), 0) + 1 FROM chunks")
	if err := row.Scan(&nextSeq); err != nil {
		return fmt.Errorf("%w: getting next sequence: %v", domain.ErrStoreUnavailable, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, seq, title, content, embedding, metadata)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			embedding = excluded.embedding,
			metadata = excluded.metadata
	`)
	if err != nil {
		return fmt.Errorf("%w: preparing statement: %v", domain.ErrStoreUnavailable, err)
	}
	defer stmt.Close()

	for _, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		embeddingBlob := float32SliceToBytes(chunk.Embedding)

		if _, err := stmt.ExecContext(ctx, chunk.ID, nextSeq, chunk.Title,
			chunk.Content, embeddingBlob, string(metadataJSON)); err != nil {
			return fmt.Errorf("%w: saving chunk %q: %v", domain.ErrStoreUnavailable, chunk.ID, err)
		}
		nextSeq++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing transaction: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Search scans every stored chunk and ranks by cosine similarity.
func (v *vectorIndex) Search(ctx context.Context, query []float32, topK int, minScore float64) ([]domain.SearchResult, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("%w: topK must be positive, got %d", domain.ErrInvalidQuery, topK)
	}
	if len(query) != v.store.dimension {
		return nil, fmt.Errorf("%w: query has dimension %d, index expects %d",
			domain.ErrDimensionMismatch, len(query), v.store.dimension)
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, seq, title, content, embedding, metadata
		FROM chunks ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: querying chunks: %v", domain.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	type scored struct {
		result domain.SearchResult
		seq    int64
	}
	var matches []scored

	for rows.Next() {
		var chunk domain.Chunk
		var seq int64
		var embeddingBlob []byte
		var metadataJSON string

		if err := rows.Scan(&chunk.ID, &seq, &chunk.Title, &chunk.Content,
			&embeddingBlob, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		chunk.Embedding = bytesToFloat32Slice(embeddingBlob)
		if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshalling chunk metadata: %w", err)
		}

		score := cosine(query, chunk.Embedding)
		if score < minScore {
			continue
		}
		matches = append(matches, scored{
			result: domain.SearchResult{Chunk: chunk, Score: score},
			seq:    seq,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].result.Score != matches[j].result.Score {
			return matches[i].result.Score > matches[j].result.Score
		}
		return matches[i].seq < matches[j].seq
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}

	results := make([]domain.SearchResult, len(matches))
	for i, m := range matches {
		results[i] = m.result
	}
	return results, nil
}

// Delete removes every chunk whose ID starts with idPrefix.
func (v *vectorIndex) Delete(ctx context.Context, idPrefix string) (int, error) {
	res, err := v.store.db.ExecContext(ctx,
		"DELETE FROM chunks WHERE id LIKE ? ESCAPE '\\'", likePrefix(idPrefix))
	if err != nil {
		return 0, fmt.Errorf("%w: deleting chunks: %v", domain.ErrStoreUnavailable, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted chunks: %w", err)
	}
	return int(removed), nil
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

// likePrefix escapes LIKE wildcards in the prefix and appends %.
func likePrefix(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		switch r {
		case '%', '_', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	b.WriteString("%")
	return b.String()
}

// cosine computes the cosine similarity between two equal-length vectors.
// Accumulation is done in float64 to limit rounding drift.
func cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
