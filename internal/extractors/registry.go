// Package extractors wires the per-format text extractors into a registry
// keyed by file extension.
package extractors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quillon/docuchat/internal/core/domain"
	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to their extractors.
type Registry struct {
	byExt map[string]driven.TextExtractor
}

// NewRegistry builds a registry from the given extractors. Later extractors
// win when two claim the same extension.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	byExt := make(map[string]driven.TextExtractor)
	for _, ex := range extractors {
		for _, ext := range ex.Extensions() {
			byExt[strings.ToLower(ext)] = ex
		}
	}
	return &Registry{byExt: byExt}
}

// ExtractorFor returns the extractor registered for the file's extension.
func (r *Registry) ExtractorFor(fileName string) (driven.TextExtractor, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))
	if ex, ok := r.byExt[ext]; ok {
		return ex, nil
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, fileName)
}

// Extensions returns the registered extensions in no particular order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	return exts
}
