// Package pdf extracts text blocks from PDF documents using the pdftotext
// tool from poppler-utils.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"github.com/quillon/docuchat/internal/core/ports/driven"
)

// ErrPDFToolNotFound is returned when pdftotext is not installed.
var ErrPDFToolNotFound = errors.New("pdftotext not found in PATH")

// CommandRunner executes external commands. It exists so tests can inject a
// mock instead of invoking pdftotext.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands via os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor handles PDF documents via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates a PDF extractor using the real pdftotext binary.
func New() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewWithRunner creates a PDF extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return ErrPDFToolNotFound
	}
	return nil
}

// InstallInstructions returns platform-specific install guidance for
// pdftotext.
func InstallInstructions() string {
	return "pdftotext is required for PDF ingestion.\n" +
		"  macOS:  brew install poppler\n" +
		"  Debian: apt install poppler-utils\n" +
		"  Fedora: dnf install poppler-utils"
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{"pdf"}
}

var blankLines = regexp.MustCompile(`\n[ \t]*\n`)

// Extract writes the document to a temporary file, runs pdftotext on it and
// splits the output into text blocks. Pages are separated by form feeds,
// paragraphs within a page by blank lines.
func (e *Extractor) Extract(ctx context.Context, fileName string, content []byte) ([]string, error) {
	tmp, err := os.CreateTemp("", "docuchat-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp file: %w", err)
	}

	// "-" writes the extracted text to stdout.
	output, err := e.runner.Run(ctx, "pdftotext", "-layout", tmp.Name(), "-")
	if err != nil {
		return nil, fmt.Errorf("pdftotext failed for %s: %w", fileName, err)
	}

	return splitBlocks(string(output)), nil
}

// splitBlocks turns pdftotext output into ordered, trimmed text blocks.
func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var blocks []string
	for _, page := range strings.Split(text, "\f") {
		for _, para := range blankLines.Split(page, -1) {
			if trimmed := strings.TrimSpace(para); trimmed != "" {
				blocks = append(blocks, trimmed)
			}
		}
	}
	return blocks
}
