// Package pdf provides the normaliser for PDF knowledge files.
// Text is extracted with pdftotext from poppler, one page at a time;
// pages without extractable text (scanned images) are skipped.
package pdf

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const (
	toolName      = "pdftotext"
	maxTitleRunes = 200
	pageBreak     = "\f"
)

// CommandRunner runs external commands and returns their stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Normaliser extracts text from PDF documents.
type Normaliser struct {
	runner   CommandRunner
	lookPath func(string) (string, error)
}

// New creates a PDF normaliser that shells out to pdftotext.
func New() *Normaliser {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates a PDF normaliser with a custom command runner.
func NewWithRunner(runner CommandRunner) *Normaliser {
	return &Normaliser{
		runner:   runner,
		lookPath: exec.LookPath,
	}
}

// CheckAvailable reports whether pdftotext is installed.
func CheckAvailable() error {
	if _, err := exec.LookPath(toolName); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPDFToolNotFound, err)
	}
	return nil
}

// InstallInstructions describes how to install pdftotext.
func InstallInstructions() string {
	return `PDF support requires pdftotext (part of poppler):
  macOS:         brew install poppler
  Debian/Ubuntu: sudo apt install poppler-utils
  Fedora:        sudo dnf install poppler-utils`
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMETypePDF}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the text of every page that has any.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if _, err := n.lookPath(toolName); err != nil {
		return nil, fmt.Errorf("%s: %w", raw.Source, domain.ErrPDFToolNotFound)
	}

	path := raw.Path
	if path == "" {
		tmp, err := writeTemp(raw.Content)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", raw.Source, err)
		}
		defer os.Remove(tmp)
		path = tmp
	}

	out, err := n.runner.Run(ctx, toolName, "-layout", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("%s: extracting text: %w", raw.Source, err)
	}

	pages := strings.Split(string(out), pageBreak)
	var kept []string
	for _, page := range pages {
		page = strings.TrimSpace(page)
		if page != "" {
			kept = append(kept, page)
		}
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("%s: %w", raw.Source, domain.ErrEmptyDocument)
	}
	content := strings.Join(kept, "\n\n")

	metadata := normalisers.CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = "pdf"
	metadata["pages"] = countPages(pages)
	metadata["pages_with_text"] = len(kept)

	return &domain.Document{
		ID:       normalisers.DocumentID(raw.Source),
		Source:   raw.Source,
		Title:    extractTitle(content, raw.Source),
		Content:  content,
		Metadata: metadata,
	}, nil
}

// countPages ignores the empty remainder pdftotext leaves after the final form feed.
func countPages(pages []string) int {
	if n := len(pages); n > 0 && pages[n-1] == "" {
		return n - 1
	}
	return len(pages)
}

// extractTitle returns the first short non-empty line, or a title derived from the path.
func extractTitle(content, source string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" || strings.ContainsRune(line, 0) || len([]rune(line)) > maxTitleRunes {
			continue
		}
		return line
	}
	return normalisers.TitleFromPath(source)
}

func writeTemp(content []byte) (string, error) {
	f, err := os.CreateTemp("", "vernebot-*.pdf")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := f.Write(content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("writing temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("closing temp file: %w", err)
	}
	return f.Name(), nil
}
