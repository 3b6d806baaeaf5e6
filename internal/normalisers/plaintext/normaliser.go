// Package plaintext provides the normaliser for plain text knowledge files.
package plaintext

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const utf8BOM = "\ufeff"

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{normalisers.MIMETypePlainText}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw text file to a document.
// Invalid UTF-8 is replaced rather than rejected and line endings are
// normalised to \n. Files without any visible text fail with
// domain.ErrEmptyDocument.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.Document, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	content := string(raw.Content)
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "\uFFFD")
	}
	content = strings.TrimPrefix(content, utf8BOM)
	content = strings.ReplaceAll(content, "\r\n", "\n")

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%s: %w", raw.Source, domain.ErrEmptyDocument)
	}

	metadata := normalisers.CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["mime_type"] = raw.MIMEType
	metadata["format"] = "text"

	return &domain.Document{
		ID:       normalisers.DocumentID(raw.Source),
		Source:   raw.Source,
		Title:    titleFor(raw),
		Content:  content,
		Metadata: metadata,
	}, nil
}

// titleFor checks metadata for a title first, then falls back to the file name.
func titleFor(raw *domain.RawDocument) string {
	if title, ok := raw.Metadata["title"].(string); ok && title != "" {
		return title
	}
	return normalisers.TitleFromPath(raw.Source)
}
