package pdf

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// mockRunner is a test double for CommandRunner.
type mockRunner struct {
	output []byte
	err    error
	name   string
	args   []string
}

func (m *mockRunner) Run(_ context.Context, name string, args ...string) ([]byte, error) {
	m.name = name
	m.args = args
	return m.output, m.err
}

func newTestNormaliser(runner CommandRunner) *Normaliser {
	n := NewWithRunner(runner)
	n.lookPath = func(string) (string, error) { return "/usr/bin/pdftotext", nil }
	return n
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_NilDocument(t *testing.T) {
	result, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, result)
}

func TestNormalise_ToolMissing(t *testing.T) {
	n := NewWithRunner(&mockRunner{})
	n.lookPath = func(string) (string, error) { return "", errors.New("not in PATH") }

	_, err := n.Normalise(context.Background(), &domain.RawDocument{Source: "book.pdf", MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrPDFToolNotFound)
	assert.Contains(t, err.Error(), "book.pdf")
}

func TestNormalise_SkipsEmptyPages(t *testing.T) {
	runner := &mockRunner{
		output: []byte("Scaling Up\n\nPeople, Strategy, Execution, Cash.\f   \n \fCash is king.\n\f"),
	}
	n := newTestNormaliser(runner)

	raw := &domain.RawDocument{
		Source:   "books/scaling_up.pdf",
		MIMEType: "application/pdf",
		Content:  []byte("%PDF-1.4 fake pdf content"),
	}

	doc, err := n.Normalise(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "Scaling Up\n\nPeople, Strategy, Execution, Cash.\n\nCash is king.", doc.Content)
	assert.Equal(t, "Scaling Up", doc.Title)
	assert.Equal(t, "books/scaling_up.pdf", doc.Source)
	assert.NotEmpty(t, doc.ID)
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, 3, doc.Metadata["pages"])
	assert.Equal(t, 2, doc.Metadata["pages_with_text"])

	assert.Equal(t, "pdftotext", runner.name)
	require.Len(t, runner.args, 5)
	assert.Equal(t, "-", runner.args[4])
	_, statErr := os.Stat(runner.args[3])
	assert.True(t, os.IsNotExist(statErr), "temp file should be removed")
}

func TestNormalise_UsesPathWhenPresent(t *testing.T) {
	runner := &mockRunner{output: []byte("Cash\f")}
	n := newTestNormaliser(runner)

	_, err := n.Normalise(context.Background(), &domain.RawDocument{
		Source:   "cash.pdf",
		Path:     "/knowledge/cash.pdf",
		MIMEType: "application/pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "/knowledge/cash.pdf", runner.args[3])
}

func TestNormalise_ScannedPDF(t *testing.T) {
	n := newTestNormaliser(&mockRunner{output: []byte("\f\f  \f")})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{Source: "scan.pdf", MIMEType: "application/pdf"})
	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
}

func TestNormalise_RunnerError(t *testing.T) {
	n := newTestNormaliser(&mockRunner{err: errors.New("exit status 1")})

	_, err := n.Normalise(context.Background(), &domain.RawDocument{Source: "broken.pdf", MIMEType: "application/pdf"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken.pdf")
	assert.Contains(t, err.Error(), "exit status 1")
}

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		source   string
		expected string
	}{
		{
			name:     "first line as title",
			content:  "Document Title\n\nSome content here.",
			source:   "doc.pdf",
			expected: "Document Title",
		},
		{
			name:     "skip empty lines",
			content:  "\n\n\nActual   Title\nContent",
			source:   "doc.pdf",
			expected: "Actual Title",
		},
		{
			name:     "fallback to filename",
			content:  "",
			source:   "path/to/my_document.pdf",
			expected: "my document",
		},
		{
			name:     "skip very long first line",
			content:  string(make([]byte, 250)) + "\nShort Title\nContent",
			source:   "doc.pdf",
			expected: "Short Title",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, extractTitle(tc.content, tc.source))
		})
	}
}

func TestInstallInstructions(t *testing.T) {
	instructions := InstallInstructions()
	assert.Contains(t, instructions, "pdftotext")
	assert.Contains(t, instructions, "brew install poppler")
	assert.Contains(t, instructions, "apt install poppler-utils")
}

// Integration test - only runs if pdftotext is available.
func TestCheckAvailable(t *testing.T) {
	if err := CheckAvailable(); err != nil {
		assert.ErrorIs(t, err, domain.ErrPDFToolNotFound)
		t.Skip("pdftotext not available")
	}
}
