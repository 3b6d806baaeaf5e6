package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// bowEmbedder is a deterministic bag-of-words embedder over a fixed vocabulary.
type bowEmbedder struct {
	mu        sync.Mutex
	vocab     map[string]int
	model     string
	failQuery bool
	failCalls map[int]bool
	calls     int
	override  map[int][][]float32
}

var _ driven.EmbeddingService = (*bowEmbedder)(nil)

func newBOWEmbedder(words ...string) *bowEmbedder {
	vocab := make(map[string]int, len(words))
	for i, w := range words {
		vocab[w] = i
	}
	return &bowEmbedder{vocab: vocab, model: "bow"}
}

func tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func (e *bowEmbedder) vector(text string) []float32 {
	v := make([]float32, len(e.vocab))
	for _, tok := range tokens(text) {
		if i, ok := e.vocab[tok]; ok {
			v[i]++
		}
	}
	return v
}

func (e *bowEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.mu.Unlock()

	if e.failCalls[call] {
		return nil, fmt.Errorf("%w: batch %d refused", domain.ErrEmbeddingUnavailable, call)
	}
	if vectors, ok := e.override[call]; ok {
		return vectors, nil
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.vector(t)
	}
	return out, nil
}

func (e *bowEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.failQuery {
		return nil, fmt.Errorf("%w: provider down", domain.ErrEmbeddingUnavailable)
	}
	return e.vector(text), nil
}

func (e *bowEmbedder) Dimensions() int { return len(e.vocab) }
func (e *bowEmbedder) ProviderName() string { return "test" }
func (e *bowEmbedder) ModelName() string { return e.model }
func (e *bowEmbedder) Ping(_ context.Context) error { return nil }
func (e *bowEmbedder) Close() error { return nil }

// stubLLM returns a canned reply or error and records prompts.
type stubLLM struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
	opts    []driven.GenerateOptions
}

var _ driven.LLMService = (*stubLLM)(nil)

func (l *stubLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	l.mu.Lock()
	l.prompts = append(l.prompts, prompt)
	l.opts = append(l.opts, opts)
	l.mu.Unlock()

	if l.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return l.reply, l.err
}

func (l *stubLLM) lastPrompt() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.prompts) == 0 {
		return ""
	}
	return l.prompts[len(l.prompts)-1]
}

func (l *stubLLM) ProviderName() string { return "stub" }
func (l *stubLLM) ModelName() string { return "stub-1" }
func (l *stubLLM) Ping(_ context.Context) error { return nil }
func (l *stubLLM) Close() error { return nil }

// memIndexStore keeps snapshots in a map.
type memIndexStore struct {
	mu        sync.Mutex
	snapshots map[string]domain.IndexSnapshot
	saveErr   error
	saves     int
}

var _ driven.IndexStore = (*memIndexStore)(nil)

func newMemIndexStore() *memIndexStore {
	return &memIndexStore{snapshots: make(map[string]domain.IndexSnapshot)}
}

func (s *memIndexStore) Save(_ context.Context, path string, snapshot domain.IndexSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.snapshots[path] = snapshot
	return nil
}

func (s *memIndexStore) Load(_ context.Context, path string) (domain.IndexSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.snapshots[path]
	if !ok {
		return domain.IndexSnapshot{}, fmt.Errorf("%w: no index at %s", domain.ErrIndexUnavailable, path)
	}
	return snapshot, nil
}

// fakeSource serves fixed raw documents.
type fakeSource struct {
	docs    []domain.RawDocument
	errs    []error
	changes int
}

var _ driven.KnowledgeSource = (*fakeSource)(nil)

func (f *fakeSource) Load(_ context.Context, _ string) ([]domain.RawDocument, []error) {
	return f.docs, f.errs
}

func (f *fakeSource) Watch(_ context.Context, _ string, onChange func()) error {
	for i := 0; i < f.changes; i++ {
		onChange()
	}
	return nil
}

func rawText(source, content string) domain.RawDocument {
	return domain.RawDocument{
		Source:   source,
		Path:     "/kb/" + source,
		MIMEType: "text/plain",
		Content:  []byte(content),
	}
}
