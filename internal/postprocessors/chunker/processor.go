// Package chunker provides a recursive, overlapping text chunking processor.
//
// A chunk is cut at the last paragraph break that fits in the window, then
// the last line break, sentence end or word break, and only as a last resort
// mid-word. Each chunk after the first starts overlap runes before the end
// of its predecessor, moved back to a word start when possible.
package chunker

import (
	"context"
	"fmt"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// DefaultChunkSize is the default number of runes per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping runes.
const DefaultChunkOverlap = 150

// chunkNamespace seeds deterministic chunk IDs.
var chunkNamespace = uuid.MustParse("6f1c7a52-8c1e-4d0b-9a57-3f0b5d8e2c41")

// breakTiers lists break sequences from most to least preferred.
// A break falls after the sequence.
var breakTiers = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? ", ".\t", "!\t", "?\t"},
	{" ", "\t"},
}

// Processor splits document content into overlapping chunks.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in runes.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the minimum overlap between chunks in runes.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the maximum chunk size in runes.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap in runes.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("chunker: %w: nil document", domain.ErrInvalidInput)
	}
	return p.Chunk(doc), nil
}

// Chunk splits doc into chunks. Identical input always yields identical chunks.
func (p *Processor) Chunk(doc *domain.Document) []domain.Chunk {
	text := []rune(doc.Content)
	if len(text) == 0 {
		return nil
	}

	var chunks []domain.Chunk
	start, prevEnd := 0, 0

	for {
		end := len(text)
		if end-start > p.chunkSize {
			end = p.breakPoint(text, start, prevEnd)
		}

		overlap := 0
		if len(chunks) > 0 {
			overlap = prevEnd - start
		}
		chunks = append(chunks, p.newChunk(doc, len(chunks), text, start, end, overlap))

		if end == len(text) {
			return chunks
		}

		prevEnd = end
		start = p.nextStart(text, start, end)
	}
}

// breakPoint picks the end of the chunk that starts at start.
// The result lies in (max(start+overlap, prevEnd), start+chunkSize], so every
// chunk ends past its predecessor and the next chunk always advances.
func (p *Processor) breakPoint(text []rune, start, prevEnd int) int {
	limit := start + p.chunkSize
	floor := max(start+p.overlap, prevEnd)

	// First look for a break that keeps the chunk at least half full.
	if half := start + p.chunkSize/2; half > floor {
		for _, seps := range breakTiers {
			if end := lastBreak(text, half, limit, seps); end > 0 {
				return end
			}
		}
	}
	for _, seps := range breakTiers {
		if end := lastBreak(text, floor, limit, seps); end > 0 {
			return end
		}
	}
	return limit
}

// nextStart returns where the chunk after [start, end) begins.
func (p *Processor) nextStart(text []rune, start, end int) int {
	next := end - p.overlap
	if p.overlap == 0 {
		return next
	}

	// Widen the overlap back to the start of a word, but never by more than
	// the overlap again, never back to the previous start, and never so far
	// that end falls outside the next chunk's window.
	lowest := max(next-p.overlap, start+1, end-p.chunkSize+1)
	for i := next; i >= lowest; i-- {
		if unicode.IsSpace(text[i-1]) && !unicode.IsSpace(text[i]) {
			return i
		}
	}
	return next
}

func (p *Processor) newChunk(doc *domain.Document, position int, text []rune, start, end, overlap int) domain.Chunk {
	return domain.Chunk{
		ID:         uuid.NewSHA1(chunkNamespace, []byte(fmt.Sprintf("%s:%d", doc.ID, position))).String(),
		DocumentID: doc.ID,
		Source:     doc.Source,
		Content:    string(text[start:end]),
		Position:   position,
		Offset:     start,
		Overlap:    overlap,
	}
}

// lastBreak returns the largest end in (lo, hi] that directly follows one of
// seps, or -1.
func lastBreak(text []rune, lo, hi int, seps []string) int {
	for end := hi; end > lo; end-- {
		for _, sep := range seps {
			if endsWith(text, end, sep) {
				return end
			}
		}
	}
	return -1
}

func endsWith(text []rune, end int, sep string) bool {
	s := []rune(sep)
	if end < len(s) {
		return false
	}
	for i := range s {
		if text[end-len(s)+i] != s[i] {
			return false
		}
	}
	return true
}

// Reassemble rebuilds the original text from a document's chunks in order,
// dropping each chunk's overlap.
func Reassemble(chunks []domain.Chunk) string {
	var out []rune
	for _, c := range chunks {
		r := []rune(c.Content)
		if c.Overlap > len(r) {
			continue
		}
		out = append(out, r[c.Overlap:]...)
	}
	return string(out)
}
