package domain

// Document represents a knowledge file after normalisation.
// Documents are immutable and discarded once chunked.
type Document struct {
	// ID is derived from Source so re-ingesting the same file yields the same ID.
	ID string

	// Source is the file path relative to the knowledge directory.
	Source string

	// Title is the human-readable title.
	Title string

	// Content is the full extracted text.
	Content string

	// Metadata contains normaliser-specific key-value pairs (format, page count).
	Metadata map[string]any
}

// Chunk represents a retrievable window of document text.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the owning document's Source, kept so the index is self-sufficient.
	Source string

	// Content is the text of this window.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Offset is the rune offset of Content within the document text.
	Offset int

	// Overlap is the number of leading runes of Content repeated from the previous chunk.
	Overlap int
}
