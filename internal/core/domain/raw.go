package domain

// RawDocument represents opaque bytes read from the knowledge directory.
// It is the loader's output before normalisation.
type RawDocument struct {
	// Source is the path relative to the knowledge directory.
	Source string

	// Path is the absolute file path.
	Path string

	// MIMEType is the content type (e.g., "application/pdf").
	MIMEType string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains loader-specific key-value pairs.
	Metadata map[string]any
}
