package driven

import (
	"context"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// KnowledgeSource reads raw files from a knowledge directory.
type KnowledgeSource interface {
	// Load returns every supported file under dir, ordered by relative path.
	// Unreadable files are reported in the error slice and skipped.
	// A missing or empty directory yields no documents and no errors.
	Load(ctx context.Context, dir string) ([]domain.RawDocument, []error)

	// Watch calls onChange after files under dir are created, written,
	// renamed or removed. It blocks until ctx is cancelled.
	Watch(ctx context.Context, dir string, onChange func()) error
}
