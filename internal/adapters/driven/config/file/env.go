package file

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/vernebot/internal/core/domain"
)

// LoadEnv reads KEY=value pairs from the given .env files into the process
// environment. Variables already set are left untouched. Missing files are
// skipped; with no arguments ".env" in the working directory is tried.
func LoadEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("%w: load %s: %w", domain.ErrConfigInvalid, path, err)
		}
	}
	return nil
}
