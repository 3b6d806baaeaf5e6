package filesystem

import (
	"path/filepath"
	"strings"
)

// ResolvePath converts a knowledge-relative source into a local path
// suitable for opening. file:// URIs and absolute paths pass through.
func ResolvePath(knowledgeDir, source string) string {
	if strings.HasPrefix(source, "file://") {
		return strings.TrimPrefix(source, "file://")
	}
	if source == "" || filepath.IsAbs(source) {
		return source
	}
	return filepath.Join(knowledgeDir, filepath.FromSlash(source))
}
