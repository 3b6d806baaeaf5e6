package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name   string
		dir    string
		source string
		want   string
	}{
		{
			name:   "relative source is joined to the knowledge dir",
			dir:    "knowledge",
			source: "cash/forecast.txt",
			want:   filepath.Join("knowledge", "cash", "forecast.txt"),
		},
		{
			name:   "file:// URI is converted to local path",
			dir:    "knowledge",
			source: "file:///Users/test/documents/file.txt",
			want:   "/Users/test/documents/file.txt",
		},
		{
			name:   "file:// URI with spaces",
			dir:    "knowledge",
			source: "file:///Users/test/my documents/file.txt",
			want:   "/Users/test/my documents/file.txt",
		},
		{
			name:   "absolute path passes through unchanged",
			dir:    "knowledge",
			source: "/Users/test/documents/file.txt",
			want:   "/Users/test/documents/file.txt",
		},
		{
			name:   "empty string passes through",
			dir:    "knowledge",
			source: "",
			want:   "",
		},
		{
			name:   "file:// prefix only",
			dir:    "knowledge",
			source: "file://",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolvePath(tt.dir, tt.source)
			assert.Equal(t, tt.want, got)
		})
	}
}
