package normalisers

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// MIME types of the supported knowledge formats.
const (
	MIMETypePDF       = "application/pdf"
	MIMETypePlainText = "text/plain"
)

var extensionTypes = map[string]string{
	".pdf":  MIMETypePDF,
	".txt":  MIMETypePlainText,
	".text": MIMETypePlainText,
}

// MIMETypeForPath returns the MIME type for a file path by extension,
// or "" when the format is not supported.
func MIMETypeForPath(path string) string {
	return extensionTypes[strings.ToLower(filepath.Ext(path))]
}

var documentNamespace = uuid.MustParse("0d7c4b8e-5f2a-4e61-b3c9-7a1e2f9d4c05")

// DocumentID derives a stable document ID from its knowledge-relative path.
func DocumentID(source string) string {
	return uuid.NewSHA1(documentNamespace, []byte(filepath.ToSlash(source))).String()
}

// TitleFromPath turns a file name into a human-readable title.
func TitleFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.ReplaceAll(name, "-", " ")
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
