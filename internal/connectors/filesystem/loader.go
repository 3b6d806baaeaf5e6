// Package filesystem reads knowledge files from a local directory and
// watches it for changes.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/ports/driven"
	"github.com/custodia-labs/vernebot/internal/logger"
	"github.com/custodia-labs/vernebot/internal/normalisers"
)

// Ensure Loader implements the interface.
var _ driven.KnowledgeSource = (*Loader)(nil)

// Default configuration values.
const (
	DefaultMaxFileSize = 64 << 20
	DefaultDebounce    = 500 * time.Millisecond
)

// DefaultInclude matches every supported file at any depth.
var DefaultInclude = []string{"**/*.pdf", "**/*.txt"}

// Loader reads supported files from a knowledge directory.
type Loader struct {
	include     []string
	maxFileSize int64
	debounce    time.Duration
}

// Option configures a Loader.
type Option func(*Loader)

// WithInclude sets the doublestar patterns a relative path must match.
func WithInclude(patterns ...string) Option {
	return func(l *Loader) {
		if len(patterns) > 0 {
			l.include = patterns
		}
	}
}

// WithMaxFileSize skips files larger than size bytes.
func WithMaxFileSize(size int64) Option {
	return func(l *Loader) {
		if size > 0 {
			l.maxFileSize = size
		}
	}
}

// WithDebounce sets how long Watch waits for changes to settle.
func WithDebounce(d time.Duration) Option {
	return func(l *Loader) {
		if d > 0 {
			l.debounce = d
		}
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		include:     DefaultInclude,
		maxFileSize: DefaultMaxFileSize,
		debounce:    DefaultDebounce,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns every supported, included file under dir, ordered by relative path.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.RawDocument, []error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("knowledge directory %s does not exist", dir)
		return nil, nil
	}
	if err != nil {
		return nil, []error{fmt.Errorf("%w: %s: %w", domain.ErrIngestion, dir, err)}
	}
	if !info.IsDir() {
		return nil, []error{fmt.Errorf("%w: %s is not a directory", domain.ErrIngestion, dir)}
	}

	var (
		docs []domain.RawDocument
		errs []error
	)

	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		if err != nil {
			errs = append(errs, &domain.FileError{Source: rel, Err: err})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if rel != "." && isHidden(rel) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		mimeType := normalisers.MIMETypeForPath(rel)
		if mimeType == "" || !l.included(rel) {
			logger.Debug("skipping %s", rel)
			return nil
		}

		doc, readErr := l.read(path, rel, mimeType)
		if readErr != nil {
			logger.Warn("skipping unreadable file %s: %v", rel, readErr)
			errs = append(errs, &domain.FileError{Source: rel, Err: readErr})
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Source < docs[j].Source })
	logger.Debug("loaded %d files from %s", len(docs), dir)
	return docs, errs
}

func (l *Loader) read(path, rel, mimeType string) (domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return domain.RawDocument{}, err
	}
	if info.Size() > l.maxFileSize {
		return domain.RawDocument{}, fmt.Errorf("file is %d bytes, limit is %d", info.Size(), l.maxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	return domain.RawDocument{
		Source:   rel,
		Path:     abs,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"size":     info.Size(),
			"modified": info.ModTime().UTC(),
		},
	}, nil
}

func (l *Loader) included(rel string) bool {
	for _, pattern := range l.include {
		ok, err := doublestar.Match(pattern, rel)
		if err != nil {
			logger.Warn("invalid include pattern %q: %v", pattern, err)
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// Watch calls onChange once changes under dir settle for the debounce period.
func (l *Loader) Watch(ctx context.Context, dir string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	logger.Info("watching %s for changes", dir)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) && !hiddenUnder(dir, event.Name) {
				if err := addRecursive(watcher, event.Name); err != nil {
					logger.Warn("watching %s: %v", event.Name, err)
				}
			}
			if l.relevant(dir, event) {
				logger.Debug("change detected: %s", event)
				settle = time.After(l.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error: %v", err)

		case <-settle:
			settle = nil
			onChange()
		}
	}
}

// relevant reports whether event may change the ingested corpus.
func (l *Loader) relevant(dir string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	if hiddenUnder(dir, event.Name) {
		return false
	}
	rel, _ := filepath.Rel(dir, event.Name)
	rel = filepath.ToSlash(rel)

	if normalisers.MIMETypeForPath(rel) != "" {
		return l.included(rel)
	}
	// A removed or renamed directory can take included files with it.
	return filepath.Ext(rel) == "" && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename))
}

func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return fs.SkipDir
		}
		return watcher.Add(path)
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hiddenUnder reports whether path is hidden relative to dir. Dotted
// elements of dir itself do not count. A path that cannot be made relative
// to dir counts as hidden.
func hiddenUnder(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return true
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if len(part) > 1 && part[0] == '.' && part != ".." {
			return true
		}
	}
	return false
}
