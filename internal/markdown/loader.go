package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// DefaultExtensions lists the file extensions treated as markdown sources.
var DefaultExtensions = []string{".md", ".markdown"}

// LoaderConfig configures how markdown files are discovered.
type LoaderConfig struct {
	// Extensions limits discovery to these suffixes (defaults to DefaultExtensions).
	Extensions []string
	// Recursive walks sub-directories when true.
	Recursive bool
	// Logger receives parse diagnostics; nil disables logging.
	Logger interfaces.Logger
}

// Loader reads markdown files from a filesystem and parses them.
type Loader struct {
	fs         fs.FS
	extensions []string
	recursive  bool
	logger     interfaces.Logger
}

// NewLoader builds a Loader over filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	exts := make([]string, 0, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, DefaultExtensions...)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}

	return &Loader{
		fs:         filesystem,
		extensions: exts,
		recursive:  cfg.Recursive,
		logger:     logger,
	}
}

// LoadFile reads and parses one file. A body the grammar rejects is not an
// error: the returned document simply has no Body.
func (l *Loader) LoadFile(ctx context.Context, name string) (*SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = path.Clean(strings.TrimPrefix(name, "/"))
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}

	doc := Parse(name, string(data))
	if !doc.HasBody() {
		logging.WithDocumentContext(l.logger, name, "parse").Warn("markdown.parse.body_failed")
	}
	return doc, nil
}

// LoadDirectory discovers markdown files under dir and parses each of
// them. Results are ordered by path.
func (l *Loader) LoadDirectory(ctx context.Context, dir string) ([]*SourceDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := path.Clean(strings.TrimPrefix(dir, "/"))
	if root == "" {
		root = "."
	}

	var docs []*SourceDocument
	walkErr := fs.WalkDir(l.fs, root, func(current string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if current != root && !l.recursive {
				return fs.SkipDir
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !l.IsMarkdown(current) {
			return nil
		}

		doc, err := l.LoadFile(ctx, current)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Path < docs[j].Path
	})

	l.logger.Debug("markdown.load_directory.completed", "dir", root, "documents", len(docs))
	return docs, nil
}

// IsMarkdown reports whether name carries one of the configured extensions.
func (l *Loader) IsMarkdown(name string) bool {
	ext := strings.ToLower(path.Ext(name))
	for _, candidate := range l.extensions {
		if ext == candidate {
			return true
		}
	}
	return false
}
