package generator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type writeCategory string

const (
	categoryPage     writeCategory = "page"
	categoryImage    writeCategory = "image"
	categorySitemap  writeCategory = "sitemap"
	categoryManifest writeCategory = "manifest"
)

var errUnsafeOutputDir = errors.New("generator: refusing to manage output directory")

// writeFileRequest describes one file written below the output directory.
type writeFileRequest struct {
	Path     string
	Content  io.Reader
	Category writeCategory
}

// artifactWriter performs every filesystem mutation of a build. Paths are
// slash separated and relative to the output directory.
type artifactWriter interface {
	EnsureDir(ctx context.Context, rel string) error
	WriteFile(ctx context.Context, req writeFileRequest) error
	CopyFile(ctx context.Context, src string, rel string) error
	RemoveAll(ctx context.Context, rel string) error
	ReadFile(ctx context.Context, rel string) ([]byte, error)
	Exists(ctx context.Context, rel string) bool
}

func newArtifactWriter(root string, dryRun bool) (artifactWriter, error) {
	if dryRun {
		return noopWriter{}, nil
	}
	root = filepath.Clean(strings.TrimSpace(root))
	if root == "." || root == string(filepath.Separator) || root == "" {
		return nil, fmt.Errorf("%w %q", errUnsafeOutputDir, root)
	}
	return &fsWriter{root: root}, nil
}

type fsWriter struct {
	root string
}

func (w *fsWriter) resolve(rel string) string {
	return filepath.Join(w.root, filepath.FromSlash(strings.TrimPrefix(rel, "/")))
}

func (w *fsWriter) EnsureDir(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(w.resolve(rel), 0o755); err != nil {
		return fmt.Errorf("generator: ensure dir %s: %w", rel, err)
	}
	return nil
}

func (w *fsWriter) WriteFile(ctx context.Context, req writeFileRequest) error {
	if req.Content == nil {
		return errors.New("generator: write requires content reader")
	}
	if strings.TrimSpace(req.Path) == "" {
		return errors.New("generator: write requires path")
	}
	if err := w.EnsureDir(ctx, filepath.ToSlash(filepath.Dir(req.Path))); err != nil {
		return err
	}

	file, err := os.Create(w.resolve(req.Path))
	if err != nil {
		return fmt.Errorf("generator: create %s %s: %w", req.Category, req.Path, err)
	}
	if _, err := io.Copy(file, req.Content); err != nil {
		_ = file.Close()
		return fmt.Errorf("generator: write %s %s: %w", req.Category, req.Path, err)
	}
	return file.Close()
}

func (w *fsWriter) CopyFile(ctx context.Context, src string, rel string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("generator: open %s: %w", src, err)
	}
	defer in.Close()

	return w.WriteFile(ctx, writeFileRequest{Path: rel, Content: in, Category: categoryImage})
}

// RemoveAll deletes rel, or the whole output directory when rel is empty.
func (w *fsWriter) RemoveAll(ctx context.Context, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.RemoveAll(w.resolve(rel)); err != nil {
		return fmt.Errorf("generator: remove %s: %w", w.resolve(rel), err)
	}
	return nil
}

func (w *fsWriter) ReadFile(ctx context.Context, rel string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(w.resolve(rel))
	if err != nil {
		return nil, fmt.Errorf("generator: read %s: %w", rel, err)
	}
	return data, nil
}

func (w *fsWriter) Exists(_ context.Context, rel string) bool {
	info, err := os.Stat(w.resolve(rel))
	return err == nil && !info.IsDir()
}

// noopWriter backs dry runs: nothing is written and nothing is read back.
type noopWriter struct{}

func (noopWriter) EnsureDir(context.Context, string) error           { return nil }
func (noopWriter) WriteFile(context.Context, writeFileRequest) error { return nil }
func (noopWriter) CopyFile(context.Context, string, string) error    { return nil }
func (noopWriter) RemoveAll(context.Context, string) error           { return nil }
func (noopWriter) Exists(context.Context, string) bool               { return false }

func (noopWriter) ReadFile(_ context.Context, rel string) ([]byte, error) {
	return nil, fmt.Errorf("generator: read %s: %w", rel, fs.ErrNotExist)
}
