package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goliatone/go-biotite/internal/markdown"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// imageCopier copies local images referenced by documents into the images
// directory and rewrites their URLs. It is shared by all build workers;
// each source is copied at most once per build. Sources sharing a base name
// get distinct destination names.
type imageCopier struct {
	contentDir string
	imagesDir  string
	home       func() (string, error)
	writer     artifactWriter
	logger     interfaces.Logger

	mu      sync.Mutex
	copied  map[string]string
	sources map[string]string
}

func newImageCopier(contentDir, imagesDir string, home func() (string, error), writer artifactWriter, logger interfaces.Logger) *imageCopier {
	return &imageCopier{
		contentDir: contentDir,
		imagesDir:  imagesDir,
		home:       home,
		writer:     writer,
		logger:     logger,
		copied:     map[string]string{},
		sources:    map[string]string{},
	}
}

// localize processes every image of doc. A missing source file stops
// processing and returns an error wrapping ErrImageNotFound.
func (c *imageCopier) localize(ctx context.Context, doc *markdown.SourceDocument) error {
	if !doc.HasBody() {
		return nil
	}
	for _, img := range markdown.Images(doc.Body) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if isRemoteURL(img.URL) || strings.TrimSpace(img.URL) == "" {
			continue
		}

		src := c.resolve(doc.Path, img.URL)
		info, err := os.Stat(src)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s referenced by %s", ErrImageNotFound, src, doc.Path)
		}

		name, err := c.copy(ctx, src)
		if err != nil {
			return err
		}
		img.URL = imageURL(c.imagesDir, name)
	}
	return nil
}

// copy writes src into the images directory and returns its destination
// name. The base name of src is used unless another source already took it.
func (c *imageCopier) copy(ctx context.Context, src string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name, ok := c.sources[src]; ok {
		return name, nil
	}
	name := filepath.Base(src)
	if previous, ok := c.copied[name]; ok {
		name = disambiguatedImageName(name, src)
		c.logger.Warn("generator.build.image_name_collision", "image", filepath.Base(src), "previous", previous, "source", src, "renamed", name)
	}
	if err := c.writer.CopyFile(ctx, src, path.Join(c.imagesDir, name)); err != nil {
		return "", err
	}
	c.copied[name] = src
	c.sources[src] = name
	return name, nil
}

// disambiguatedImageName inserts a short digest of src between the stem
// and the extension of name.
func disambiguatedImageName(name, src string) string {
	sum := sha256.Sum256([]byte(filepath.ToSlash(src)))
	ext := filepath.Ext(name)
	return strings.TrimSuffix(name, ext) + "-" + hex.EncodeToString(sum[:4]) + ext
}

// resolve maps an image URL to a filesystem path: absolute paths are used
// as is, "~/" is expanded to the home directory, anything else is relative
// to the directory of the referencing document.
func (c *imageCopier) resolve(docPath, url string) string {
	switch {
	case filepath.IsAbs(url) || strings.HasPrefix(url, "/"):
		return filepath.FromSlash(url)
	case strings.HasPrefix(url, "~/"):
		home := "."
		if c.home != nil {
			if dir, err := c.home(); err == nil && dir != "" {
				home = dir
			}
		}
		return filepath.Join(home, filepath.FromSlash(url[2:]))
	default:
		base := filepath.Join(c.contentDir, filepath.FromSlash(path.Dir(docPath)))
		return filepath.Join(base, filepath.FromSlash(url))
	}
}

func (c *imageCopier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.copied)
}
