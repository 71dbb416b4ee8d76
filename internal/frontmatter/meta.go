// Package frontmatter interprets the well-known keys of a parsed front
// matter block.
package frontmatter

import (
	"path"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/goliatone/go-biotite/internal/markdown"
)

// Well-known keys, read by exact name.
const (
	KeyPublish = "publish"
	KeySlug    = "slug"
	KeyTitle   = "title"
	KeyTags    = "tags"
)

// Meta is the interpreted view of a document's front matter.
type Meta struct {
	// Publish is true only when the stored value is exactly "true".
	Publish bool
	// Slug names the output page. It falls back to the file stem.
	Slug string
	// Title falls back to the file stem when absent or empty.
	Title string
	// Tags is nil when the key is absent or empty.
	Tags []string
}

// Interpret reads fields from the front matter of the file at sourcePath.
// A nil map behaves like an empty one.
func Interpret(sourcePath string, fields map[string]string) Meta {
	stem := Stem(sourcePath)

	meta := Meta{
		Publish: fields[KeyPublish] == "true",
		Slug:    stem,
		Title:   stem,
	}
	if value := fields[KeySlug]; value != "" {
		meta.Slug = value
	}
	if value := fields[KeyTitle]; value != "" {
		meta.Title = value
	}
	if value := fields[KeyTags]; value != "" {
		meta.Tags = strings.Split(value, markdown.ListSeparator)
	}
	return meta
}

// FromDocument interprets the front matter of doc.
func FromDocument(doc *markdown.SourceDocument) Meta {
	if doc == nil {
		return Interpret("", nil)
	}
	return Interpret(doc.Path, doc.FrontMatter)
}

// Publishable reports whether doc should be part of a site build: it must
// opt in with publish: true and have a parsed body.
func Publishable(doc *markdown.SourceDocument) bool {
	return doc.HasBody() && FromDocument(doc).Publish
}

// SlugValid reports whether Slug satisfies the default go-slug rules.
// Pages with a non-conforming slug are still written; callers may warn.
func (m Meta) SlugValid() bool {
	return slug.IsValid(m.Slug)
}

// SuggestSlug normalises value into a conforming slug.
func SuggestSlug(value string) (string, error) {
	return slug.Normalize(value)
}

// Stem returns the base name of p without its extension.
func Stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	if base == "." || base == "/" {
		return ""
	}
	return strings.TrimSuffix(base, path.Ext(base))
}
