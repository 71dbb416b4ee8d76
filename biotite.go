// Package biotite parses markdown notes into a document tree and renders the
// tree to HTML. Site builds live in pkg/generator.
package biotite

import (
	"github.com/goliatone/go-biotite/internal/frontmatter"
	"github.com/goliatone/go-biotite/internal/markdown"
	"github.com/goliatone/go-biotite/internal/render"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// Document exports the parsed body of a note.
type Document = markdown.Document

// SourceDocument exports a parsed note: its path, front matter and body.
type SourceDocument = markdown.SourceDocument

// Meta exports the interpreted front matter of a note.
type Meta = frontmatter.Meta

// PageData exports the value handed to the page template.
type PageData = render.PageData

// PageTemplate names the layout every page is rendered with.
const PageTemplate = render.PageTemplate

// Parse splits front matter from text and parses the body. Body is nil when
// the body could not be parsed.
func Parse(path, text string) *SourceDocument {
	return markdown.Parse(path, text)
}

// ParseDocument parses a body without front matter.
func ParseDocument(body string) (*Document, bool) {
	return markdown.ParseDocument(body)
}

// SplitFrontMatter returns the metadata block of content and the remaining
// body.
func SplitFrontMatter(content string) (map[string]string, string) {
	return markdown.SplitFrontMatter(content)
}

// MetaOf interprets the front matter of doc.
func MetaOf(doc *SourceDocument) Meta {
	return frontmatter.FromDocument(doc)
}

// Publishable reports whether doc opts in with publish: true and has a body.
func Publishable(doc *SourceDocument) bool {
	return frontmatter.Publishable(doc)
}

// RenderHTML serializes doc to HTML markup.
func RenderHTML(doc *Document) string {
	return render.Document(doc)
}

// NewTemplateRenderer returns the built-in page layout renderer.
func NewTemplateRenderer() (interfaces.TemplateRenderer, error) {
	return render.NewTemplates(nil)
}

// NewMarkdownParser returns a parser that renders note text to HTML.
func NewMarkdownParser() interfaces.MarkdownParser {
	return render.MarkdownParser{}
}
