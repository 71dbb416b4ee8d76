// Package markdown parses the site's markdown dialect into a document tree.
//
// The grammar is written with the combinators in internal/combinator.
// Blocks are tried in a fixed priority order (horizontal rule, fenced
// code, heading, blockquote, lists, paragraph) and each block's text is
// handed to the inline grammar. Parsing never reports why something did
// not match; unmatched markup degrades to literal text.
package markdown

import (
	"strings"

	c "github.com/goliatone/go-biotite/internal/combinator"
)

// documentBlocks skips blank lines before every block and repeats the
// block grammar until nothing more parses.
func documentBlocks() c.Parser[[]Block] {
	block := c.Right(c.Many(c.BlankLine()), BlockParser())
	return c.Many(block)
}

// ParseDocument parses a body without front matter. The boolean is false
// when input other than whitespace is left over.
func ParseDocument(body string) (*Document, bool) {
	blocks, rest, ok := documentBlocks()(body)
	if !ok || strings.TrimSpace(rest) != "" {
		return nil, false
	}
	return &Document{Blocks: blocks}, true
}

// Parse turns the raw text of the file at path into a SourceDocument.
// Windows line endings are normalised before the front matter is split.
func Parse(path string, text string) *SourceDocument {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	meta, body := SplitFrontMatter(text)

	doc := &SourceDocument{
		Path:        path,
		FrontMatter: meta,
	}
	if parsed, ok := ParseDocument(body); ok {
		doc.Body = parsed
	}
	return doc
}
