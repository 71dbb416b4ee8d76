// Package render serialises markdown documents to HTML and wraps the result
// in page templates.
package render

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-biotite/internal/markdown"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
)

// Escape replaces the five HTML-significant characters with entities.
func Escape(s string) string {
	return htmlEscaper.Replace(s)
}

// Document renders every block of doc in order. A nil document renders
// as the empty string.
func Document(doc *markdown.Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	writeBlocks(&b, doc.Blocks)
	return b.String()
}

// Inlines renders an inline sequence.
func Inlines(inlines []markdown.Inline) string {
	var b strings.Builder
	writeInlines(&b, inlines)
	return b.String()
}

func writeBlocks(b *strings.Builder, blocks []markdown.Block) {
	for _, block := range blocks {
		writeBlock(b, block)
	}
}

func writeBlock(b *strings.Builder, block markdown.Block) {
	switch node := block.(type) {
	case markdown.Heading:
		level := strconv.Itoa(node.Level)
		b.WriteString("<h" + level + ">")
		writeInlines(b, node.Content)
		b.WriteString("</h" + level + ">\n")
	case markdown.Paragraph:
		b.WriteString("<p>")
		writeInlines(b, node.Content)
		b.WriteString("</p>\n")
	case markdown.Blockquote:
		b.WriteString("<blockquote>\n")
		writeBlocks(b, node.Blocks)
		b.WriteString("</blockquote>\n")
	case markdown.FencedCodeBlock:
		b.WriteString("<pre><code")
		if node.Language != "" {
			b.WriteString(` class="language-` + Escape(node.Language) + `"`)
		}
		b.WriteString(">")
		b.WriteString(Escape(node.Code))
		b.WriteString("</code></pre>\n")
	case markdown.HorizontalRule:
		b.WriteString("<hr />\n")
	case markdown.List:
		writeList(b, node)
	}
}

// writeList approximates nesting from item indents. A deeper item opens a
// sub-list inside the previous item, a shallower one closes sub-lists until
// an enclosing level is reached. Sub-lists never close past the first
// item's level, so the output always balances.
func writeList(b *strings.Builder, list markdown.List) {
	if len(list.Items) == 0 {
		return
	}

	tag := "ul"
	if list.Kind == markdown.Ordered {
		tag = "ol"
	}
	open, closing := "<"+tag+">\n", "</"+tag+">\n"

	levels := []int{list.Items[0].Indent}
	b.WriteString(open)

	for i, item := range list.Items {
		if i > 0 {
			switch top := levels[len(levels)-1]; {
			case item.Indent > top:
				b.WriteString("\n")
				b.WriteString(open)
				levels = append(levels, item.Indent)
			default:
				b.WriteString("</li>\n")
				for len(levels) > 1 && item.Indent < levels[len(levels)-1] {
					b.WriteString(closing)
					b.WriteString("</li>\n")
					levels = levels[:len(levels)-1]
				}
			}
		}
		writeListItem(b, item)
	}

	b.WriteString("</li>\n")
	for range levels[1:] {
		b.WriteString(closing)
		b.WriteString("</li>\n")
	}
	b.WriteString(closing)
}

// writeListItem leaves the <li> open so a sub-list can follow.
func writeListItem(b *strings.Builder, item markdown.ListItem) {
	b.WriteString("<li>")
	if item.Checked != nil {
		if *item.Checked {
			b.WriteString(`<input type="checkbox" checked disabled> `)
		} else {
			b.WriteString(`<input type="checkbox" disabled> `)
		}
	}
	writeInlines(b, item.Content)
}

func writeInlines(b *strings.Builder, inlines []markdown.Inline) {
	for _, inline := range inlines {
		switch node := inline.(type) {
		case markdown.Text:
			b.WriteString(Escape(node.Value))
		case markdown.Strong:
			b.WriteString("<strong>")
			writeInlines(b, node.Children)
			b.WriteString("</strong>")
		case markdown.Italic:
			b.WriteString("<em>")
			writeInlines(b, node.Children)
			b.WriteString("</em>")
		case markdown.Strikethrough:
			b.WriteString("<del>")
			writeInlines(b, node.Children)
			b.WriteString("</del>")
		case markdown.Code:
			b.WriteString("<code>" + Escape(node.Value) + "</code>")
		case *markdown.Link:
			b.WriteString(`<a href="` + Escape(node.URL) + `">`)
			writeInlines(b, node.Text)
			b.WriteString("</a>")
		case *markdown.Image:
			b.WriteString(`<img src="` + Escape(node.URL) + `" alt="` + Escape(node.Alt) + `" />`)
		}
	}
}
