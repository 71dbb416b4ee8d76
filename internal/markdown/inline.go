package markdown

import (
	"strings"
	"unicode"

	c "github.com/goliatone/go-biotite/internal/combinator"
)

// autolinkTrailing lists punctuation stripped from the end of a bare URL.
const autolinkTrailing = ".,;:!?"

// Inlines parses one or more inline units up to the end of the line. Every
// alternative consumes at least one rune on success, so the repetition
// always terminates.
func Inlines() c.Parser[[]Inline] {
	return c.Some(c.Choice(
		imageInline(),
		wikilinkInline(),
		linkInline(),
		autolinkInline(),
		boldInline(),
		strikethroughInline(),
		italicInline(), // after bold so "**" is never read as two italics
		codeInline(),
		textInline(),
		symbolInline(),
	))
}

// nested parses delimited content as inlines. Content the inline grammar
// cannot fully consume is kept as a single literal text.
func nested(content string) []Inline {
	inlines, rest, ok := Inlines()(content)
	if !ok || rest != "" {
		return []Inline{Text{Value: content}}
	}
	return inlines
}

func isTextRune(r rune) bool {
	switch r {
	case '\\', '\n', '*', '`', '~', '[', ']', '(', ')', '!':
		return false
	}
	return true
}

// textRun matches plain characters and backslash escapes. An escape drops
// the backslash and keeps the next rune whatever it is.
func textRun() c.Parser[string] {
	escaped := c.Right(c.Literal(`\`), c.AnyChar())
	plain := c.Char(isTextRune)
	return c.Runes(c.Some(c.Or(escaped, plain)))
}

func textInline() c.Parser[Inline] {
	return c.Map(textRun(), func(s string) Inline { return Text{Value: s} })
}

// delimited matches opener, content up to the first closer, then closer. Empty
// content does not match.
func delimited(opener, closer string) c.Parser[string] {
	content := c.Satisfy(c.TakeUntil(closer), func(s string) bool { return s != "" })
	return c.Left(c.Right(c.Literal(opener), content), c.Literal(closer))
}

func boldInline() c.Parser[Inline] {
	return c.Map(delimited("**", "**"), func(s string) Inline {
		return Strong{Children: nested(s)}
	})
}

func strikethroughInline() c.Parser[Inline] {
	return c.Map(delimited("~~", "~~"), func(s string) Inline {
		return Strikethrough{Children: nested(s)}
	})
}

func italicInline() c.Parser[Inline] {
	return c.Map(delimited("*", "*"), func(s string) Inline {
		return Italic{Children: nested(s)}
	})
}

func codeInline() c.Parser[Inline] {
	tick := c.Literal("`")
	return c.Map(c.Left(c.Right(tick, textRun()), tick), func(s string) Inline {
		return Code{Value: s}
	})
}

// url matches the target of "(...)": anything up to the closing paren.
func url() c.Parser[string] {
	return c.Runes(c.Some(c.Char(func(r rune) bool { return r != ')' })))
}

func imageInline() c.Parser[Inline] {
	alt := c.Left(c.Right(c.Literal("!["), textRun()), c.Literal("]("))
	target := c.Left(url(), c.Literal(")"))
	return c.Map(c.And(alt, target), func(p c.Pair[string, string]) Inline {
		return &Image{Alt: p.First, URL: p.Second}
	})
}

// linkInline reads the text up to the first "](" after the opening bracket
// and parses it as inline content.
func linkInline() c.Parser[Inline] {
	text := c.Left(c.Right(c.Literal("["), c.TakeUntil("](")), c.Literal("]("))
	target := c.Left(url(), c.Literal(")"))
	return c.Map(c.And(text, target), func(p c.Pair[string, string]) Inline {
		return &Link{Text: nested(p.First), URL: p.Second}
	})
}

func isURLRune(r rune) bool {
	switch r {
	case '<', '>', '(', ')', '[', ']', '{', '}', '"', '\'':
		return false
	}
	return !unicode.IsSpace(r)
}

// autolinkInline turns a bare http(s) URL into a link. Trailing
// punctuation is dropped from the target but kept in the displayed text.
func autolinkInline() c.Parser[Inline] {
	scheme := c.Or(c.Literal("https://"), c.Literal("http://"))
	body := c.Runes(c.Some(c.Char(isURLRune)))
	return c.Map(c.And(scheme, body), func(p c.Pair[string, string]) Inline {
		raw := p.First + p.Second
		return &Link{
			Text: []Inline{Text{Value: raw}},
			URL:  p.First + strings.TrimRight(p.Second, autolinkTrailing),
		}
	})
}

// wikilinkInline matches [[target]] and [[target|label]].
func wikilinkInline() c.Parser[Inline] {
	part := c.Runes(c.Some(c.Char(func(r rune) bool {
		return r != '|' && r != ']' && r != '\n'
	})))
	label := c.Or(c.Right(c.Literal("|"), part), c.Id[string]())
	body := c.Left(c.And(c.Right(c.Literal("[["), part), label), c.Literal("]]"))

	return c.Map(body, func(p c.Pair[string, string]) Inline {
		display := p.Second
		if display == "" {
			display = p.First
		}
		return &Link{Text: []Inline{Text{Value: display}}, URL: p.First}
	})
}

// symbolInline keeps any single rune other than a line feed as text.
func symbolInline() c.Parser[Inline] {
	return c.Map(c.Char(func(r rune) bool { return r != '\n' }), func(r rune) Inline {
		return Text{Value: string(r)}
	})
}
