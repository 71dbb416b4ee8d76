package markdown

import (
	"strings"

	c "github.com/goliatone/go-biotite/internal/combinator"
)

const (
	maxHeadingLevel = 6
	codeFence       = "```"
)

// BlockParser tries each block form in priority order. The paragraph
// fallback makes it succeed on any input that starts with something other
// than a line feed.
func BlockParser() c.Parser[Block] {
	return c.Choice(
		horizontalRule(),
		fencedCodeBlock(),
		heading(),
		blockquote(),
		unorderedList(),
		orderedList(),
		paragraph(),
	)
}

func horizontalRule() c.Parser[Block] {
	marker := c.Choice(c.Literal("---"), c.Literal("***"), c.Literal("___"))
	trailing := c.Many(c.Char(func(r rune) bool { return r == ' ' }))
	return c.Map(
		c.And(c.And(marker, trailing), c.Newline()),
		func(c.Pair[c.Pair[string, []rune], string]) Block { return HorizontalRule{} },
	)
}

// fencedCodeBlock reads an opening fence with an optional language tag and
// takes everything up to the next fence verbatim.
func fencedCodeBlock() c.Parser[Block] {
	language := c.Runes(c.Many(c.Char(func(r rune) bool { return r != '\n' })))
	opening := c.Left(c.Right(c.Literal(codeFence), language), c.Newline())
	closing := c.Or(c.Literal(codeFence+"\n"), c.Literal(codeFence))
	code := c.Left(c.TakeUntil(codeFence), closing)

	return c.Map(c.And(opening, code), func(p c.Pair[string, string]) Block {
		return FencedCodeBlock{
			Language: strings.TrimSpace(p.First),
			Code:     p.Second,
		}
	})
}

// heading accepts one to six hashes, exactly one space and a non-empty
// line of inline content.
func heading() c.Parser[Block] {
	hashes := c.Satisfy(
		c.Some(c.Char(func(r rune) bool { return r == '#' })),
		func(h []rune) bool { return len(h) <= maxHeadingLevel },
	)
	line := c.Right(c.Literal(" "), c.Line())
	inlines := Inlines()

	return func(input string) (Block, string, bool) {
		parsed, rest, ok := c.And(hashes, line)(input)
		if !ok {
			return nil, input, false
		}
		content, _, ok := inlines(parsed.Second)
		if !ok {
			return nil, input, false
		}
		return Heading{Level: len(parsed.First), Content: content}, rest, true
	}
}

// blockquote collects consecutive ">" lines, strips the markers and parses
// the reassembled text with the document grammar.
func blockquote() c.Parser[Block] {
	marker := c.And(c.Literal(">"), c.Many(c.Literal(" ")))
	lines := c.Some(c.Right(marker, c.Line()))

	return func(input string) (Block, string, bool) {
		quoted, rest, ok := lines(input)
		if !ok {
			return nil, input, false
		}

		var buf strings.Builder
		for _, line := range quoted {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}

		blocks, _, _ := c.Lazy(documentBlocks)(buf.String())
		if len(blocks) == 0 {
			return nil, input, false
		}
		return Blockquote{Blocks: blocks}, rest, true
	}
}

func isIndentRune(r rune) bool {
	return r == ' ' || r == '\t'
}

func indent() c.Parser[int] {
	return c.Map(c.Many(c.Char(isIndentRune)), func(rs []rune) int { return len(rs) })
}

func checkbox() c.Parser[*bool] {
	checked := c.Map(c.Literal("[x] "), func(string) *bool { v := true; return &v })
	unchecked := c.Map(c.Literal("[ ] "), func(string) *bool { v := false; return &v })
	return c.Choice(checked, unchecked, c.Id[*bool]())
}

// listItem parses indent and marker (via marker, which yields the indent),
// a space, an optional checkbox and the rest of the line as inline
// content. The line feed is required and inline content never spans it.
func listItem(marker c.Parser[int]) c.Parser[ListItem] {
	head := c.And(c.Left(marker, c.Literal(" ")), checkbox())
	inlines := Inlines()

	return func(input string) (ListItem, string, bool) {
		parsed, rest, ok := head(input)
		if !ok {
			return ListItem{}, input, false
		}
		line, rest, found := strings.Cut(rest, "\n")
		if !found {
			return ListItem{}, input, false
		}
		content, leftover, ok := inlines(line)
		if !ok || leftover != "" {
			return ListItem{}, input, false
		}
		return ListItem{
			Indent:  parsed.First,
			Checked: parsed.Second,
			Content: content,
		}, rest, true
	}
}

func list(kind ListKind, marker c.Parser[int]) c.Parser[Block] {
	return c.Map(c.Some(listItem(marker)), func(items []ListItem) Block {
		return List{Kind: kind, Items: items}
	})
}

func unorderedList() c.Parser[Block] {
	bullet := c.Choice(c.Literal("*"), c.Literal("-"), c.Literal("+"))
	return list(Unordered, c.Left(indent(), bullet))
}

func orderedList() c.Parser[Block] {
	number := c.And(c.Uint(), c.Literal("."))
	return list(Ordered, c.Left(indent(), number))
}

// paragraph consumes one run of inline content. It leaves the terminating
// line feed for the blank-line skipping of the document grammar.
func paragraph() c.Parser[Block] {
	return c.Map(Inlines(), func(content []Inline) Block {
		return Paragraph{Content: content}
	})
}
