package markdown

// Document is the root of a parsed body: blocks in source order.
type Document struct {
	Blocks []Block
}

// Block is a structural unit of a document. The set of implementations is
// closed: Heading, Paragraph, Blockquote, List, FencedCodeBlock and
// HorizontalRule.
type Block interface {
	block()
}

// Heading is an ATX heading. Level is always within 1..6.
type Heading struct {
	Level   int
	Content []Inline
}

// Paragraph is a run of inline content.
type Paragraph struct {
	Content []Inline
}

// Blockquote holds the blocks parsed from its stripped lines.
type Blockquote struct {
	Blocks []Block
}

// ListKind selects between bullet and numbered lists.
type ListKind int

const (
	Unordered ListKind = iota
	Ordered
)

func (k ListKind) String() string {
	if k == Ordered {
		return "ordered"
	}
	return "unordered"
}

// List is a homogeneous run of list items. Items keep their own indent;
// nesting is not represented in the tree.
type List struct {
	Kind  ListKind
	Items []ListItem
}

// ListItem is one list line. Checked is nil for plain items and points to
// the box state for task items.
type ListItem struct {
	Indent  int
	Checked *bool
	Content []Inline
}

// FencedCodeBlock holds verbatim code. Language is empty when the opening
// fence carries no tag.
type FencedCodeBlock struct {
	Language string
	Code     string
}

// HorizontalRule is a thematic break.
type HorizontalRule struct{}

func (Heading) block()         {}
func (Paragraph) block()       {}
func (Blockquote) block()      {}
func (List) block()            {}
func (FencedCodeBlock) block() {}
func (HorizontalRule) block()  {}

// Inline is a unit of text-level markup. The set of implementations is
// closed: Text, Strong, Italic, Strikethrough, Code, *Link and *Image.
// Link and Image are pointers so their URL can be rewritten in place.
type Inline interface {
	inline()
}

// Text is literal text.
type Text struct {
	Value string
}

// Strong is bold emphasis.
type Strong struct {
	Children []Inline
}

// Italic is single-delimiter emphasis.
type Italic struct {
	Children []Inline
}

// Strikethrough is text between double tildes.
type Strikethrough struct {
	Children []Inline
}

// Code is an inline code span; Value never contains parsed markup.
type Code struct {
	Value string
}

// Link covers explicit links, autolinks and wikilinks.
type Link struct {
	Text []Inline
	URL  string
}

// Image is an embedded image reference.
type Image struct {
	Alt string
	URL string
}

func (Text) inline()          {}
func (Strong) inline()        {}
func (Italic) inline()        {}
func (Strikethrough) inline() {}
func (Code) inline()          {}
func (*Link) inline()         {}
func (*Image) inline()        {}

// SourceDocument is the result of parsing one file. FrontMatter is nil when
// the file has no metadata block; Body is nil when the grammar could not
// consume the file.
type SourceDocument struct {
	Path        string
	FrontMatter map[string]string
	Body        *Document
}

// HasBody reports whether the body parsed.
func (d *SourceDocument) HasBody() bool {
	return d != nil && d.Body != nil
}
