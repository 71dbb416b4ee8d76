package render

import (
	"errors"

	"github.com/goliatone/go-biotite/internal/markdown"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// ErrUnparsable is returned when a note body cannot be consumed by the
// grammar.
var ErrUnparsable = errors.New("render: markdown body could not be parsed")

// MarkdownParser renders note text straight to HTML, dropping front matter.
type MarkdownParser struct{}

var _ interfaces.MarkdownParser = MarkdownParser{}

// Parse implements interfaces.MarkdownParser.
func (MarkdownParser) Parse(text []byte) ([]byte, error) {
	doc := markdown.Parse("", string(text))
	if !doc.HasBody() {
		return nil, ErrUnparsable
	}
	return []byte(Document(doc.Body)), nil
}
