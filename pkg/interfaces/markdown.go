package interfaces

// MarkdownParser converts note text, front matter included, into HTML.
type MarkdownParser interface {
	Parse(markdown []byte) ([]byte, error)
}
