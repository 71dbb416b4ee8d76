package interfaces

import "io"

// TemplateRenderer executes named templates. Implementations return the
// rendered text and additionally write it to any writers supplied.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}
