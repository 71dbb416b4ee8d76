package render

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/goliatone/go-biotite/pkg/interfaces"
)

// PageTemplate is the name of the layout every page is rendered with.
const PageTemplate = "page"

//go:embed templates/*.html
var defaultTemplates embed.FS

var errTemplateNameRequired = errors.New("render: template name is required")

// PageData is the value handed to the page template.
type PageData struct {
	Title string
	Tags  []string
	Lang  string
	Path  string
	// Body is trusted markup produced by Document.
	Body template.HTML
}

// Templates renders named html/template definitions.
type Templates struct {
	set *template.Template
}

var _ interfaces.TemplateRenderer = (*Templates)(nil)

// NewTemplates parses the built-in layout and then, when overrides is
// non-nil, every *.html file in it. Overrides may redefine "page".
func NewTemplates(overrides fs.FS) (*Templates, error) {
	set, err := template.ParseFS(defaultTemplates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("render: parse built-in templates: %w", err)
	}
	if overrides != nil {
		matches, err := fs.Glob(overrides, "*.html")
		if err != nil {
			return nil, fmt.Errorf("render: list template overrides: %w", err)
		}
		if len(matches) > 0 {
			if set, err = set.ParseFS(overrides, matches...); err != nil {
				return nil, fmt.Errorf("render: parse template overrides: %w", err)
			}
		}
	}
	return &Templates{set: set}, nil
}

// Render executes the template called name. The output is returned and
// also copied to every writer in out.
func (t *Templates) Render(name string, data any, out ...io.Writer) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errTemplateNameRequired
	}

	var buf bytes.Buffer
	if err := t.set.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render: execute %s: %w", name, err)
	}

	for _, w := range out {
		if w == nil {
			continue
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return "", fmt.Errorf("render: write %s: %w", name, err)
		}
	}
	return buf.String(), nil
}
