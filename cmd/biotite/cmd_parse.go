package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-biotite/internal/frontmatter"
	"github.com/goliatone/go-biotite/internal/markdown"
)

type parseOutput struct {
	Path        string            `json:"path"`
	FrontMatter map[string]string `json:"front_matter"`
	Meta        parseMeta         `json:"meta"`
	Parsed      bool              `json:"parsed"`
	Body        []map[string]any  `json:"body"`
}

type parseMeta struct {
	Publish   bool     `json:"publish"`
	Slug      string   `json:"slug"`
	SlugValid bool     `json:"slug_valid"`
	Title     string   `json:"title"`
	Tags      []string `json:"tags,omitempty"`
}

func newParseCmd() *cobra.Command {
	var compact bool

	cmd := &cobra.Command{
		Use:   "parse <file>",
		Short: "Parse a markdown note and dump its front matter and tree as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]
			data, err := os.ReadFile(filename)
			if err != nil {
				return fmt.Errorf("read markdown file: %w", err)
			}
			return writeParseOutput(cmd.OutOrStdout(), markdown.Parse(filename, string(data)), compact)
		},
	}

	cmd.Flags().BoolVar(&compact, "compact", false, "emit JSON without indentation")

	return cmd
}

func writeParseOutput(w io.Writer, doc *markdown.SourceDocument, compact bool) error {
	meta := frontmatter.FromDocument(doc)
	out := parseOutput{
		Path:        doc.Path,
		FrontMatter: doc.FrontMatter,
		Meta: parseMeta{
			Publish:   meta.Publish,
			Slug:      meta.Slug,
			SlugValid: meta.SlugValid(),
			Title:     meta.Title,
			Tags:      meta.Tags,
		},
		Parsed: doc.HasBody(),
		Body:   markdown.Dump(doc.Body),
	}

	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
