package generator

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"github.com/goliatone/go-biotite/internal/frontmatter"
	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/internal/markdown"
	"github.com/goliatone/go-biotite/internal/render"
)

// Reasons recorded on skipped diagnostics.
const (
	SkipUnpublished  = "unpublished"
	SkipParseFailed  = "parse_failed"
	SkipMissingImage = "missing_image"
)

// RenderedPage is one HTML page produced by a build.
type RenderedPage struct {
	Source   string
	Slug     string
	Title    string
	Tags     []string
	Route    string
	Output   string
	HTML     string
	Checksum string
	Duration time.Duration
}

// RenderDiagnostic records the outcome for a single source document.
type RenderDiagnostic struct {
	Source   string
	Slug     string
	Duration time.Duration
	Skipped  bool
	Reason   string
	Err      error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}

// skipReason reports why doc is not part of the site, or "" when it is.
func skipReason(doc *markdown.SourceDocument) string {
	switch {
	case !doc.HasBody():
		return SkipParseFailed
	case !frontmatter.FromDocument(doc).Publish:
		return SkipUnpublished
	default:
		return ""
	}
}

func skippedOutcome(doc *markdown.SourceDocument, reason string) renderOutcome {
	return renderOutcome{
		skipped: true,
		diagnostic: RenderDiagnostic{
			Source:  doc.Path,
			Slug:    frontmatter.FromDocument(doc).Slug,
			Skipped: true,
			Reason:  reason,
		},
	}
}

func (s *service) renderDocument(ctx context.Context, doc *markdown.SourceDocument, images *imageCopier) renderOutcome {
	meta := frontmatter.FromDocument(doc)
	outcome := renderOutcome{
		diagnostic: RenderDiagnostic{Source: doc.Path, Slug: meta.Slug},
	}
	logger := logging.WithDocumentContext(s.logger, doc.Path, "render")

	if err := ctx.Err(); err != nil {
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}

	route := pageRoute(meta.Slug)
	if route == "" {
		err := fmt.Errorf("generator: %s resolves to an empty slug: %w", doc.Path, errSlugRequired)
		outcome.err = err
		outcome.diagnostic.Err = err
		return outcome
	}
	if !meta.SlugValid() {
		args := []any{"slug", meta.Slug}
		if suggested, err := frontmatter.SuggestSlug(meta.Slug); err == nil && suggested != "" {
			args = append(args, "suggested_slug", suggested)
		}
		logger.Warn("generator.build.slug_nonconforming", args...)
	}

	if err := images.localize(ctx, doc); err != nil {
		outcome.diagnostic.Err = err
		if errors.Is(err, ErrImageNotFound) {
			logger.Warn("generator.build.page_skipped", "reason", SkipMissingImage, "error", err)
			outcome.skipped = true
			outcome.diagnostic.Skipped = true
			outcome.diagnostic.Reason = SkipMissingImage
			return outcome
		}
		outcome.err = err
		return outcome
	}

	start := s.now()
	html, err := s.deps.Renderer.Render(render.PageTemplate, render.PageData{
		Title: meta.Title,
		Tags:  meta.Tags,
		Lang:  s.cfg.Language,
		Path:  route,
		Body:  template.HTML(render.Document(doc.Body)),
	})
	duration := s.now().Sub(start)
	outcome.diagnostic.Duration = duration
	if err != nil {
		wrapped := fmt.Errorf("generator: render %s: %w", doc.Path, err)
		outcome.err = wrapped
		outcome.diagnostic.Err = wrapped
		return outcome
	}

	outcome.page = RenderedPage{
		Source:   doc.Path,
		Slug:     meta.Slug,
		Title:    meta.Title,
		Tags:     meta.Tags,
		Route:    route,
		Output:   pageOutputPath(route),
		HTML:     html,
		Checksum: computeHashFromString(html),
		Duration: duration,
	}
	return outcome
}
