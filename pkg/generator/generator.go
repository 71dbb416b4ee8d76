// Package generator exposes the static site build API for biotite hosts.
// Use NewService with Config and Dependencies to render published notes into
// an output directory.
package generator

import internal "github.com/goliatone/go-biotite/internal/generator"

type (
	Service          = internal.Service
	Config           = internal.Config
	BuildOptions     = internal.BuildOptions
	BuildResult      = internal.BuildResult
	RenderedPage     = internal.RenderedPage
	RenderDiagnostic = internal.RenderDiagnostic
	Dependencies     = internal.Dependencies
	Hooks            = internal.Hooks
)

// Skip reasons reported in RenderDiagnostic.Reason.
const (
	SkipUnpublished  = internal.SkipUnpublished
	SkipParseFailed  = internal.SkipParseFailed
	SkipMissingImage = internal.SkipMissingImage
)

var (
	ErrImageNotFound   = internal.ErrImageNotFound
	ErrServiceDisabled = internal.ErrServiceDisabled
)

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
