package sitecmd

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-biotite/internal/commands"
	"github.com/goliatone/go-biotite/internal/generator"
	"github.com/goliatone/go-biotite/internal/logging"
	"github.com/goliatone/go-biotite/pkg/interfaces"
)

var errServerUnavailable = errors.New("sitecmd: server factory is required")

// ServiceFactory builds a generator for a content and output directory
// pair.
type ServiceFactory func(contentDir, outputDir string) (generator.Service, error)

// Runner serves a site until its context is cancelled.
type Runner interface {
	ListenAndServe(ctx context.Context) error
}

// ServerFactory builds a Runner for an output directory. A blank addr
// selects the server default.
type ServerFactory func(outputDir, addr string) (Runner, error)

// BuildSiteHandler runs generator builds through the shared command
// handler.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildSiteCommand]
}

// NewBuildSiteHandler wires builds to factory. When serve is non-nil,
// messages with Serve set hand the output directory to it after a
// successful build. Builds have no timeout unless opts set one.
func NewBuildSiteHandler(factory ServiceFactory, serve *ServeSiteHandler, logger interfaces.Logger, opts ...commands.HandlerOption[BuildSiteCommand]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildSiteCommand) error {
		if factory == nil {
			return generator.ErrServiceDisabled
		}
		service, err := factory(strings.TrimSpace(msg.ContentDir), strings.TrimSpace(msg.OutputDir))
		if err != nil {
			return err
		}

		result, err := service.Build(ctx, generator.BuildOptions{DryRun: msg.DryRun})
		if msg.ResultCallback != nil && result != nil {
			msg.ResultCallback(result)
		}
		if err != nil {
			return err
		}

		if msg.Serve && serve != nil {
			return serve.Execute(ctx, ServeSiteCommand{OutputDir: msg.OutputDir, Addr: msg.Addr})
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildSiteCommand]{
		commands.WithLogger[BuildSiteCommand](baseLogger),
		commands.WithOperation[BuildSiteCommand]("site.build"),
		commands.WithTimeout[BuildSiteCommand](0),
		commands.WithMessageFields(func(msg BuildSiteCommand) map[string]any {
			fields := map[string]any{
				"content_dir": msg.ContentDir,
				"output_dir":  msg.OutputDir,
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.Serve {
				fields["serve"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildSiteCommand].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ServeSiteHandler serves an output directory until the context ends.
type ServeSiteHandler struct {
	inner *commands.Handler[ServeSiteCommand]
}

// NewServeSiteHandler wires serving to factory. Serving has no timeout
// unless opts set one; a stop caused by cancelling ctx is reported as a
// context error.
func NewServeSiteHandler(factory ServerFactory, logger interfaces.Logger, opts ...commands.HandlerOption[ServeSiteCommand]) *ServeSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ServeSiteCommand) error {
		if factory == nil {
			return errServerUnavailable
		}
		runner, err := factory(strings.TrimSpace(msg.OutputDir), strings.TrimSpace(msg.Addr))
		if err != nil {
			return err
		}
		return runner.ListenAndServe(ctx)
	}

	handlerOpts := []commands.HandlerOption[ServeSiteCommand]{
		commands.WithLogger[ServeSiteCommand](baseLogger),
		commands.WithOperation[ServeSiteCommand]("site.serve"),
		commands.WithTimeout[ServeSiteCommand](0),
		commands.WithMessageFields(func(msg ServeSiteCommand) map[string]any {
			return map[string]any{
				"output_dir": msg.OutputDir,
				"addr":       msg.Addr,
			}
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ServeSiteCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ServeSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ServeSiteCommand].
func (h *ServeSiteHandler) Execute(ctx context.Context, msg ServeSiteCommand) error {
	return h.inner.Execute(ctx, msg)
}
