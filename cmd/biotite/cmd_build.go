package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-biotite/cmd/biotite/internal/bootstrap"
	sitecmd "github.com/goliatone/go-biotite/internal/commands/site"
	"github.com/goliatone/go-biotite/internal/generator"
)

func newBuildCmd(configPath *string) *cobra.Command {
	var contentDir string
	var outputDir string
	var addr string
	var dryRun bool
	var serve bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render published notes into a static site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			if contentDir == "" {
				contentDir = module.Config.Site.ContentDir
			}
			if outputDir == "" {
				outputDir = module.Config.Generator.OutputDir
			}
			if addr == "" {
				addr = module.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			err = module.Build.Execute(ctx, sitecmd.BuildSiteCommand{
				ContentDir: contentDir,
				OutputDir:  outputDir,
				DryRun:     dryRun,
				Serve:      serve,
				Addr:       addr,
				ResultCallback: func(result *generator.BuildResult) {
					printBuildSummary(out, result)
				},
			})
			if serve && isInterrupted(ctx) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&contentDir, "directory", "d", "", "directory containing the markdown notes")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory the site is written to")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address used with --serve")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "render without writing files")
	cmd.Flags().BoolVar(&serve, "serve", false, "serve the site after building")

	return cmd
}

func printBuildSummary(w io.Writer, result *generator.BuildResult) {
	if result == nil {
		return
	}
	mode := "built"
	if result.DryRun {
		mode = "dry run"
	}
	fmt.Fprintf(w, "%s %d pages (%d unchanged, %d skipped) from %d sources into %s in %s\n",
		mode,
		result.PagesBuilt,
		result.PagesUnchanged,
		result.PagesSkipped,
		result.SourcesFound,
		result.OutputDir,
		result.Duration,
	)
	if result.ImagesCopied > 0 {
		fmt.Fprintf(w, "copied %d images\n", result.ImagesCopied)
	}
	for _, diag := range result.Diagnostics {
		if !diag.Skipped {
			continue
		}
		fmt.Fprintf(w, "  skipped %s: %s\n", diag.Source, diag.Reason)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(w, "  error: %v\n", err)
	}
}

// isInterrupted reports whether a signal ended the command. Serving stops
// this way, so it is not treated as a failure.
func isInterrupted(ctx context.Context) bool {
	return ctx.Err() != nil
}
