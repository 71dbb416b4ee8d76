package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-biotite/cmd/biotite/internal/bootstrap"
	sitecmd "github.com/goliatone/go-biotite/internal/commands/site"
)

func newServeCmd(configPath *string) *cobra.Command {
	var outputDir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a previously built site",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := bootstrap.BuildModule(bootstrap.Options{ConfigPath: *configPath})
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = module.Config.Generator.OutputDir
			}
			if addr == "" {
				addr = module.Config.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Fprintf(cmd.OutOrStdout(), "serving %s on %s\n", outputDir, addr)
			err = module.Serve.Execute(ctx, sitecmd.ServeSiteCommand{
				OutputDir: outputDir,
				Addr:      addr,
			})
			if isInterrupted(ctx) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "directory holding the built site")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address")

	return cmd
}
