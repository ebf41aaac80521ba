package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"csvpack/internal/compiler"
	"csvpack/internal/fsio"
	"csvpack/internal/preview"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the compiled tables over HTTP for preview",
		Long: "Compiles the sources in memory and serves the result as HTML pages and JSON. " +
			"With preview.refresh set, sources are recompiled on that cron schedule; " +
			"a failed recompile keeps the previous tables online.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg := a.cfg.Preview
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			c := compiler.New(compiler.OptionsFromConfig(a.cfg), fsio.OS{}, a.logger)
			srv := preview.New(c, cfg, a.logger)

			// A broken first compile still serves /healthz so the error is visible.
			_ = srv.Refresh(ctx)

			if err := srv.Start(ctx); err != nil {
				return err
			}
			defer srv.Stop()

			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address; overrides preview.addr")

	return cmd
}
