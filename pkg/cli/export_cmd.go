package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"csvpack/internal/compiler"
	"csvpack/internal/export"
	"csvpack/internal/fsio"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export compiled tables to other formats",
	}
	cmd.AddCommand(newExportSQLiteCmd(a))
	return cmd
}

func newExportSQLiteCmd(a *app) *cobra.Command {
	var fresh bool

	cmd := &cobra.Command{
		Use:   "sqlite <path>",
		Short: "Copy the compiled tables into a SQLite database",
		Long: "Loads the written store through its manifest and copies every table into the " +
			"SQLite file at path. Row tables become row_<table>, matrices matrix_<table>. " +
			"With --compile the sources are compiled in memory instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := compiler.OptionsFromConfig(a.cfg)

			var snap *compiler.Snapshot
			var err error
			if fresh {
				var res *compiler.Result
				res, err = compiler.New(opts, fsio.OS{}, a.logger).Run(cmd.Context())
				if err == nil {
					snap, err = res.Snapshot()
				}
			} else {
				snap, err = compiler.LoadSnapshot(fsio.OS{}, opts)
			}
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			stats, err := export.ToFile(cmd.Context(), args[0], snap, a.logger)
			if err != nil {
				return fmt.Errorf("export sqlite: %w", err)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"path":    args[0],
					"run_id":  snap.Manifest.RunID,
					"tables":  stats.Tables,
					"rows":    stats.Rows,
					"strings": stats.Strings,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tables (%d rows, %d strings) to %s\n",
				stats.Tables, stats.Rows, stats.Strings, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&fresh, "compile", false, "Compile the sources instead of reading the written store")

	return cmd
}
