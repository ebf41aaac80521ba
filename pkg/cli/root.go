// Package cli implements the csvpack command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"csvpack/internal/config"
	"csvpack/internal/domain"
)

var (
	version = "dev"
	commit  = "none"
)

const defaultConfigFile = "csvpack.yaml"

// app carries what PersistentPreRunE resolved for the subcommands.
type app struct {
	configPath string
	envFile    string
	logLevel   string
	output     string

	cfg    *config.Config
	logger *slog.Logger
}

// Execute runs the CLI.
func Execute() int {
	return execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	rootCmd := newRootCmd(stderr)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			errObj := map[string]any{"error": err.Error()}
			if kind := errorKind(err); kind != "" {
				errObj["kind"] = kind
			}
			_ = printJSON(stdout, errObj)
		} else {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// errorKind names the domain error class behind err, if any.
func errorKind(err error) string {
	var (
		schemaErr     *domain.SchemaError
		constraintErr *domain.ConstraintError
		ioErr         *domain.IOError
		formatErr     *domain.FormatError
	)
	switch {
	case errors.As(err, &schemaErr):
		return "schema"
	case errors.As(err, &constraintErr):
		return "constraint"
	case errors.As(err, &formatErr):
		return "format"
	case errors.As(err, &ioErr):
		return "io"
	default:
		return ""
	}
}

func newRootCmd(logOut io.Writer) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "csvpack",
		Short:         "Compile CSV/TSV game data into a binary store and Go accessors",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(a.output); err != nil {
				return err
			}
			if err := config.LoadDotEnv(a.envFile); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}

			path := a.configPath
			if !cmd.Flags().Changed("config") {
				if v := os.Getenv(config.EnvPrefix + "CONFIG"); v != "" {
					path = v
				} else if _, err := os.Stat(path); err != nil {
					path = ""
				}
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				cfg.Log.Level = a.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			a.cfg = cfg
			a.logger = newLogger(logOut, cfg)
			for _, w := range cfg.Warnings {
				a.logger.Warn(w)
			}
			a.logger.Debug("config loaded", "path", path)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", defaultConfigFile, "Path to the csvpack YAML config")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Optional KEY=VALUE file applied before the environment")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newCompileCmd(a))
	rootCmd.AddCommand(newInspectCmd(a))
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newExportCmd(a))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newLogger builds the process logger. Format "auto" picks text output
// when w is a terminal.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	switch strings.ToLower(cfg.Log.Format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts))
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
