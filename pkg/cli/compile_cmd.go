package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"csvpack/internal/compiler"
	"csvpack/internal/fsio"
	"csvpack/internal/publish"
)

type artifactView struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
}

func newCompileCmd(a *app) *cobra.Command {
	var (
		target    string
		noPublish bool
	)

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile the source tables and write the store, strings and Go sources",
		Long: "Reads every table, matrix and strings override, then writes the binary store, " +
			"the strings file, the manifest and the generated Go package. Nothing is written " +
			"unless every source compiles. With a publish target the artifacts are uploaded afterwards.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			c := compiler.New(compiler.OptionsFromConfig(a.cfg), fsio.OS{}, a.logger)
			res, arts, err := c.Compile(ctx)
			if err != nil {
				return fmt.Errorf("compile: %w", err)
			}

			pubCfg := a.cfg.Publish
			if cmd.Flags().Changed("publish") {
				pubCfg.Target = target
			}
			location := ""
			if pubCfg.Target != "" && !noPublish {
				p, err := publish.New(ctx, pubCfg)
				if err != nil {
					return err
				}
				objects := make([]publish.Object, 0, len(arts))
				for _, art := range arts {
					objects = append(objects, publish.Object{Key: publish.ObjectKey(".", art.Path), Data: art.Data})
				}
				if err := publish.All(ctx, p, objects, pubCfg.Concurrency, a.logger); err != nil {
					return err
				}
				location = p.Location()
			}

			views := make([]artifactView, 0, len(arts))
			for _, art := range arts {
				views = append(views, artifactView{Path: art.Path, Bytes: len(art.Data)})
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"run_id":    res.RunID,
					"tables":    len(res.Manifest.Tables),
					"artifacts": views,
					"published": location,
				})
			}

			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, []string{v.Path, strconv.Itoa(v.Bytes)})
			}
			if err := printTable(cmd.OutOrStdout(), []string{"artifact", "bytes"}, rows); err != nil {
				return err
			}
			if location != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Published %d artifacts to %s\n", len(arts), location)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "publish", "", "Publish target URL (s3://, gs://, az:// or file://); overrides publish.target")
	cmd.Flags().BoolVar(&noPublish, "no-publish", false, "Skip publishing even when a target is configured")

	return cmd
}
