package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"csvpack/internal/compiler"
	"csvpack/internal/fsio"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [table]",
		Short: "Decode the written store and list its tables, or dump one table",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := compiler.LoadSnapshot(fsio.OS{}, compiler.OptionsFromConfig(a.cfg))
			if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			if len(args) == 0 {
				return printTables(cmd, snap)
			}
			t, ok := snap.Table(args[0])
			if !ok {
				return fmt.Errorf("table %q not found in %s", args[0], a.cfg.Output.ManifestFile)
			}
			if t.Matrix != nil {
				return printMatrix(cmd, t)
			}
			return printRows(cmd, snap, t)
		},
	}
}

func printTables(cmd *cobra.Command, snap *compiler.Snapshot) error {
	rows := make([][]string, 0, len(snap.Tables))
	tables := make([]map[string]any, 0, len(snap.Tables))
	for i := range snap.Tables {
		t := &snap.Tables[i]
		rows = append(rows, []string{
			t.Name, t.Kind, strconv.Itoa(t.Rows), strconv.Itoa(t.Offset), strconv.Itoa(t.Length), t.KeyField, t.Source,
		})
		tables = append(tables, map[string]any{
			"name": t.Name, "kind": t.Kind, "rows": t.Rows, "offset": t.Offset,
			"length": t.Length, "key_field": t.KeyField, "source": t.Source,
		})
	}
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"run_id":  snap.Manifest.RunID,
			"size":    snap.Manifest.Size,
			"strings": snap.Manifest.Strings,
			"tables":  tables,
		})
	}
	return printTable(cmd.OutOrStdout(), []string{"table", "kind", "rows", "offset", "length", "key", "source"}, rows)
}

func printRows(cmd *cobra.Command, snap *compiler.Snapshot, t *compiler.TableData) error {
	header := make([]string, 0, len(t.Fields)+len(t.Localized))
	for _, f := range t.Fields {
		header = append(header, f.Name)
	}
	for _, l := range t.Localized {
		header = append(header, l.Field)
	}

	rows := make([][]string, 0, len(t.Records))
	records := make([]map[string]any, 0, len(t.Records))
	for _, rec := range t.Records {
		row := make([]string, 0, len(header))
		obj := make(map[string]any, len(header))
		for i, v := range rec {
			row = append(row, formatValue(v))
			obj[t.Fields[i].Name] = v
		}
		for i, s := range snap.Localized(t, rec) {
			row = append(row, s)
			obj[t.Localized[i].Field] = s
		}
		rows = append(rows, row)
		records = append(records, obj)
	}

	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"table":   t.Name,
			"columns": header,
			"records": records,
		})
	}
	return printTable(cmd.OutOrStdout(), header, rows)
}

func printMatrix(cmd *cobra.Command, t *compiler.TableData) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(cmd.OutOrStdout(), map[string]any{
			"table":       t.Name,
			"column_keys": t.Matrix.ColumnKeys,
			"row_keys":    t.Matrix.RowKeys,
			"grid":        t.Matrix.Grid,
		})
	}
	header := append([]string{""}, t.Matrix.ColumnKeys...)
	rows := make([][]string, 0, len(t.Matrix.RowKeys))
	for i, rowKey := range t.Matrix.RowKeys {
		rows = append(rows, append([]string{rowKey}, t.Matrix.Grid[i]...))
	}
	return printTable(cmd.OutOrStdout(), header, rows)
}
