// Package export copies a decoded store into SQLite for ad-hoc queries.
package export

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"csvpack/internal/compiler"
	"csvpack/internal/db"
)

// Stats counts what an export wrote.
type Stats struct {
	Tables  int
	Rows    int
	Strings int
}

// === Column Types ===

var sqliteTypes = map[string]string{
	"int":    "INTEGER",
	"long":   "INTEGER",
	"bool":   "INTEGER",
	"double": "REAL",
	"string": "TEXT",
	"set":    "TEXT", // JSON array
}

// DataTable returns the SQLite table holding the rows of t.
func DataTable(t compiler.TableEntry) string {
	if t.Kind == compiler.KindMatrix {
		return "matrix_" + t.Name
	}
	return "row_" + t.Name
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// ToFile exports snap into the SQLite file at path, creating and migrating
// it as needed.
func ToFile(ctx context.Context, path string, snap *compiler.Snapshot, logger *slog.Logger) (Stats, error) {
	conn, err := db.OpenSQLite(ctx, path)
	if err != nil {
		return Stats{}, err
	}
	defer conn.Close() //nolint:errcheck

	if _, err := db.RunMigrations(ctx, conn); err != nil {
		return Stats{}, err
	}
	stats, err := Export(ctx, conn, snap)
	if err != nil {
		return Stats{}, err
	}
	if logger != nil {
		logger.Info("sqlite export finished", "path", path, "run_id", snap.Manifest.RunID,
			"tables", stats.Tables, "rows", stats.Rows, "strings", stats.Strings)
	}
	return stats, nil
}

// Export writes snap into a migrated database in one transaction. Data
// tables are replaced; metadata of earlier runs is kept.
func Export(ctx context.Context, conn *sql.DB, snap *compiler.Snapshot) (stats Stats, err error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Stats{}, fmt.Errorf("begin export: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	m := snap.Manifest
	if _, err = tx.ExecContext(ctx, `DELETE FROM csvpack_runs WHERE run_id = ?`, m.RunID); err != nil {
		return Stats{}, fmt.Errorf("clear run %s: %w", m.RunID, err)
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO csvpack_runs (run_id, generated_at, package, facade, size, strings) VALUES (?, ?, ?, ?, ?, ?)`,
		m.RunID, m.GeneratedAt.UTC().Format(time.RFC3339Nano), m.Package, m.Facade, m.Size, m.Strings,
	); err != nil {
		return Stats{}, fmt.Errorf("insert run: %w", err)
	}

	for i := range snap.Tables {
		t := &snap.Tables[i]
		if err = insertMetadata(ctx, tx, m.RunID, i, t); err != nil {
			return Stats{}, err
		}
		var n int
		if t.Matrix != nil {
			n, err = writeMatrix(ctx, tx, t)
		} else {
			n, err = writeRows(ctx, tx, snap, t)
		}
		if err != nil {
			return Stats{}, err
		}
		stats.Tables++
		stats.Rows += n
	}

	if stats.Strings, err = writeStrings(ctx, tx, m.RunID, snap); err != nil {
		return Stats{}, err
	}

	if err = tx.Commit(); err != nil {
		return Stats{}, fmt.Errorf("commit export: %w", err)
	}
	return stats, nil
}

func insertMetadata(ctx context.Context, tx *sql.Tx, runID string, position int, t *compiler.TableData) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO csvpack_tables (run_id, name, position, kind, source, byte_offset, byte_length, row_count, key_field, role, data_table)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, t.Name, position, t.Kind, t.Source, t.Offset, t.Length, t.Rows,
		nullable(t.KeyField), nullable(t.Role), DataTable(t.TableEntry),
	)
	if err != nil {
		return fmt.Errorf("insert table %s: %w", t.Name, err)
	}

	pos := 0
	for _, f := range t.Fields {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO csvpack_fields (run_id, table_name, position, name, type, token, localized) VALUES (?, ?, ?, ?, ?, ?, 0)`,
			runID, t.Name, pos, f.Name, f.Type, f.Token,
		); err != nil {
			return fmt.Errorf("insert field %s.%s: %w", t.Name, f.Name, err)
		}
		pos++
	}
	for _, l := range t.Localized {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO csvpack_fields (run_id, table_name, position, name, type, token, localized) VALUES (?, ?, ?, ?, 'string', 'name', 1)`,
			runID, t.Name, pos, l.Field,
		); err != nil {
			return fmt.Errorf("insert field %s.%s: %w", t.Name, l.Field, err)
		}
		pos++
	}
	return nil
}

func writeRows(ctx context.Context, tx *sql.Tx, snap *compiler.Snapshot, t *compiler.TableData) (int, error) {
	table := quoteIdent(DataTable(t.TableEntry))
	var cols, defs []string
	for _, f := range t.Fields {
		typ, ok := sqliteTypes[f.Type]
		if !ok {
			return 0, fmt.Errorf("table %s: field %s has no SQLite type for %q", t.Name, f.Name, f.Type)
		}
		cols = append(cols, quoteIdent(f.Name))
		defs = append(defs, quoteIdent(f.Name)+" "+typ)
	}
	for _, l := range t.Localized {
		cols = append(cols, quoteIdent(l.Field))
		defs = append(defs, quoteIdent(l.Field)+" TEXT")
	}

	if err := recreate(ctx, tx, table, defs); err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")))
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", table, err)
	}
	defer stmt.Close() //nolint:errcheck

	for i, rec := range t.Records {
		args := make([]any, 0, len(cols))
		for _, v := range rec {
			arg, err := sqlValue(v)
			if err != nil {
				return 0, fmt.Errorf("table %s row %d: %w", t.Name, i, err)
			}
			args = append(args, arg)
		}
		for _, s := range snap.Localized(t, rec) {
			args = append(args, s)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return len(t.Records), nil
}

func writeMatrix(ctx context.Context, tx *sql.Tx, t *compiler.TableData) (int, error) {
	table := quoteIdent(DataTable(t.TableEntry))
	if err := recreate(ctx, tx, table, []string{
		"row_key TEXT NOT NULL",
		"column_key TEXT NOT NULL",
		"value TEXT NOT NULL",
		"PRIMARY KEY (row_key, column_key)",
	}); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO "+table+" (row_key, column_key, value) VALUES (?, ?, ?)")
	if err != nil {
		return 0, fmt.Errorf("prepare %s: %w", table, err)
	}
	defer stmt.Close() //nolint:errcheck

	n := 0
	for i, rowKey := range t.Matrix.RowKeys {
		for j, colKey := range t.Matrix.ColumnKeys {
			if _, err := stmt.ExecContext(ctx, rowKey, colKey, t.Matrix.Grid[i][j]); err != nil {
				return 0, fmt.Errorf("insert into %s: %w", table, err)
			}
			n++
		}
	}
	return n, nil
}

func writeStrings(ctx context.Context, tx *sql.Tx, runID string, snap *compiler.Snapshot) (int, error) {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO csvpack_strings (run_id, name, value) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare strings: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	keys := snap.Strings.Keys()
	for _, k := range keys {
		v, _ := snap.Strings.Lookup(k)
		if _, err := stmt.ExecContext(ctx, runID, k, v); err != nil {
			return 0, fmt.Errorf("insert string %q: %w", k, err)
		}
	}
	return len(keys), nil
}

func recreate(ctx context.Context, tx *sql.Tx, table string, defs []string) error {
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop %s: %w", table, err)
	}
	if len(defs) == 0 {
		defs = []string{"_empty INTEGER"}
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

func sqlValue(v any) (any, error) {
	switch v := v.(type) {
	case []string:
		if v == nil {
			v = []string{}
		}
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case bool:
		if v {
			return int64(1), nil
		}
		return int64(0), nil
	case int32, int64, float64, string:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported value %T", v)
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
