// Package encoding writes parsed tables into the shared binary store and
// reads them back generically for tooling and verification.
package encoding

import (
	"fmt"

	"csvpack/internal/domain"
	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
)

// StringSink receives the localized cells of a row table.
type StringSink interface {
	Set(key, value string)
}

// Section locates one table inside the binary store.
type Section struct {
	Offset int
	Length int
	Rows   int
}

// EncodeTable appends the table to w as a 4-byte row count followed by one
// record per row. Localized cells go to sink instead of w. On error every
// byte the table appended is removed again.
func EncodeTable(w *bytebuffer.Writer, t *schema.Table, sink StringSink) (sec Section, err error) {
	s := t.Schema
	start := w.Len()
	defer func() {
		if err != nil {
			w.Truncate(start)
		}
	}()

	w.PutInt(0) // row count, patched below

	unique := s.Role() == schema.Key
	localized := len(s.Localized()) > 0
	seen := make(map[string]int, len(t.Rows))
	for _, row := range t.Rows {
		if len(row.Cells) != len(s.Fields) {
			return Section{}, domain.ErrSchema(s.Path, "line %d has %d cells, header declares %d", row.Line, len(row.Cells), len(s.Fields))
		}

		key := row.Cells[s.KeyIndex]
		if key == "" && localized {
			return Section{}, domain.ErrSchema(s.Path, "line %d: empty key on a row with localized columns", row.Line)
		}
		if unique {
			if first, dup := seen[key]; dup {
				return Section{}, domain.ErrConstraint(s.Path, "line %d: duplicate key %q (first seen on line %d)", row.Line, key, first)
			}
			seen[key] = row.Line
		}

		for _, f := range s.Fields {
			cell := row.Cells[f.Column]
			if f.Localized != nil {
				if sink != nil {
					sink.Set(f.Localized.Key(key), cell)
				}
				continue
			}
			if !f.Encoded() {
				continue
			}
			if err := putCell(w, f.Type, cell); err != nil {
				return Section{}, domain.ErrSchema(s.Path, "line %d, column %q: %v", row.Line, f.Name, err)
			}
		}
	}

	if err := w.PutIntAt(start, int32(len(t.Rows))); err != nil {
		return Section{}, fmt.Errorf("patch row count: %w", err)
	}
	return Section{Offset: start, Length: w.Len() - start, Rows: len(t.Rows)}, nil
}

func putCell(w *bytebuffer.Writer, t schema.FieldType, cell string) error {
	v, err := schema.Coerce(t, cell)
	if err != nil {
		return err
	}
	switch v := v.(type) {
	case int32:
		w.PutInt(v)
	case int64:
		w.PutLong(v)
	case float64:
		w.PutDouble(v)
	case bool:
		w.PutBool(v)
	case string:
		w.PutString(v)
	case []string:
		w.PutSet(v)
	default:
		return fmt.Errorf("unsupported value %T", v)
	}
	return nil
}
