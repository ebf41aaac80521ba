package encoding

import (
	"csvpack/internal/domain"
	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
)

// EncodeMatrix appends the matrix to w: column keys and row keys as sets,
// then every cell as a string in row-major order. Cells stay text on the
// wire; typing happens in the generated accessor. On a shape mismatch
// nothing the matrix appended is kept.
func EncodeMatrix(w *bytebuffer.Writer, m *schema.MatrixTable) (Section, error) {
	if len(m.Grid) != len(m.RowKeys) {
		return Section{}, domain.ErrSchema(m.Path, "matrix has %d row keys but %d grid rows", len(m.RowKeys), len(m.Grid))
	}

	start := w.Len()
	w.PutSet(m.ColumnKeys)
	w.PutSet(m.RowKeys)
	for r, row := range m.Grid {
		if len(row) != len(m.ColumnKeys) {
			w.Truncate(start)
			return Section{}, domain.ErrSchema(m.Path, "shape mismatch: row %q has %d values, expected %d", m.RowKeys[r], len(row), len(m.ColumnKeys))
		}
		for _, cell := range row {
			w.PutString(cell)
		}
	}
	return Section{Offset: start, Length: w.Len() - start, Rows: len(m.RowKeys)}, nil
}
