package schema

import "csvpack/internal/domain"

// MatrixTable is a two-axis keyed grid of strings.
//
//	row 0: function name, column parameter, column keys...
//	row 1: row parameter, value type token
//	row n: row key, label (ignored), one value per column key
type MatrixTable struct {
	Name           string
	Path           string
	FunctionName   string
	ColumnParam    string
	RowParam       string
	ValueTypeToken string
	ValueType      FieldType // Unresolved means the accessor returns the raw string
	ColumnKeys     []string
	RowKeys        []string
	Grid           [][]string // len(RowKeys) rows of len(ColumnKeys) cells
}

// ReadMatrix parses and validates a matrix table.
func ReadMatrix(path string, data []byte, lattice *Lattice) (*MatrixTable, error) {
	lines := SplitLines(string(data))
	if len(lines) < 2 {
		return nil, domain.ErrSchema(path, "matrix table needs two header rows, found %d rows", len(lines))
	}

	head := SplitCells(lines[0])
	if len(head) < 2 {
		return nil, domain.ErrSchema(path, "matrix header needs a function name and a column parameter")
	}
	typeRow := SplitCells(lines[1])
	if len(typeRow) < 2 {
		return nil, domain.ErrSchema(path, "matrix type row needs a row parameter and a value type")
	}

	m := &MatrixTable{
		Name:           TableName(path),
		Path:           path,
		FunctionName:   StripHeader(head[0]),
		ColumnParam:    StripHeader(head[1]),
		RowParam:       StripHeader(typeRow[0]),
		ValueTypeToken: StripHeader(typeRow[1]),
	}
	m.ValueType = lattice.Resolve(m.ValueTypeToken)
	m.ColumnKeys = append(m.ColumnKeys, head[2:]...)

	for i, line := range lines[2:] {
		cells := SplitCells(line)
		if len(cells) < 2 {
			return nil, domain.ErrSchema(path, "line %d: matrix row needs a row key and a label", i+3)
		}
		m.RowKeys = append(m.RowKeys, cells[0])
		m.Grid = append(m.Grid, cells[2:])
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks identifiers, axis uniqueness, grid shape, and that every
// cell coerces under the declared value type.
func (m *MatrixTable) Validate() error {
	for _, id := range []struct{ what, name string }{
		{"function name", m.FunctionName},
		{"column parameter", m.ColumnParam},
		{"row parameter", m.RowParam},
	} {
		if !IsIdentifier(id.name) {
			return domain.ErrSchema(m.Path, "matrix %s %q is not a valid identifier", id.what, id.name)
		}
	}
	if m.ColumnParam == m.RowParam {
		return domain.ErrSchema(m.Path, "matrix column and row parameters are both %q", m.RowParam)
	}

	if err := uniqueAxis(m.Path, "column", m.ColumnKeys); err != nil {
		return err
	}
	if err := uniqueAxis(m.Path, "row", m.RowKeys); err != nil {
		return err
	}
	if len(m.Grid) != len(m.RowKeys) {
		return domain.ErrSchema(m.Path, "matrix has %d row keys but %d grid rows", len(m.RowKeys), len(m.Grid))
	}

	for r, row := range m.Grid {
		if len(row) != len(m.ColumnKeys) {
			return domain.ErrSchema(m.Path, "shape mismatch: row %q has %d values, expected %d", m.RowKeys[r], len(row), len(m.ColumnKeys))
		}
		if m.ValueType == Unresolved {
			continue
		}
		for c, cell := range row {
			if _, err := Coerce(m.ValueType, cell); err != nil {
				return domain.ErrSchema(m.Path, "cell [%s][%s]: %v", m.RowKeys[r], m.ColumnKeys[c], err)
			}
		}
	}
	return nil
}

func uniqueAxis(path, axis string, keys []string) error {
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		if seen[k] {
			return domain.ErrConstraint(path, "duplicate %s key %q", axis, k)
		}
		seen[k] = true
	}
	return nil
}
