package encoding

import (
	"fmt"

	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
)

// Record is one decoded row, one value per encoded field.
type Record []any

// DecodeTable reads a row-table section written by EncodeTable. types lists
// the encoded field types in column order.
func DecodeTable(r *bytebuffer.Reader, types []schema.FieldType) ([]Record, error) {
	count := r.ReadInt()
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read row count: %w", err)
	}
	if count < 0 || (len(types) > 0 && int(count) > r.Len()/4) {
		return nil, fmt.Errorf("%w: row count %d with %d bytes left", bytebuffer.ErrCorrupt, count, r.Len())
	}

	records := make([]Record, 0, count)
	for i := int32(0); i < count; i++ {
		rec := make(Record, len(types))
		for j, t := range types {
			rec[j] = readValue(r, t)
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("read record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readValue(r *bytebuffer.Reader, t schema.FieldType) any {
	switch t {
	case schema.Int32:
		return r.ReadInt()
	case schema.Int64:
		return r.ReadLong()
	case schema.Double:
		return r.ReadDouble()
	case schema.Bool:
		return r.ReadBool()
	case schema.String:
		return r.ReadString()
	case schema.StringSet:
		return r.ReadSet()
	default:
		return nil
	}
}

// Matrix is a decoded matrix section.
type Matrix struct {
	ColumnKeys []string
	RowKeys    []string
	Grid       [][]string
}

// DecodeMatrix reads a matrix section written by EncodeMatrix.
func DecodeMatrix(r *bytebuffer.Reader) (*Matrix, error) {
	m := &Matrix{ColumnKeys: r.ReadSet(), RowKeys: r.ReadSet()}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("read matrix axes: %w", err)
	}
	m.Grid = make([][]string, len(m.RowKeys))
	for i := range m.RowKeys {
		row := make([]string, len(m.ColumnKeys))
		for j := range row {
			row[j] = r.ReadString()
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("read matrix row %q: %w", m.RowKeys[i], err)
		}
		m.Grid[i] = row
	}
	return m, nil
}

// FieldTypes returns the encoded field types of s in column order.
func FieldTypes(s *schema.TableSchema) []schema.FieldType {
	fields := s.Resolved()
	types := make([]schema.FieldType, len(fields))
	for i, f := range fields {
		types[i] = f.Type
	}
	return types
}
