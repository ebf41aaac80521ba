// Package schema infers typed table layouts from the two header rows of a
// row table and the three-part header of a matrix table.
package schema

import (
	"path/filepath"
	"strconv"
	"strings"

	"csvpack/internal/domain"
)

// Role is the part a column plays in keyed lookup.
type Role int

// Role constants.
const (
	Plain Role = iota
	Key
	GroupKey
)

func (r Role) String() string {
	switch r {
	case Key:
		return "key"
	case GroupKey:
		return "group_key"
	default:
		return "plain"
	}
}

// LocalizedField describes a column whose cells go to the localization
// mapping rather than the binary store.
type LocalizedField struct {
	Prefix   string // key prefix; empty means the bare record key
	Accessor string // derived accessor name; empty for mapping-only columns
}

// Key returns the localization key for a record key.
func (l LocalizedField) Key(recordKey string) string {
	if l.Prefix == "" {
		return recordKey
	}
	return l.Prefix + "_" + recordKey
}

// Field is one column of a row table.
type Field struct {
	Name      string
	Column    int
	TypeToken string
	Type      FieldType
	Role      Role
	Localized *LocalizedField
}

// Encoded reports whether the field is written to the binary store.
func (f Field) Encoded() bool {
	return f.Type != Unresolved
}

// TableSchema is the parsed header of a row table.
type TableSchema struct {
	Name     string // table name, derived from the file name
	Path     string
	Fields   []Field // every column, in header order
	KeyIndex int     // index into Fields of the key or group-key column
}

// Key returns the key-role field.
func (s *TableSchema) Key() Field {
	return s.Fields[s.KeyIndex]
}

// Role returns the role of the key field (Key or GroupKey).
func (s *TableSchema) Role() Role {
	return s.Key().Role
}

// Resolved returns the encoded fields in column order.
func (s *TableSchema) Resolved() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Encoded() {
			out = append(out, f)
		}
	}
	return out
}

// Localized returns the localization columns in column order.
func (s *TableSchema) Localized() []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Localized != nil {
			out = append(out, f)
		}
	}
	return out
}

// Row is one data row, split into cells.
type Row struct {
	Line  int // 1-based line number among non-blank lines
	Cells []string
}

// Table is a parsed row table: its schema plus the raw data rows.
type Table struct {
	Schema *TableSchema
	Rows   []Row
}

// TableName derives a table name from a source file path.
func TableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadTable parses a row table. The header is validated completely before
// any data row is looked at.
func ReadTable(path string, data []byte, lattice *Lattice) (*Table, error) {
	lines := SplitLines(string(data))
	if len(lines) < 2 {
		return nil, domain.ErrSchema(path, "row table needs a name row and a type row, found %d rows", len(lines))
	}

	s, err := ParseHeader(path, SplitCells(lines[0]), SplitCells(lines[1]), lattice)
	if err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(lines)-2)
	for i, line := range lines[2:] {
		rows = append(rows, Row{Line: i + 3, Cells: SplitCells(line)})
	}
	return &Table{Schema: s, Rows: rows}, nil
}

// ParseHeader builds a TableSchema from the name row and the type row.
func ParseHeader(path string, names, types []string, lattice *Lattice) (*TableSchema, error) {
	if len(names) != len(types) {
		return nil, domain.ErrSchema(path, "name row has %d columns but type row has %d", len(names), len(types))
	}

	s := &TableSchema{Name: TableName(path), Path: path, KeyIndex: -1}
	var keyCols []string
	for col := range names {
		name := StripHeader(names[col])
		token := StripHeader(types[col])
		f := Field{Name: name, Column: col, TypeToken: token}

		if accessor, ok := matchLocalization(token); ok {
			if name == "" {
				return nil, domain.ErrSchema(path, "localized column %d has no header", col+1)
			}
			if s.KeyIndex < 0 {
				return nil, domain.ErrSchema(path, "localized column %q precedes the key column", name)
			}
			if accessor != "" && !IsIdentifier(accessor) {
				return nil, domain.ErrSchema(path, "localized accessor %q in column %q is not a valid identifier", accessor, name)
			}
			f.Localized = &LocalizedField{Prefix: localizationPrefix(name), Accessor: accessor}
			s.Fields = append(s.Fields, f)
			continue
		}

		f.Type = lattice.Resolve(token)
		f.Role = keyRole(token)
		if f.Role != Plain {
			keyCols = append(keyCols, name)
			if s.KeyIndex < 0 {
				s.KeyIndex = len(s.Fields)
			}
		}
		s.Fields = append(s.Fields, f)
	}

	switch {
	case len(keyCols) == 0:
		return nil, domain.ErrSchema(path, "no key column (one of id, stringId, groupId)")
	case len(keyCols) > 1:
		return nil, domain.ErrSchema(path, "multiple key columns: %s", strings.Join(keyCols, ", "))
	}
	if key := s.Key(); key.Type != String {
		return nil, domain.ErrSchema(path, "key column %q must resolve to string, got %s", key.Name, key.Type)
	}

	if err := validateNames(s); err != nil {
		return nil, err
	}
	return s, nil
}

// validateNames checks that every generated member name is usable and
// unique within the table. Accessors share the member namespace with
// encoded columns; localized headers share the column namespace, which
// also keys the localization entries.
func validateNames(s *TableSchema) error {
	members := make(map[string]string)
	columns := make(map[string]string)
	claim := func(seen map[string]string, name, what string) error {
		folded := strings.ToLower(name)
		if prev, dup := seen[folded]; dup {
			return domain.ErrSchema(s.Path, "%s %q collides with %s", what, name, prev)
		}
		seen[folded] = what + " " + strconv.Quote(name)
		return nil
	}

	for _, f := range s.Fields {
		switch {
		case f.Encoded():
			if f.Name == "" {
				return domain.ErrSchema(s.Path, "column %d has a type but no name", f.Column+1)
			}
			if !IsIdentifier(f.Name) {
				return domain.ErrSchema(s.Path, "column name %q is not a valid identifier", f.Name)
			}
			if err := claim(members, f.Name, "column"); err != nil {
				return err
			}
			if err := claim(columns, f.Name, "column"); err != nil {
				return err
			}
		case f.Localized != nil:
			if err := claim(columns, f.Name, "localized column"); err != nil {
				return err
			}
			if f.Localized.Accessor == "" {
				continue
			}
			if err := claim(members, f.Localized.Accessor, "accessor"); err != nil {
				return err
			}
		}
	}
	return nil
}
