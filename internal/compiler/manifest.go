package compiler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"csvpack/internal/encoding"
	"csvpack/internal/schema"
)

// Table kinds recorded in the manifest.
const (
	KindRows   = "rows"
	KindMatrix = "matrix"
)

// Manifest describes one compiled store: where every table section starts
// and how to decode it without the generated code.
type Manifest struct {
	RunID       string       `yaml:"run_id"`
	GeneratedAt time.Time    `yaml:"generated_at"`
	Package     string       `yaml:"package"`
	Facade      string       `yaml:"facade"`
	Size        int          `yaml:"size"`
	Strings     int          `yaml:"strings"`
	Tables      []TableEntry `yaml:"tables"`
}

// TableEntry is one section of the store, in decoding order.
type TableEntry struct {
	Name      string           `yaml:"name"`
	Kind      string           `yaml:"kind"`
	Source    string           `yaml:"source"`
	Offset    int              `yaml:"offset"`
	Length    int              `yaml:"length"`
	Rows      int              `yaml:"rows"`
	KeyField  string           `yaml:"key_field,omitempty"`
	Role      string           `yaml:"role,omitempty"`
	Fields    []FieldEntry     `yaml:"fields,omitempty"`
	Localized []LocalizedEntry `yaml:"localized,omitempty"`
	Matrix    *MatrixEntry     `yaml:"matrix,omitempty"`
}

// FieldEntry is one encoded column.
type FieldEntry struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Token string `yaml:"token"`
}

// LocalizedEntry is one localization column. Its strings are stored under
// "<prefix>_<record key>", or the bare record key when Prefix is empty.
type LocalizedEntry struct {
	Field    string `yaml:"field"`
	Prefix   string `yaml:"prefix"`
	Accessor string `yaml:"accessor,omitempty"`
}

// MatrixEntry holds the matrix header.
type MatrixEntry struct {
	Function    string `yaml:"function"`
	ColumnParam string `yaml:"column_param"`
	RowParam    string `yaml:"row_param"`
	ValueType   string `yaml:"value_type"`
	Columns     int    `yaml:"columns"`
}

func rowEntry(s *schema.TableSchema, sec encoding.Section) TableEntry {
	e := TableEntry{
		Name:     s.Name,
		Kind:     KindRows,
		Source:   s.Path,
		Offset:   sec.Offset,
		Length:   sec.Length,
		Rows:     sec.Rows,
		KeyField: s.Key().Name,
		Role:     s.Role().String(),
	}
	for _, f := range s.Resolved() {
		e.Fields = append(e.Fields, FieldEntry{Name: f.Name, Type: f.Type.String(), Token: f.TypeToken})
	}
	for _, f := range s.Localized() {
		e.Localized = append(e.Localized, LocalizedEntry{
			Field:    f.Name,
			Prefix:   f.Localized.Prefix,
			Accessor: f.Localized.Accessor,
		})
	}
	return e
}

func matrixEntry(m *schema.MatrixTable, sec encoding.Section) TableEntry {
	return TableEntry{
		Name:   m.Name,
		Kind:   KindMatrix,
		Source: m.Path,
		Offset: sec.Offset,
		Length: sec.Length,
		Rows:   len(m.RowKeys),
		Matrix: &MatrixEntry{
			Function:    m.FunctionName,
			ColumnParam: m.ColumnParam,
			RowParam:    m.RowParam,
			ValueType:   m.ValueTypeToken,
			Columns:     len(m.ColumnKeys),
		},
	}
}

// Table returns the entry named name.
func (m *Manifest) Table(name string) (TableEntry, bool) {
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return TableEntry{}, false
}

// Marshal renders the manifest as YAML.
func (m *Manifest) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode manifest: %w", err)
	}
	return buf.Bytes(), nil
}

// ParseManifest reads a manifest written by Marshal. Unknown keys are an
// error.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("parse manifest: empty document")
		}
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return &m, nil
}
