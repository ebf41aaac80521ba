package compiler

import (
	"bytes"
	"fmt"

	"csvpack/internal/encoding"
	"csvpack/internal/fsio"
	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
	"csvpack/pkg/l10n"
)

// Snapshot is a store decoded through its manifest.
type Snapshot struct {
	Manifest *Manifest
	Tables   []TableData
	Strings  *l10n.Table
}

// TableData is one decoded section. Exactly one of Records and Matrix is set.
type TableData struct {
	TableEntry
	Records []encoding.Record
	Matrix  *encoding.Matrix
}

// Decode reads every section of data in manifest order. Section offsets
// must line up with the manifest and no bytes may be left over.
func Decode(data []byte, m *Manifest, texts *l10n.Table) (*Snapshot, error) {
	if texts == nil {
		texts = l10n.NewTable()
	}
	snap := &Snapshot{Manifest: m, Strings: texts}
	r := bytebuffer.NewReader(data)
	canonical := schema.NewLattice(nil)

	for _, entry := range m.Tables {
		if r.Offset() != entry.Offset {
			return nil, fmt.Errorf("decode %s: section starts at %d, manifest says %d", entry.Name, r.Offset(), entry.Offset)
		}
		td := TableData{TableEntry: entry}
		switch entry.Kind {
		case KindRows:
			types := make([]schema.FieldType, len(entry.Fields))
			for i, f := range entry.Fields {
				types[i] = canonical.Resolve(f.Type)
				if types[i] == schema.Unresolved {
					return nil, fmt.Errorf("decode %s: field %s has unknown type %q", entry.Name, f.Name, f.Type)
				}
			}
			records, err := encoding.DecodeTable(r, types)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", entry.Name, err)
			}
			td.Records = records
		case KindMatrix:
			mx, err := encoding.DecodeMatrix(r)
			if err != nil {
				return nil, fmt.Errorf("decode %s: %w", entry.Name, err)
			}
			td.Matrix = mx
		default:
			return nil, fmt.Errorf("decode %s: unknown kind %q", entry.Name, entry.Kind)
		}
		snap.Tables = append(snap.Tables, td)
	}

	if n := r.Len(); n != 0 {
		return nil, fmt.Errorf("decode: %d trailing bytes", n)
	}
	return snap, nil
}

// Snapshot decodes the store the run produced.
func (res *Result) Snapshot() (*Snapshot, error) {
	return Decode(res.Data, res.Manifest, res.Localization.Table())
}

// LoadSnapshot reads a previously written store, its manifest and, when
// present, its strings file.
func LoadSnapshot(fs fsio.Reader, opts Options) (*Snapshot, error) {
	raw, err := fs.ReadFile(opts.ManifestFile)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(raw)
	if err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(opts.DataFile)
	if err != nil {
		return nil, err
	}
	if len(data) != m.Size {
		return nil, fmt.Errorf("%s is %d bytes, manifest %s expects %d", opts.DataFile, len(data), m.RunID, m.Size)
	}

	texts := l10n.NewTable()
	if opts.StringsFile != "" {
		if raw, err := fs.ReadFile(opts.StringsFile); err == nil {
			if texts, err = l10n.Parse(bytes.NewReader(raw)); err != nil {
				return nil, fmt.Errorf("%s: %w", opts.StringsFile, err)
			}
		}
	}
	return Decode(data, m, texts)
}

// Table returns the decoded section named name.
func (s *Snapshot) Table(name string) (*TableData, bool) {
	for i := range s.Tables {
		if s.Tables[i].Name == name {
			return &s.Tables[i], true
		}
	}
	return nil, false
}

// Row returns the record whose key column equals key, for row tables with
// a unique key.
func (t *TableData) Row(key string) (encoding.Record, bool) {
	idx := t.keyColumn()
	if idx < 0 {
		return nil, false
	}
	for _, rec := range t.Records {
		if rec[idx] == key {
			return rec, true
		}
	}
	return nil, false
}

// Localized returns the localized strings of rec, one per Localized entry.
// Missing strings come back as their lookup key.
func (s *Snapshot) Localized(t *TableData, rec encoding.Record) []string {
	idx := t.keyColumn()
	if idx < 0 || len(t.Localized) == 0 {
		return nil
	}
	key, _ := rec[idx].(string)
	out := make([]string, len(t.Localized))
	for i, l := range t.Localized {
		out[i] = s.Strings.String(schema.LocalizedField{Prefix: l.Prefix}.Key(key))
	}
	return out
}

func (t *TableData) keyColumn() int {
	for i, f := range t.Fields {
		if f.Name == t.KeyField {
			return i
		}
	}
	return -1
}
