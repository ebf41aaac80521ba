package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvpack/internal/domain"
)

func TestSplitLinesAndCells(t *testing.T) {
	lines := SplitLines("a,b\r\n\r\nc\td\re,f\n\n  \n")
	assert.Equal(t, []string{"a,b", "c\td", "e,f"}, lines)

	assert.Equal(t, []string{"a", "", "b", "c"}, SplitCells("a,,b\tc"))
	assert.Equal(t, []string{""}, SplitCells(""))
	assert.Equal(t, []string{"x", ""}, SplitCells("x,"))
}

func TestStripHeader(t *testing.T) {
	assert.Equal(t, "id", StripHeader("\ufeffid"))
	assert.Equal(t, "name", StripHeader(" na\x01me "))
	assert.Equal(t, ";", StripHeader(";"))
}

func TestReadTable_Scenario(t *testing.T) {
	data := []byte("id,;,score\nstringId,name,int\np1,Hero,10\n")
	tbl, err := ReadTable("tables/hero.csv", data, NewLattice(nil))
	require.NoError(t, err)

	s := tbl.Schema
	assert.Equal(t, "hero", s.Name)
	require.Len(t, s.Fields, 3)
	assert.Equal(t, Key, s.Role())
	assert.Equal(t, "id", s.Key().Name)

	resolved := s.Resolved()
	require.Len(t, resolved, 2)
	assert.Equal(t, "id", resolved[0].Name)
	assert.Equal(t, "score", resolved[1].Name)
	assert.Equal(t, Int32, resolved[1].Type)

	loc := s.Localized()
	require.Len(t, loc, 1)
	assert.Equal(t, Unresolved, loc[0].Type)
	assert.Equal(t, "p1", loc[0].Localized.Key("p1"))
	assert.Empty(t, loc[0].Localized.Accessor)

	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, 3, tbl.Rows[0].Line)
	assert.Equal(t, []string{"p1", "Hero", "10"}, tbl.Rows[0].Cells)
}

func TestParseHeader_Localization(t *testing.T) {
	s, err := ParseHeader("item.tsv",
		[]string{"groupId", "title", "note", "tags"},
		[]string{"groupId", "name_title", "comment", "set"},
		NewLattice(nil))
	require.NoError(t, err)

	assert.Equal(t, GroupKey, s.Role())
	title := s.Fields[1]
	require.NotNil(t, title.Localized)
	assert.Equal(t, "title", title.Localized.Accessor)
	assert.Equal(t, "title_sword", title.Localized.Key("sword"))
	assert.False(t, s.Fields[2].Encoded())
	assert.Equal(t, StringSet, s.Fields[3].Type)
}

func TestParseHeader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		types   []string
		wantErr string
	}{
		{
			name:    "no_key",
			names:   []string{"a", "b"},
			types:   []string{"string", "int"},
			wantErr: "no key column",
		},
		{
			name:    "two_keys",
			names:   []string{"a", "b"},
			types:   []string{"id", "stringId"},
			wantErr: "multiple key columns: a, b",
		},
		{
			name:    "key_and_group",
			names:   []string{"a", "b"},
			types:   []string{"id", "groupId"},
			wantErr: "multiple key columns",
		},
		{
			name:    "length_mismatch",
			names:   []string{"a", "b"},
			types:   []string{"id"},
			wantErr: "name row has 2 columns but type row has 1",
		},
		{
			name:    "localized_before_key",
			names:   []string{"title", "id"},
			types:   []string{"name", "id"},
			wantErr: `localized column "title" precedes the key column`,
		},
		{
			name:    "duplicate_names",
			names:   []string{"id", "hp", "HP"},
			types:   []string{"id", "int", "long"},
			wantErr: `column "HP" collides with column "hp"`,
		},
		{
			name:    "accessor_collides",
			names:   []string{"id", "title", "name"},
			types:   []string{"id", "string", "name_title"},
			wantErr: `accessor "title" collides`,
		},
		{
			name:    "two_bare_key_columns",
			names:   []string{"id", ";", ";"},
			types:   []string{"id", "name", "name"},
			wantErr: `localized column ";" collides with localized column ";"`,
		},
		{
			name:    "localized_header_matches_column",
			names:   []string{"id", "hp", "HP"},
			types:   []string{"id", "int", "name"},
			wantErr: `localized column "HP" collides with column "hp"`,
		},
		{
			name:    "same_prefix_twice",
			names:   []string{"id", "title", "title"},
			types:   []string{"id", "name_title", "name"},
			wantErr: `localized column "title" collides with localized column "title"`,
		},
		{
			name:    "bad_identifier",
			names:   []string{"id", "max-hp"},
			types:   []string{"id", "int"},
			wantErr: "not a valid identifier",
		},
		{
			name:    "typed_without_name",
			names:   []string{"id", ""},
			types:   []string{"id", "int"},
			wantErr: "has a type but no name",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader("t.csv", tt.names, tt.types, NewLattice(nil))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var schemaErr *domain.SchemaError
			assert.True(t, errors.As(err, &schemaErr))
		})
	}
}

func TestParseHeader_LocalizedHeaderMayMatchItsAccessor(t *testing.T) {
	s, err := ParseHeader("t.csv", []string{"id", "title", ";"}, []string{"id", "name_title", "name"}, NewLattice(nil))
	require.NoError(t, err)
	assert.Len(t, s.Localized(), 2)
}

func TestParseHeader_KeyMustBeString(t *testing.T) {
	_, err := ParseHeader("t.csv", []string{"id"}, []string{"id"}, NewLattice(map[string]string{"id": "int"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must resolve to string")
}

func TestReadTable_DoubleKeyFailsBeforeRows(t *testing.T) {
	// The data row would not even split to the right width; the header
	// error must win.
	data := []byte("a,b\nid,id\nonly-one-cell\n")
	_, err := ReadTable("dup.csv", data, NewLattice(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple key columns")
}

func TestReadTable_TooShort(t *testing.T) {
	_, err := ReadTable("empty.csv", []byte("id\n"), NewLattice(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "found 1 rows")
}
