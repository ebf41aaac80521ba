package encoding

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvpack/internal/domain"
	"csvpack/internal/schema"
	"csvpack/pkg/bytebuffer"
)

type mapSink map[string]string

func (m mapSink) Set(key, value string) { m[key] = value }

func readTable(t *testing.T, path, data string) *schema.Table {
	t.Helper()
	tbl, err := schema.ReadTable(path, []byte(data), schema.NewLattice(nil))
	require.NoError(t, err)
	return tbl
}

func TestEncodeTable_Scenario(t *testing.T) {
	tbl := readTable(t, "hero.csv", "id,;,score\nstringId,name,int\np1,Hero,10\n")
	w := bytebuffer.NewWriter()
	sink := mapSink{}

	sec, err := EncodeTable(w, tbl, sink)
	require.NoError(t, err)
	assert.Equal(t, Section{Offset: 0, Length: w.Len(), Rows: 1}, sec)
	assert.Equal(t, mapSink{"p1": "Hero"}, sink)

	r := bytebuffer.NewReader(w.Bytes())
	assert.Equal(t, int32(1), r.ReadInt())
	assert.Equal(t, "p1", r.ReadString())
	assert.Equal(t, int32(10), r.ReadInt())
	require.NoError(t, r.Err())
	assert.Equal(t, 0, r.Len())
}

func TestEncodeTable_NamedHeaderPrefixesKey(t *testing.T) {
	tbl := readTable(t, "hero.csv", "id,name,score\nstringId,name,int\np1,Hero,10\n")
	sink := mapSink{}

	_, err := EncodeTable(bytebuffer.NewWriter(), tbl, sink)
	require.NoError(t, err)
	assert.Equal(t, mapSink{"name_p1": "Hero"}, sink)
}

func TestEncodeTable_EmptyKeyWithLocalizedColumn(t *testing.T) {
	for _, data := range []string{
		"id,title\nstringId,name_title\np1,One\n,Nobody\n",
		"id,;\nstringId,name\n,Nobody\n",
	} {
		tbl := readTable(t, "hero.csv", data)
		w := bytebuffer.NewWriter()
		sink := mapSink{}

		_, err := EncodeTable(w, tbl, sink)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty key")
		var schemaErr *domain.SchemaError
		assert.True(t, errors.As(err, &schemaErr))
		assert.Equal(t, 0, w.Len())
	}

	// without localized columns an empty key is just another key
	tbl := readTable(t, "hero.csv", "id,hp\nstringId,int\n,1\n")
	_, err := EncodeTable(bytebuffer.NewWriter(), tbl, nil)
	require.NoError(t, err)
}

func TestEncodeTable_RoundTrip(t *testing.T) {
	data := "id\thp\txp\trate\tboss\ttags\tnote\ttitle\n" +
		"stringId\tint\tlong\tdouble\tBOOL\tset\tcomment\tname_title\n" +
		"slime\t10\t5000000000\t0.5\t0\tgreen;small\twhatever\tSlime\n" +
		"dragon\t900\t1\t2.25\ttrue\t\t\tDragon\n"
	tbl := readTable(t, "monster.tsv", data)

	w := bytebuffer.NewWriter()
	w.PutString("previous section")
	prefix := w.Len()
	sink := mapSink{}

	sec, err := EncodeTable(w, tbl, sink)
	require.NoError(t, err)
	assert.Equal(t, prefix, sec.Offset)
	assert.Equal(t, 2, sec.Rows)

	r := bytebuffer.NewReader(w.Bytes()[sec.Offset:])
	records, err := DecodeTable(r, FieldTypes(tbl.Schema))
	require.NoError(t, err)
	assert.Equal(t, []Record{
		{"slime", int32(10), int64(5000000000), 0.5, false, []string{"green", "small"}},
		{"dragon", int32(900), int64(1), 2.25, true, []string{}},
	}, records)
	assert.Equal(t, 0, r.Len())

	assert.Equal(t, mapSink{"title_slime": "Slime", "title_dragon": "Dragon"}, sink)
}

func TestEncodeTable_GroupKeyAllowsRepeats(t *testing.T) {
	tbl := readTable(t, "drop.csv", "group,item\ngroupId,string\ng1,a\ng2,b\ng1,c\n")
	w := bytebuffer.NewWriter()

	_, err := EncodeTable(w, tbl, nil)
	require.NoError(t, err)

	records, err := DecodeTable(bytebuffer.NewReader(w.Bytes()), FieldTypes(tbl.Schema))
	require.NoError(t, err)
	var g1 []string
	for _, rec := range records {
		if rec[0] == "g1" {
			g1 = append(g1, rec[1].(string))
		}
	}
	assert.Equal(t, []string{"a", "c"}, g1)
}

func TestEncodeTable_Errors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
		check   func(t *testing.T, err error)
	}{
		{
			name:    "duplicate_key",
			data:    "id,hp\nid,int\na,1\nb,2\na,3\n",
			wantErr: `line 5: duplicate key "a" (first seen on line 3)`,
			check: func(t *testing.T, err error) {
				var target *domain.ConstraintError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "short_row",
			data:    "id,hp\nid,int\na\n",
			wantErr: "line 3 has 1 cells, header declares 2",
			check: func(t *testing.T, err error) {
				var target *domain.SchemaError
				assert.True(t, errors.As(err, &target))
			},
		},
		{
			name:    "bad_cell",
			data:    "id,hp\nid,int\na,lots\n",
			wantErr: `line 3, column "hp"`,
			check: func(t *testing.T, err error) {
				var target *domain.SchemaError
				assert.True(t, errors.As(err, &target))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := readTable(t, "t.csv", tt.data)
			w := bytebuffer.NewWriter()
			w.PutInt(7)

			_, err := EncodeTable(w, tbl, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			tt.check(t, err)
			assert.Equal(t, 4, w.Len(), "failed table must leave no bytes behind")
		})
	}
}

func TestEncodeMatrix_RoundTrip(t *testing.T) {
	m, err := schema.ReadMatrix("damage.csv",
		[]byte("damage,level,5,10\nclass,int\nwarrior,W,3,7\nmage,M,1,9\n"),
		schema.NewLattice(nil))
	require.NoError(t, err)

	w := bytebuffer.NewWriter()
	sec, err := EncodeMatrix(w, m)
	require.NoError(t, err)
	assert.Equal(t, 2, sec.Rows)
	assert.Equal(t, w.Len(), sec.Length)

	got, err := DecodeMatrix(bytebuffer.NewReader(w.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, m.ColumnKeys, got.ColumnKeys)
	assert.Equal(t, m.RowKeys, got.RowKeys)
	assert.Equal(t, m.Grid, got.Grid)
}

func TestEncodeMatrix_ShapeMismatchLeavesNoBytes(t *testing.T) {
	m := &schema.MatrixTable{
		Path:       "dmg.csv",
		ColumnKeys: []string{"5", "10"},
		RowKeys:    []string{"1", "2"},
		Grid:       [][]string{{"5", "10"}, {"7"}},
	}
	w := bytebuffer.NewWriter()
	w.PutInt(1)

	_, err := EncodeMatrix(w, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape", "error should describe the mismatch")
	assert.Equal(t, 4, w.Len())
}

func TestDecodeTable_Corrupt(t *testing.T) {
	w := bytebuffer.NewWriter()
	w.PutInt(1000)
	w.PutString("only one")

	_, err := DecodeTable(bytebuffer.NewReader(w.Bytes()), []schema.FieldType{schema.String})
	require.Error(t, err)
	assert.ErrorIs(t, err, bytebuffer.ErrCorrupt)

	w = bytebuffer.NewWriter()
	w.PutInt(1)
	w.PutString("key")
	_, err = DecodeTable(bytebuffer.NewReader(w.Bytes()), []schema.FieldType{schema.String, schema.Int64})
	require.Error(t, err)
	assert.ErrorIs(t, err, bytebuffer.ErrShortBuffer)
}
