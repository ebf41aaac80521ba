package compiler

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvpack/internal/codegen"
	"csvpack/internal/domain"
	"csvpack/internal/fsio"
)

func writeSources(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
}

func testOptions(root string) Options {
	return Options{
		TablesDir:    filepath.Join(root, "DataSource/excel"),
		MatricesDir:  filepath.Join(root, "DataSource/Matrix"),
		StringsDir:   filepath.Join(root, "DataSource/string"),
		CodeDir:      filepath.Join(root, "gamedata"),
		DataFile:     filepath.Join(root, "Resources/game.dat"),
		StringsFile:  filepath.Join(root, "Resources/Localizable.strings"),
		ManifestFile: filepath.Join(root, "Resources/manifest.yaml"),
		Codegen:      codegen.DefaultOptions(),
	}
}

var sampleSources = map[string]string{
	"DataSource/excel/items.csv": "id,;,score,tags,title\n" +
		"stringId,name,int,set,name_title\n" +
		"p1,Potion,5,heal;cheap,Small potion\n" +
		"p2,Elixir,9,,Big potion\n",
	"DataSource/excel/quests.tsv": "groupId\tstep\n" +
		"groupId\tint\n" +
		"intro\t1\n" +
		"intro\t2\n",
	"DataSource/Matrix/damage.csv": "damageOf,attacker,fire,ice\n" +
		"defender,int\n" +
		"orc,Orc,1,2\n" +
		"elf,Elf,3,4\n",
	"DataSource/string/tips.txt": "Welcome!\nGood luck\n",
}

func TestRun_CompilesEverything(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)

	c := New(testOptions(root), fsio.OS{}, nil)
	res, err := c.Run(context.Background())
	require.NoError(t, err)

	m := res.Manifest
	require.Len(t, m.Tables, 3)
	assert.Equal(t, "items", m.Tables[0].Name)
	assert.Equal(t, "quests", m.Tables[1].Name)
	assert.Equal(t, "damage", m.Tables[2].Name)
	assert.Equal(t, KindMatrix, m.Tables[2].Kind)
	assert.Equal(t, 0, m.Tables[0].Offset)
	assert.Equal(t, m.Tables[0].Length, m.Tables[1].Offset)
	assert.Equal(t, len(res.Data), m.Size)
	assert.Equal(t, "key", m.Tables[0].Role)
	assert.Equal(t, "group_key", m.Tables[1].Role)
	assert.NotEmpty(t, res.RunID)

	v, ok := res.Localization.Lookup("p1")
	require.True(t, ok)
	assert.Equal(t, "Potion", v)
	v, _ = res.Localization.Lookup("title_p2")
	assert.Equal(t, "Big potion", v)
	v, _ = res.Localization.Lookup("tips_2")
	assert.Equal(t, "Good luck", v)

	var names []string
	for _, out := range res.Code {
		names = append(names, out.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{
		"damage_data.gen.go", "damage_data_impl.gen.go",
		"data_manager.gen.go", "data_manager_impl.gen.go",
		"items_data.gen.go", "items_data_impl.gen.go",
		"quests_data.gen.go", "quests_data_impl.gen.go",
	}, names)
}

func TestRun_SnapshotRoundTrip(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)

	res, err := New(testOptions(root), fsio.OS{}, nil).Run(context.Background())
	require.NoError(t, err)
	snap, err := res.Snapshot()
	require.NoError(t, err)

	items, ok := snap.Table("items")
	require.True(t, ok)
	require.Len(t, items.Records, 2)
	rec, ok := items.Row("p1")
	require.True(t, ok)
	assert.Equal(t, int32(5), rec[1])
	assert.Equal(t, []string{"heal", "cheap"}, rec[2])
	rec, _ = items.Row("p2")
	assert.Empty(t, rec[2])
	assert.Equal(t, []string{"Elixir", "Big potion"}, snap.Localized(items, rec))
	assert.Equal(t, "Potion", snap.Strings.String("p1"))

	quests, _ := snap.Table("quests")
	require.Len(t, quests.Records, 2)
	assert.Equal(t, "intro", quests.Records[1][0])
	assert.Equal(t, int32(2), quests.Records[1][1])

	damage, _ := snap.Table("damage")
	require.NotNil(t, damage.Matrix)
	assert.Equal(t, []string{"fire", "ice"}, damage.Matrix.ColumnKeys)
	assert.Equal(t, []string{"orc", "elf"}, damage.Matrix.RowKeys)
	assert.Equal(t, "3", damage.Matrix.Grid[1][0])
}

func TestCompile_WritesArtifactsAndReloads(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)
	opts := testOptions(root)

	_, arts, err := New(opts, fsio.OS{}, nil).Compile(context.Background())
	require.NoError(t, err)
	assert.Len(t, arts, 3+8)

	strings, err := os.ReadFile(opts.StringsFile)
	require.NoError(t, err)
	assert.Contains(t, string(strings), "\"p1\" = \"Potion\";\n")

	snap, err := LoadSnapshot(fsio.OS{}, opts)
	require.NoError(t, err)
	assert.Len(t, snap.Tables, 3)
	assert.Equal(t, "Welcome!", snap.Strings.String("tips_1"))
}

// recordingFS reads from disk and records writes instead of performing them.
type recordingFS struct {
	fsio.OS
	writes []string
}

func (r *recordingFS) WriteFile(path string, data []byte) error {
	r.writes = append(r.writes, path)
	return nil
}

func TestCompile_FailureWritesNothing(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  any
	}{
		{
			name:    "duplicate_key",
			file:    "DataSource/excel/zz.csv",
			content: "id,hp\nid,int\na,1\na,2\n",
			target:  &domain.ConstraintError{},
		},
		{
			name:    "matrix_shape",
			file:    "DataSource/Matrix/bad.csv",
			content: "f,c,x,y\nr,int\nk,K,1\n",
			target:  &domain.SchemaError{},
		},
		{
			name:    "override_duplicate",
			file:    "DataSource/string/more.txt",
			content: "\"p1\" = \"Again\";\n",
			target:  &domain.ConstraintError{},
		},
		{
			name:    "type_collision",
			file:    "DataSource/Matrix/items.csv",
			content: "f,c,x\nr,int\nk,K,1\n",
			target:  &domain.SchemaError{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeSources(t, root, sampleSources)
			writeSources(t, root, map[string]string{tt.file: tt.content})

			fs := &recordingFS{}
			_, _, err := New(testOptions(root), fs, nil).Compile(context.Background())
			require.Error(t, err)
			switch target := tt.target.(type) {
			case *domain.ConstraintError:
				assert.True(t, errors.As(err, &target), "got %T: %v", err, err)
			case *domain.SchemaError:
				assert.True(t, errors.As(err, &target), "got %T: %v", err, err)
			}
			assert.Empty(t, fs.writes)
		})
	}
}

func TestRun_MissingDirectoriesCompileEmpty(t *testing.T) {
	res, err := New(testOptions(t.TempDir()), fsio.OS{}, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, res.Manifest.Tables)
	assert.Empty(t, res.Data)

	snap, err := res.Snapshot()
	require.NoError(t, err)
	assert.Empty(t, snap.Tables)
}

func TestRun_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(testOptions(root), fsio.OS{}, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestManifest_RoundTrip(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)
	res, err := New(testOptions(root), fsio.OS{}, nil).Run(context.Background())
	require.NoError(t, err)

	raw, err := res.Manifest.Marshal()
	require.NoError(t, err)
	back, err := ParseManifest(raw)
	require.NoError(t, err)
	assert.Equal(t, res.Manifest.Tables, back.Tables)
	assert.True(t, res.Manifest.GeneratedAt.Equal(back.GeneratedAt))

	_, err = ParseManifest([]byte("run_id: x\nbogus: 1\n"))
	assert.Error(t, err)
}

func TestDecode_RejectsMisalignedManifest(t *testing.T) {
	root := t.TempDir()
	writeSources(t, root, sampleSources)
	res, err := New(testOptions(root), fsio.OS{}, nil).Run(context.Background())
	require.NoError(t, err)

	m := *res.Manifest
	m.Tables = append([]TableEntry(nil), m.Tables...)
	m.Tables[1].Offset++
	_, err = Decode(res.Data, &m, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quests")

	m.Tables = m.Tables[:1]
	_, err = Decode(res.Data, &m, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trailing bytes")
}

func TestDumpUnformatted(t *testing.T) {
	root := t.TempDir()
	c := New(testOptions(root), fsio.OS{}, nil)

	src := []byte("package gamedata\n\nfunc broken( {\n")
	err := fmt.Errorf("render items: %w", &codegen.FormatError{File: "items.gen.go", Source: src, Err: errors.New("expected ')'")})
	c.dumpUnformatted(err)

	got, readErr := os.ReadFile(filepath.Join(root, "gamedata", "items.gen.go.unformatted"))
	require.NoError(t, readErr)
	assert.Equal(t, src, got)
	_, statErr := os.Stat(filepath.Join(root, "gamedata", "items.gen.go"))
	assert.True(t, os.IsNotExist(statErr))

	// other errors leave nothing behind
	other := New(testOptions(t.TempDir()), fsio.OS{}, nil)
	other.dumpUnformatted(errors.New("boom"))
	_, statErr = os.Stat(other.opts.CodeDir)
	assert.True(t, os.IsNotExist(statErr))
}
