package codegen

import (
	"go/parser"
	"go/token"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvpack/internal/schema"
)

const generatedHeader = "// Code generated by csvpack. DO NOT EDIT."

func renderFile(t *testing.T, f *File) map[string]string {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	outs, err := r.Render(f)
	require.NoError(t, err)
	require.Len(t, outs, 2)

	files := make(map[string]string, len(outs))
	for _, o := range outs {
		src := string(o.Content)
		assert.True(t, strings.HasPrefix(src, generatedHeader), "%s lacks the generated header", o.Name)
		_, err := parser.ParseFile(token.NewFileSet(), o.Name, o.Content, parser.AllErrors)
		require.NoError(t, err, "%s does not parse:\n%s", o.Name, src)
		files[o.Name] = src
	}
	return files
}

func TestRender_RowTable(t *testing.T) {
	s := parseSchema(t, "hero.csv", "id,score,rate,title\nstringId,int,double,name_title\n")
	f, err := BuildRowTable(s, DefaultOptions())
	require.NoError(t, err)

	files := renderFile(t, f)
	decl := files["hero_data.gen.go"]
	impl := files["hero_data_impl.gen.go"]

	assert.Contains(t, decl, "// Source: hero.csv")
	assert.Contains(t, decl, "package gamedata")
	assert.Contains(t, decl, "// HeroData is one record of the hero table.\ntype HeroData struct {")
	assert.Contains(t, decl, "\tscore int32\n")
	assert.Contains(t, decl, "type HeroDic struct {")
	assert.NotContains(t, decl, "import", "declarations use no packages")

	assert.Contains(t, impl, `"csvpack/pkg/bytebuffer"`)
	assert.Contains(t, impl, `"csvpack/pkg/l10n"`)
	assert.Contains(t, impl, "func NewHeroData(buffer *bytebuffer.Reader) *HeroData {")
	assert.Contains(t, impl, "\td.rate = buffer.ReadDouble()\n")
	assert.Contains(t, impl, "func (d *HeroData) Score() int32 {\n\treturn d.score\n}")
	assert.Contains(t, impl, "func (d *HeroData) Title() string {")
	assert.Contains(t, impl, "func (dic *HeroDic) GetHeroByID(id string) *HeroData {")
	assert.Contains(t, impl, "func localizedHeroTitle(key string) string {\n\treturn l10n.String(\"title_\" + key)\n}")

	// Reads happen in column order.
	idx := func(s string) int { return strings.Index(impl, s) }
	assert.Less(t, idx("d.id = buffer.ReadString()"), idx("d.score = buffer.ReadInt()"))
	assert.Less(t, idx("d.score = buffer.ReadInt()"), idx("d.rate = buffer.ReadDouble()"))
}

func TestRender_MatrixImportsPruned(t *testing.T) {
	m, err := schema.ReadMatrix("label.csv", []byte("text,lang,en\nkey,string\nhello,-,Hello\n"), schema.NewLattice(nil))
	require.NoError(t, err)
	f, err := BuildMatrix(m, DefaultOptions())
	require.NoError(t, err)

	impl := renderFile(t, f)["label_data_impl.gen.go"]
	assert.Contains(t, impl, "func (m *LabelData) TextByLang(lang string, key string) string {")
	assert.NotContains(t, impl, `"strconv"`)
	assert.NotContains(t, impl, `"strings"`)
}

func TestRender_Facade(t *testing.T) {
	opts := DefaultOptions()
	opts.SharedInstance = true
	a := NewAggregator(opts)

	hero, err := BuildRowTable(parseSchema(t, "hero.csv", "id\nid\n"), opts)
	require.NoError(t, err)
	require.NoError(t, a.Register(hero))

	facade, err := a.File()
	require.NoError(t, err)
	files := renderFile(t, facade)

	decl := files["data_manager.gen.go"]
	assert.Contains(t, decl, "//   - hero_data")
	assert.Contains(t, decl, "heroDic *HeroDic")
	assert.Contains(t, decl, "sharedDataManagerMu sync.Mutex")

	impl := files["data_manager_impl.gen.go"]
	assert.Contains(t, impl, "func NewDataManager(buffer *bytebuffer.Reader) (*DataManager, error) {")
	assert.Contains(t, impl, "\tdm.heroDic = NewHeroDic(buffer)\n")
	assert.Contains(t, impl, "func (dm *DataManager) GetHeroDic() *HeroDic {")
	assert.Contains(t, impl, "func LoadDataManager(data []byte) (*DataManager, error) {")
	assert.Contains(t, impl, "func DataManagerWithData(data []byte) (*DataManager, error) {")
	assert.Contains(t, impl, "func SharedDataManager() (*DataManager, error) {")
	assert.Contains(t, impl, `"errors"`)
}
