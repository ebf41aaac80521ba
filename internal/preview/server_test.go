package preview

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvpack/internal/codegen"
	"csvpack/internal/compiler"
	"csvpack/internal/config"
	"csvpack/internal/fsio"
)

// switchable compiles the real tree until broken is set.
type switchable struct {
	inner  *compiler.Compiler
	broken bool
}

func (s *switchable) Run(ctx context.Context) (*compiler.Result, error) {
	if s.broken {
		return nil, errors.New("items.csv: duplicate key")
	}
	return s.inner.Run(ctx)
}

func newTestServer(t *testing.T) (*Server, *switchable) {
	t.Helper()
	root := t.TempDir()
	for name, content := range map[string]string{
		"excel/items.csv":  "id,;,hp\nstringId,name,int\np1,Potion,5\np2,Elixir,9\n",
		"Matrix/damage.csv": "damageOf,attacker,fire\ndefender,double\norc,Orc,1.5\n",
	} {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	c := compiler.New(compiler.Options{
		TablesDir:   filepath.Join(root, "excel"),
		MatricesDir: filepath.Join(root, "Matrix"),
		Codegen:     codegen.DefaultOptions(),
	}, fsio.OS{}, nil)
	sw := &switchable{inner: c}

	cfg := config.Default().Preview
	return New(sw, cfg, nil), sw
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServer_UnavailableBeforeFirstCompile(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Handler()

	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/api/tables").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, h, "/").Code)
}

func TestServer_API(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Refresh(context.Background()))
	h := s.Handler()

	rec := get(t, h, "/api/tables")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	var list struct {
		Tables []tableSummary `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Tables, 2)
	assert.Equal(t, "items", list.Tables[0].Name)
	assert.Equal(t, "key", list.Tables[0].Role)

	rec = get(t, h, "/api/tables/items")
	require.Equal(t, http.StatusOK, rec.Code)
	var items struct {
		Columns []string         `json:"columns"`
		Records []map[string]any `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	assert.Equal(t, []string{"id", "hp", ";"}, items.Columns)
	require.Len(t, items.Records, 2)
	assert.Equal(t, "p2", items.Records[1]["id"])
	assert.InDelta(t, 9, items.Records[1]["hp"], 0.001)
	assert.Equal(t, "Elixir", items.Records[1][";"])

	rec = get(t, h, "/api/tables/damage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"function":"damageOf"`)
	assert.Contains(t, rec.Body.String(), `"grid":[["1.5"]]`)

	rec = get(t, h, "/api/strings/p1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"value":"Potion"`)

	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/tables/nope").Code)
	assert.Equal(t, http.StatusNotFound, get(t, h, "/api/strings/nope").Code)
}

func TestServer_Pages(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Refresh(context.Background()))
	h := s.Handler()

	rec := get(t, h, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `<a href="/tables/items">items</a>`)

	rec = get(t, h, "/tables/items")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<td>Elixir</td>")

	rec = get(t, h, "/tables/damage")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<th>orc</th>")

	assert.Equal(t, http.StatusNotFound, get(t, h, "/tables/nope").Code)
}

func TestServer_FailedRefreshKeepsSnapshot(t *testing.T) {
	s, sw := newTestServer(t)
	require.NoError(t, s.Refresh(context.Background()))

	sw.broken = true
	require.Error(t, s.Refresh(context.Background()))

	h := s.Handler()
	rec := get(t, h, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body["status"])
	assert.Contains(t, body["last_error"], "duplicate key")

	assert.Equal(t, http.StatusOK, get(t, h, "/api/tables/items").Code)
	assert.Contains(t, get(t, h, "/").Body.String(), "last refresh failed")

	sw.broken = false
	require.NoError(t, s.Refresh(context.Background()))
	body = nil
	require.NoError(t, json.Unmarshal(get(t, h, "/healthz").Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestServer_CORS(t *testing.T) {
	s, _ := newTestServer(t)
	require.NoError(t, s.Refresh(context.Background()))

	req := httptest.NewRequest(http.MethodGet, "/api/tables", nil)
	req.Header.Set("Origin", "https://tools.example.com")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_StartRejectsBadSchedule(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.Refresh = "not a schedule"
	require.Error(t, s.Start(context.Background()))

	s.cfg.Refresh = "@every 1h"
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}
