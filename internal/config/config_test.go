package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "DataSource/excel", cfg.Sources.Tables)
	assert.Equal(t, "Resources/game.dat", cfg.Output.DataFile)
	assert.Equal(t, "gamedata", cfg.Codegen.Package)
	assert.Equal(t, "DataManager", cfg.Codegen.Facade)
	assert.False(t, cfg.Codegen.SharedInstance)
	assert.Equal(t, 4, cfg.Publish.Concurrency)
	assert.Contains(t, cfg.Warnings, "preview CORS allows any origin")
	require.NoError(t, cfg.Validate())
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := writeFile(t, "csvpack.yaml", `
sources:
  tables: sheets/rows
codegen:
  package: content
  shared_instance: true
types:
  aliases:
    hp: int
publish:
  target: s3://bucket/game
  s3:
    region: eu-west-1
log:
  level: debug
`)
	t.Setenv("CSVPACK_PACKAGE", "override")
	t.Setenv("CSVPACK_S3_KEY_ID", "")
	t.Setenv("CSVPACK_RATE_LIMIT_BURST", "7")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sheets/rows", cfg.Sources.Tables)
	assert.Equal(t, "DataSource/Matrix", cfg.Sources.Matrices, "unset keys keep defaults")
	assert.Equal(t, "override", cfg.Codegen.Package, "environment wins over file")
	assert.True(t, cfg.Codegen.SharedInstance)
	assert.Equal(t, map[string]string{"hp": "int"}, cfg.Types.Aliases)
	assert.Equal(t, "eu-west-1", cfg.Publish.S3.Region)
	assert.Equal(t, 7, cfg.Preview.RateLimitBurst)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Contains(t, cfg.Warnings, "publish.s3.key_id not set; S3 requests will be unsigned")
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "bad.yaml", "sources:\n  tabels: x\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tabels")
}

func TestLoad_BadEnvNumber(t *testing.T) {
	t.Setenv("CSVPACK_RATE_LIMIT_RPS", "fast")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CSVPACK_RATE_LIMIT_RPS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "no_tables", mutate: func(c *Config) { c.Sources.Tables = "" }, wantErr: "sources.tables"},
		{name: "no_package", mutate: func(c *Config) { c.Codegen.Package = "" }, wantErr: "codegen.package"},
		{name: "bad_cron", mutate: func(c *Config) { c.Preview.Refresh = "every tuesday" }, wantErr: "preview.refresh"},
		{name: "good_cron", mutate: func(c *Config) { c.Preview.Refresh = "*/5 * * * *" }},
		{name: "s3_half", mutate: func(c *Config) { c.Publish.S3.KeyID = "k" }, wantErr: "publish.s3.secret"},
		{name: "zero_concurrency", mutate: func(c *Config) { c.Publish.Concurrency = 0 }, wantErr: "publish.concurrency"},
		{name: "bad_format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log.format"},
		{name: "empty_alias", mutate: func(c *Config) { c.Types.Aliases = map[string]string{"hp": ""} }, wantErr: "types.aliases"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	for level, want := range map[string]slog.Level{
		"debug": slog.LevelDebug, "WARN": slog.LevelWarn, "error": slog.LevelError, "": slog.LevelInfo,
	} {
		cfg := &Config{Log: LogConfig{Level: level}}
		assert.Equal(t, want, cfg.SlogLevel(), level)
	}
}

func TestLoadDotEnv_FileNotFound(t *testing.T) {
	require.NoError(t, LoadDotEnv("/nonexistent/.env"))
}

func TestLoadDotEnv_ParsesAndKeepsEnvPrecedence(t *testing.T) {
	t.Setenv("CSVPACK_TEST_PRECEDENCE", "from_env")
	t.Setenv("CSVPACK_TEST_KEY", "")
	path := writeFile(t, ".env", "# comment\nCSVPACK_TEST_KEY='test value'\nCSVPACK_TEST_PRECEDENCE=from_file\nnot a pair\n")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "test value", os.Getenv("CSVPACK_TEST_KEY"))
	assert.Equal(t, "from_env", os.Getenv("CSVPACK_TEST_PRECEDENCE"))
}
