// Package config handles csvpack configuration: a YAML file, an optional
// .env file and CSVPACK_* environment overrides.
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CSVPACK_"

// Config is the top-level csvpack.yaml structure.
type Config struct {
	Sources SourcesConfig `yaml:"sources"`
	Output  OutputConfig  `yaml:"output"`
	Codegen CodegenConfig `yaml:"codegen"`
	Types   TypesConfig   `yaml:"types"`
	Publish PublishConfig `yaml:"publish"`
	Preview PreviewConfig `yaml:"preview"`
	Log     LogConfig     `yaml:"log"`

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string `yaml:"-"`
}

// SourcesConfig names the input directories.
type SourcesConfig struct {
	Tables   string `yaml:"tables"`   // row tables (.csv, .tsv)
	Matrices string `yaml:"matrices"` // matrix tables (.csv, .tsv)
	Strings  string `yaml:"strings"`  // localization overrides (.txt)
}

// OutputConfig names the generated artifacts.
type OutputConfig struct {
	CodeDir      string `yaml:"code_dir"`
	DataFile     string `yaml:"data_file"`
	StringsFile  string `yaml:"strings_file"`
	ManifestFile string `yaml:"manifest_file"`
}

// CodegenConfig controls the generated Go package.
type CodegenConfig struct {
	Package        string `yaml:"package"`
	RuntimeImport  string `yaml:"runtime_import"`
	L10nImport     string `yaml:"l10n_import"`
	Facade         string `yaml:"facade"`
	SharedInstance bool   `yaml:"shared_instance"`
}

// TypesConfig extends the type lattice.
type TypesConfig struct {
	Aliases map[string]string `yaml:"aliases"`
}

// PublishConfig controls artifact upload after a compile.
type PublishConfig struct {
	Target      string      `yaml:"target"` // s3://, gs://, az:// or file:// URL; empty disables
	Concurrency int         `yaml:"concurrency"`
	S3          S3Config    `yaml:"s3"`
	GCS         GCSConfig   `yaml:"gcs"`
	Azure       AzureConfig `yaml:"azure"`
}

// S3Config holds S3-compatible storage credentials.
type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	KeyID     string `yaml:"key_id"`
	Secret    string `yaml:"secret"`
	PathStyle bool   `yaml:"path_style"`
}

// GCSConfig holds Google Cloud Storage credentials.
type GCSConfig struct {
	KeyFile string `yaml:"key_file"` // service account JSON; empty uses default credentials
}

// AzureConfig holds Azure Blob Storage credentials.
type AzureConfig struct {
	AccountName string `yaml:"account_name"`
	AccountKey  string `yaml:"account_key"`
	Endpoint    string `yaml:"endpoint"` // defaults to https://<account>.blob.core.windows.net/
}

// PreviewConfig controls the preview server.
type PreviewConfig struct {
	Addr               string   `yaml:"addr"`
	Refresh            string   `yaml:"refresh"` // cron spec; empty disables recompiles
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // auto, json, text
}

// Default returns the configuration used when no file is given. Paths
// follow the DataSource/Resources layout sheet projects start from.
func Default() *Config {
	return &Config{
		Sources: SourcesConfig{
			Tables:   "DataSource/excel",
			Matrices: "DataSource/Matrix",
			Strings:  "DataSource/string",
		},
		Output: OutputConfig{
			CodeDir:      "gamedata",
			DataFile:     "Resources/game.dat",
			StringsFile:  "Resources/Localizable.strings",
			ManifestFile: "Resources/manifest.yaml",
		},
		Codegen: CodegenConfig{
			Package:       "gamedata",
			RuntimeImport: "csvpack/pkg/bytebuffer",
			L10nImport:    "csvpack/pkg/l10n",
			Facade:        "DataManager",
		},
		Publish: PublishConfig{Concurrency: 4},
		Preview: PreviewConfig{
			Addr:               ":8080",
			RateLimitRPS:       100,
			RateLimitBurst:     200,
			CORSAllowedOrigins: []string{"*"},
		},
		Log: LogConfig{Level: "info", Format: "auto"},
	}
}

// Load reads the YAML file at path over the defaults and then applies
// environment overrides. An empty path skips the file. Unknown keys in the
// file are an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path is caller-controlled
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if strings.HasPrefix(cfg.Publish.Target, "s3://") && cfg.Publish.S3.KeyID == "" {
		cfg.Warnings = append(cfg.Warnings, "publish.s3.key_id not set; S3 requests will be unsigned")
	}
	if len(cfg.Preview.CORSAllowedOrigins) == 1 && cfg.Preview.CORSAllowedOrigins[0] == "*" {
		cfg.Warnings = append(cfg.Warnings, "preview CORS allows any origin")
	}
	return cfg, nil
}

// ApplyEnv overlays CSVPACK_* environment variables.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"TABLES_DIR":        &c.Sources.Tables,
		"MATRICES_DIR":      &c.Sources.Matrices,
		"STRINGS_DIR":       &c.Sources.Strings,
		"CODE_DIR":          &c.Output.CodeDir,
		"DATA_FILE":         &c.Output.DataFile,
		"STRINGS_FILE":      &c.Output.StringsFile,
		"MANIFEST_FILE":     &c.Output.ManifestFile,
		"PACKAGE":           &c.Codegen.Package,
		"PUBLISH_TARGET":    &c.Publish.Target,
		"S3_ENDPOINT":       &c.Publish.S3.Endpoint,
		"S3_REGION":         &c.Publish.S3.Region,
		"S3_KEY_ID":         &c.Publish.S3.KeyID,
		"S3_SECRET":         &c.Publish.S3.Secret,
		"GCS_KEY_FILE":      &c.Publish.GCS.KeyFile,
		"AZURE_ACCOUNT":     &c.Publish.Azure.AccountName,
		"AZURE_ACCOUNT_KEY": &c.Publish.Azure.AccountKey,
		"AZURE_ENDPOINT":    &c.Publish.Azure.Endpoint,
		"PREVIEW_ADDR":      &c.Preview.Addr,
		"PREVIEW_REFRESH":   &c.Preview.Refresh,
		"LOG_LEVEL":         &c.Log.Level,
		"LOG_FORMAT":        &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}

	c.Codegen.SharedInstance = parseBoolEnvDefault(EnvPrefix+"SHARED_INSTANCE", c.Codegen.SharedInstance)
	c.Publish.S3.PathStyle = parseBoolEnvDefault(EnvPrefix+"S3_PATH_STYLE", c.Publish.S3.PathStyle)

	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		c.Preview.RateLimitRPS = f
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT_BURST: %w", EnvPrefix, err)
		}
		c.Preview.RateLimitBurst = n
	}
	if v := os.Getenv(EnvPrefix + "CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.Preview.CORSAllowedOrigins = compactNonEmpty(origins)
	}
	return nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	var errs []error
	if c.Sources.Tables == "" {
		errs = append(errs, errors.New("sources.tables is required"))
	}
	if c.Output.DataFile == "" || c.Output.CodeDir == "" {
		errs = append(errs, errors.New("output.data_file and output.code_dir are required"))
	}
	if c.Codegen.Package == "" || c.Codegen.Facade == "" {
		errs = append(errs, errors.New("codegen.package and codegen.facade are required"))
	}
	if c.Codegen.RuntimeImport == "" || c.Codegen.L10nImport == "" {
		errs = append(errs, errors.New("codegen.runtime_import and codegen.l10n_import are required"))
	}
	for alias, target := range c.Types.Aliases {
		if alias == "" || target == "" {
			errs = append(errs, fmt.Errorf("types.aliases: empty alias or target (%q: %q)", alias, target))
		}
	}
	if c.Publish.Concurrency < 1 {
		errs = append(errs, errors.New("publish.concurrency must be at least 1"))
	}
	if c.Publish.S3.KeyID != "" && c.Publish.S3.Secret == "" {
		errs = append(errs, errors.New("publish.s3.secret is required when publish.s3.key_id is set"))
	}
	if c.Publish.Azure.AccountKey != "" && c.Publish.Azure.AccountName == "" {
		errs = append(errs, errors.New("publish.azure.account_name is required when publish.azure.account_key is set"))
	}
	if c.Preview.Refresh != "" {
		if _, err := cron.ParseStandard(c.Preview.Refresh); err != nil {
			errs = append(errs, fmt.Errorf("preview.refresh: %w", err))
		}
	}
	if c.Preview.RateLimitRPS <= 0 || c.Preview.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("preview.rate_limit_rps and preview.rate_limit_burst must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "auto", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q: want auto, json or text", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel maps the log level string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func parseBoolEnvDefault(key string, defaultVal bool) bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	if v == "0" || v == "false" || v == "no" || v == "off" {
		return false
	}
	if v == "1" || v == "true" || v == "yes" || v == "on" {
		return true
	}
	return defaultVal
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
