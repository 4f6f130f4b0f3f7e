package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olgasafonova/commons-mcp-server/internal/commons"
)

// isolate runs the test from an empty directory with a clean locale
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
	for _, key := range []string{"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_ENVIRONMENT"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, commons.DefaultToolforgeURL, cfg.Endpoints.Toolforge)
	assert.Equal(t, commons.DefaultSparqlURL, cfg.Endpoints.Sparql)
	assert.Equal(t, commons.DefaultCampaignsURL, cfg.Endpoints.Campaigns)
	assert.Equal(t, commons.DefaultCommonsAPIURL, cfg.Endpoints.CommonsAPI)
	assert.Equal(t, "/feedback.py", cfg.Endpoints.AchievementsPath)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "en", cfg.Language())
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "development", cfg.Tracing.Environment)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRate)
}

func TestLoad_File(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoints:
  commons_api: https://test.wikipedia.org/w/api.php
http:
  timeout: 5s
  user_agent: my-bot/2.0
locale: fr_FR.UTF-8
store:
  driver: SQLite
  path: /tmp/commons-test.db
log:
  level: DEBUG
  format: json
metrics:
  addr: ":9090"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://test.wikipedia.org/w/api.php", cfg.Endpoints.CommonsAPI)
	assert.Equal(t, commons.DefaultSparqlURL, cfg.Endpoints.Sparql, "unset keys keep defaults")
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "my-bot/2.0", cfg.HTTP.UserAgent)
	assert.Equal(t, "fr", cfg.Language())
	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/commons-test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoad_DiscoversFileInWorkingDirectory(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "commons.yaml"), []byte("log:\n  level: warn\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("COMMONS_STORE_DRIVER", "redis")
	t.Setenv("COMMONS_STORE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("COMMONS_ENDPOINTS_SPARQL", "https://sparql.example.org/sparql")
	t.Setenv("COMMONS_LOCALE", "pt_BR")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, "https://sparql.example.org/sparql", cfg.Endpoints.Sparql)
	assert.Equal(t, "pt", cfg.Language())
}

func TestLoad_LocaleFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("LANG", "de_DE.UTF-8")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Language())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_SQLiteDefaultPath(t *testing.T) {
	dir := isolate(t)
	t.Setenv("COMMONS_STORE_DRIVER", "sqlite")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".commons-mcp", "state.db"), cfg.Store.Path)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Endpoints: EndpointsConfig{
				Toolforge:  commons.DefaultToolforgeURL,
				Sparql:     commons.DefaultSparqlURL,
				Campaigns:  commons.DefaultCampaignsURL,
				CommonsAPI: commons.DefaultCommonsAPIURL,
			},
			HTTP:  HTTPConfig{Timeout: time.Second},
			Store: StoreConfig{Driver: "memory"},
			Log:   LogConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty endpoint", func(c *Config) { c.Endpoints.Sparql = "" }, "endpoints.sparql"},
		{"relative endpoint", func(c *Config) { c.Endpoints.CommonsAPI = "/w/api.php" }, "endpoints.commons_api"},
		{"ftp endpoint", func(c *Config) { c.Endpoints.Campaigns = "ftp://example.org/c.json" }, "unsupported scheme"},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }, "http.timeout"},
		{"unknown driver", func(c *Config) { c.Store.Driver = "etcd" }, "store.driver"},
		{"redis without url", func(c *Config) { c.Store.Driver = "redis" }, "store.redis_url"},
		{"redis with url", func(c *Config) { c.Store.Driver = "redis"; c.Store.RedisURL = "redis://x:6379" }, ""},
		{"bad level", func(c *Config) { c.Log.Level = "verbose" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestBaseLanguage(t *testing.T) {
	tests := map[string]string{
		"en":          "en",
		"de_DE.UTF-8": "de",
		"pt_BR":       "pt",
		"sr@latin":    "sr",
		"zh-Hant-TW":  "zh",
		"C":           "",
		"":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, BaseLanguage(in), "BaseLanguage(%q)", in)
	}
}

func TestConversions(t *testing.T) {
	cfg := Config{
		Endpoints: EndpointsConfig{
			Toolforge:        "https://tf.example.org",
			Sparql:           "https://sparql.example.org",
			Campaigns:        "https://c.example.org/c.json",
			CommonsAPI:       "https://api.example.org/w/api.php",
			AchievementsPath: "/feedback.py",
		},
		Locale: "nl_NL",
		Store:  StoreConfig{Driver: "sqlite", Path: "/tmp/x.db", Prefix: "p:", MaxKeys: 7},
	}

	ep := cfg.CommonsEndpoints()
	assert.Equal(t, "https://tf.example.org", ep.ToolforgeURL)
	assert.Equal(t, "https://api.example.org/w/api.php", ep.CommonsAPIURL)
	assert.Equal(t, "nl", ep.Language)

	kv := cfg.KVStore()
	assert.Equal(t, "sqlite", kv.Driver)
	assert.Equal(t, "/tmp/x.db", kv.Path)
	assert.Equal(t, 7, kv.MaxKeys)
}

func TestLoad_TracingFromOTelEnv(t *testing.T) {
	isolate(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_ENVIRONMENT", "production")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Tracing.Enabled, "an endpoint enables tracing")
	assert.Equal(t, "collector:4318", cfg.Tracing.Endpoint)
	assert.Equal(t, "production", cfg.Tracing.Environment)
}

func TestLoad_TracingPrefersCommonsEnv(t *testing.T) {
	isolate(t)
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("COMMONS_TRACING_ENDPOINT", "local:4318")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "local:4318", cfg.Tracing.Endpoint)
}

func TestLoad_TracingEnabledFlag(t *testing.T) {
	isolate(t)
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled)
	assert.Empty(t, cfg.Tracing.Endpoint)
}

func TestLoad_InvalidSampleRate(t *testing.T) {
	isolate(t)
	t.Setenv("COMMONS_TRACING_SAMPLE_RATE", "1.5")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tracing.sample_rate")
}

func TestTracingSetup(t *testing.T) {
	cfg := &Config{Tracing: TracingConfig{
		Enabled:     true,
		Endpoint:    "collector:4318",
		Environment: "staging",
		SampleRate:  0.25,
	}}

	got := cfg.TracingSetup("commons-mcp-server", "1.2.3")
	assert.Equal(t, "commons-mcp-server", got.ServiceName)
	assert.Equal(t, "1.2.3", got.ServiceVersion)
	assert.Equal(t, "staging", got.Environment)
	assert.True(t, got.Enabled)
	assert.Equal(t, "collector:4318", got.OTLPEndpoint)
	assert.Equal(t, 0.25, got.SampleRate)
	assert.Nil(t, got.Writer)
}
