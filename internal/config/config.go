// Package config loads the server configuration from an optional YAML file and
// COMMONS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/olgasafonova/commons-mcp-server/internal/commons"
	"github.com/olgasafonova/commons-mcp-server/internal/kvstore"
	"github.com/olgasafonova/commons-mcp-server/tracing"
)

// EnvPrefix prefixes every environment variable, e.g. COMMONS_STORE_DRIVER
const EnvPrefix = "COMMONS"

// Config is the full server configuration
type Config struct {
	Endpoints EndpointsConfig `mapstructure:"endpoints"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Locale    string          `mapstructure:"locale"`
	Store     StoreConfig     `mapstructure:"store"`
	Log       LogConfig       `mapstructure:"log"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

// EndpointsConfig holds the upstream base URLs
type EndpointsConfig struct {
	Toolforge        string `mapstructure:"toolforge"`
	Sparql           string `mapstructure:"sparql"`
	Campaigns        string `mapstructure:"campaigns"`
	CommonsAPI       string `mapstructure:"commons_api"`
	AchievementsPath string `mapstructure:"achievements_path"`
}

// HTTPConfig configures the outbound HTTP client
type HTTPConfig struct {
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// StoreConfig selects the key-value store backend
type StoreConfig struct {
	Driver   string `mapstructure:"driver"` // memory, sqlite, redis
	Path     string `mapstructure:"path"`
	RedisURL string `mapstructure:"redis_url"`
	Prefix   string `mapstructure:"prefix"`
	MaxKeys  int    `mapstructure:"max_keys"`
}

// LogConfig configures slog output
type LogConfig struct {
	Level    string `mapstructure:"level"`  // debug, info, warn, error
	Format   string `mapstructure:"format"` // text, json
	File     string `mapstructure:"file"`   // empty = stderr
	MaxSize  int    `mapstructure:"max_size"`
	MaxFiles int    `mapstructure:"max_files"`
}

// MetricsConfig configures the Prometheus listener
type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the listener
}

// TracingConfig configures OpenTelemetry. Setting an endpoint enables tracing.
type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	Endpoint    string  `mapstructure:"endpoint"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// Load reads configuration. An explicit configPath must exist; otherwise
// commons.yaml is looked up in the working directory and ~/.commons-mcp and is
// optional.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindOTelEnv(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("commons")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".commons-mcp"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("endpoints.toolforge", commons.DefaultToolforgeURL)
	v.SetDefault("endpoints.sparql", commons.DefaultSparqlURL)
	v.SetDefault("endpoints.campaigns", commons.DefaultCampaignsURL)
	v.SetDefault("endpoints.commons_api", commons.DefaultCommonsAPIURL)
	v.SetDefault("endpoints.achievements_path", commons.DefaultAchievementsPath)

	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.user_agent", "")

	v.SetDefault("locale", localeFromEnv())

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.path", "")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.prefix", kvstore.DefaultRedisPrefix)
	v.SetDefault("store.max_keys", kvstore.DefaultMaxKeys)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_files", 5)

	v.SetDefault("metrics.addr", "")

	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.environment", "development")
	v.SetDefault("tracing.sample_rate", 1.0)
}

// bindOTelEnv lets the standard OpenTelemetry variables stand in for the
// COMMONS_TRACING_* ones
func bindOTelEnv(v *viper.Viper) {
	bindings := map[string]string{
		"tracing.enabled":     "OTEL_ENABLED",
		"tracing.endpoint":    "OTEL_EXPORTER_OTLP_ENDPOINT",
		"tracing.environment": "OTEL_ENVIRONMENT",
	}
	for key, otelVar := range bindings {
		native := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		_ = v.BindEnv(key, native, otelVar)
	}
}

// localeFromEnv returns the POSIX locale of the process, or "en"
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return "en"
}

// normalize fills values derived from others
func (c *Config) normalize() {
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.Tracing.Endpoint = strings.TrimSpace(c.Tracing.Endpoint)
	if c.Tracing.Endpoint != "" {
		c.Tracing.Enabled = true
	}

	if c.Store.Driver == "sqlite" && c.Store.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Store.Path = filepath.Join(home, ".commons-mcp", "state.db")
		}
	}
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	endpoints := map[string]string{
		"endpoints.toolforge":   c.Endpoints.Toolforge,
		"endpoints.sparql":      c.Endpoints.Sparql,
		"endpoints.campaigns":   c.Endpoints.Campaigns,
		"endpoints.commons_api": c.Endpoints.CommonsAPI,
	}
	for key, raw := range endpoints {
		if err := validateURL(raw); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %s", c.HTTP.Timeout)
	}

	switch c.Store.Driver {
	case "memory", "sqlite":
	case "redis":
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("invalid store.driver: %q (want memory, sqlite or redis)", c.Store.Driver)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1, got %v", c.Tracing.SampleRate)
	}

	return nil
}

func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("missing host")
	}
	return nil
}

// Language returns the ISO 639 base language of Locale ("de" for "de_DE.UTF-8"),
// or "" when the locale does not name a language (such as "C" or "POSIX").
func (c *Config) Language() string {
	return BaseLanguage(c.Locale)
}

// BaseLanguage extracts the base language from a POSIX or BCP 47 locale
func BaseLanguage(locale string) string {
	s := strings.TrimSpace(locale)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" {
		return ""
	}

	tag, err := language.Parse(s)
	if err != nil {
		return ""
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	return base.String()
}

// CommonsEndpoints converts the configuration for commons.NewClient
func (c *Config) CommonsEndpoints() commons.Endpoints {
	return commons.Endpoints{
		ToolforgeURL:     c.Endpoints.Toolforge,
		SparqlURL:        c.Endpoints.Sparql,
		CampaignsURL:     c.Endpoints.Campaigns,
		CommonsAPIURL:    c.Endpoints.CommonsAPI,
		AchievementsPath: c.Endpoints.AchievementsPath,
		Language:         c.Language(),
	}
}

// KVStore converts the configuration for kvstore.Open
func (c *Config) KVStore() kvstore.Config {
	return kvstore.Config{
		Driver:   c.Store.Driver,
		Path:     c.Store.Path,
		RedisURL: c.Store.RedisURL,
		Prefix:   c.Store.Prefix,
		MaxKeys:  c.Store.MaxKeys,
	}
}

// TracingSetup converts the configuration for tracing.Setup
func (c *Config) TracingSetup(serviceName, serviceVersion string) tracing.Config {
	return tracing.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    c.Tracing.Environment,
		Enabled:        c.Tracing.Enabled,
		OTLPEndpoint:   c.Tracing.Endpoint,
		SampleRate:     c.Tracing.SampleRate,
	}
}
