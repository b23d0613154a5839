package config

import (
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/poi-sync/internal/resilience"
)

// Config holds the full application configuration.
type Config struct {
	Categories  map[string]CategoryConfig `yaml:"categories" mapstructure:"categories"`
	Identity    IdentityConfig            `yaml:"identity" mapstructure:"identity"`
	Geo         GeoConfig                 `yaml:"geo" mapstructure:"geo"`
	Sync        SyncConfig                `yaml:"sync" mapstructure:"sync"`
	Store       StoreConfig               `yaml:"store" mapstructure:"store"`
	Notion      NotionConfig              `yaml:"notion" mapstructure:"notion"`
	Diagnostics DiagnosticsConfig         `yaml:"diagnostics" mapstructure:"diagnostics"`
	Log         LogConfig                 `yaml:"log" mapstructure:"log"`
}

// CategoryConfig describes one dataset synchronized into the remote store.
type CategoryConfig struct {
	// Tag is the category value written to the remote store.
	Tag string `yaml:"tag" mapstructure:"tag"`
	// Mode is "merge" (reconcile progress files) or "replace" (bulk replace).
	Mode string `yaml:"mode" mapstructure:"mode"`
	// Files are read in order; earlier files take precedence.
	Files       []string `yaml:"files" mapstructure:"files"`
	Boilerplate string   `yaml:"boilerplate" mapstructure:"boilerplate"`
}

// IdentityConfig selects how place names are compared.
type IdentityConfig struct {
	Normalize string `yaml:"normalize" mapstructure:"normalize"` // exact | fold
}

// GeoConfig configures coordinate classification and region fallback.
type GeoConfig struct {
	RulesFile string       `yaml:"rules_file" mapstructure:"rules_file"`
	Bounds    BoundsConfig `yaml:"bounds" mapstructure:"bounds"`
}

// BoundsConfig is the plausible bounding box for geocoded coordinates.
type BoundsConfig struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// SyncConfig configures pacing and resilience of remote store calls.
type SyncConfig struct {
	WriteDelayMs int           `yaml:"write_delay_ms" mapstructure:"write_delay_ms"`
	BatchSize    int           `yaml:"batch_size" mapstructure:"batch_size"`
	Retry        RetryConfig   `yaml:"retry" mapstructure:"retry"`
	Circuit      CircuitConfig `yaml:"circuit" mapstructure:"circuit"`
}

// RetryConfig holds retry settings for remote calls.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig holds circuit breaker settings for the remote store.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// WriteDelay is the minimum gap between consecutive remote writes.
func (s SyncConfig) WriteDelay() time.Duration {
	return time.Duration(s.WriteDelayMs) * time.Millisecond
}

// Policy returns the retry policy for remote calls. Zero knobs keep the
// resilience defaults; a negative jitter keeps the default jitter.
func (r RetryConfig) Policy() resilience.RetryConfig {
	p := resilience.DefaultRetryConfig()
	if r.MaxAttempts > 0 {
		p.MaxAttempts = r.MaxAttempts
	}
	if r.InitialBackoffMs > 0 {
		p.InitialBackoff = time.Duration(r.InitialBackoffMs) * time.Millisecond
	}
	if r.MaxBackoffMs > 0 {
		p.MaxBackoff = time.Duration(r.MaxBackoffMs) * time.Millisecond
	}
	if r.Multiplier > 0 {
		p.Multiplier = r.Multiplier
	}
	if r.JitterFraction >= 0 {
		p.JitterFraction = r.JitterFraction
	}
	return p
}

// Policy returns the breaker settings for the remote store.
func (c CircuitConfig) Policy() resilience.CircuitBreakerConfig {
	p := resilience.DefaultCircuitBreakerConfig()
	if c.FailureThreshold > 0 {
		p.FailureThreshold = c.FailureThreshold
	}
	if c.ResetTimeoutSecs > 0 {
		p.ResetTimeout = time.Duration(c.ResetTimeoutSecs) * time.Second
	}
	return p
}

// StoreConfig configures the remote store backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// NotionConfig holds Notion API credentials for the notion store driver.
type NotionConfig struct {
	Token      string  `yaml:"token" mapstructure:"token"`
	DatabaseID string  `yaml:"database_id" mapstructure:"database_id"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// DiagnosticsConfig configures the manual-review outputs.
type DiagnosticsConfig struct {
	Path     string   `yaml:"path" mapstructure:"path"`
	XLSXPath string   `yaml:"xlsx_path" mapstructure:"xlsx_path"`
	S3       S3Config `yaml:"s3" mapstructure:"s3"`
}

// S3Config configures archiving of diagnostics to S3-compatible storage.
// Archiving is disabled when Endpoint is empty.
type S3Config struct {
	Endpoint  string `yaml:"endpoint" mapstructure:"endpoint"`
	Bucket    string `yaml:"bucket" mapstructure:"bucket"`
	AccessKey string `yaml:"access_key" mapstructure:"access_key"`
	SecretKey string `yaml:"secret_key" mapstructure:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl" mapstructure:"use_ssl"`
	Prefix    string `yaml:"prefix" mapstructure:"prefix"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("POISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("identity.normalize", "exact")
	v.SetDefault("geo.bounds.min_lat", -24.30)
	v.SetDefault("geo.bounds.max_lat", -23.70)
	v.SetDefault("geo.bounds.min_lng", -46.80)
	v.SetDefault("geo.bounds.max_lng", -46.00)
	v.SetDefault("sync.write_delay_ms", 500)
	v.SetDefault("sync.batch_size", 50)
	v.SetDefault("sync.retry.max_attempts", 3)
	v.SetDefault("sync.retry.initial_backoff_ms", 500)
	v.SetDefault("sync.retry.max_backoff_ms", 10000)
	v.SetDefault("sync.retry.multiplier", 2.0)
	v.SetDefault("sync.retry.jitter_fraction", 0.25)
	v.SetDefault("sync.circuit.failure_threshold", 5)
	v.SetDefault("sync.circuit.reset_timeout_secs", 30)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("notion.rate_limit", 3.0)
	v.SetDefault("diagnostics.path", "manual_review.json")
	v.SetDefault("diagnostics.s3.prefix", "diagnostics")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a run depends on. All problems are reported
// together.
func (c *Config) Validate() error {
	var problems []string

	switch c.Identity.Normalize {
	case "exact", "fold":
	default:
		problems = append(problems, "identity.normalize must be exact or fold")
	}

	switch c.Store.Driver {
	case "postgres", "sqlite":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "notion":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.DatabaseID == "" {
			problems = append(problems, "notion.database_id is required")
		}
	case "memory":
	default:
		problems = append(problems, "store.driver must be postgres, sqlite, notion or memory")
	}

	if c.Sync.BatchSize <= 0 {
		problems = append(problems, "sync.batch_size must be positive")
	}
	if c.Sync.WriteDelayMs < 0 {
		problems = append(problems, "sync.write_delay_ms must not be negative")
	}
	b := c.Geo.Bounds
	if b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng {
		problems = append(problems, "geo.bounds min must be below max")
	}

	for _, name := range c.CategoryNames() {
		if err := c.Categories[name].validate(); err != nil {
			problems = append(problems, "categories."+name+": "+err.Error())
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c CategoryConfig) validate() error {
	if c.Tag == "" {
		return eris.New("tag is required")
	}
	if len(c.Files) == 0 {
		return eris.New("at least one file is required")
	}
	switch c.Mode {
	case "merge":
	case "replace":
		if len(c.Files) != 1 {
			return eris.Errorf("replace mode takes exactly one authoritative file, got %d", len(c.Files))
		}
	default:
		return eris.Errorf("mode must be merge or replace, got %q", c.Mode)
	}
	return nil
}

// Category returns the named category configuration.
func (c *Config) Category(name string) (CategoryConfig, error) {
	cat, ok := c.Categories[name]
	if !ok {
		return CategoryConfig{}, eris.Errorf("config: unknown category %q (configured: %s)",
			name, strings.Join(c.CategoryNames(), ", "))
	}
	return cat, nil
}

// CategoryNames returns the configured category names in sorted order.
func (c *Config) CategoryNames() []string {
	names := make([]string, 0, len(c.Categories))
	for name := range c.Categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
