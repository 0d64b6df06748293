package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Secrets   SecretsConfig   `mapstructure:"secrets"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// AnalyticsConfig describes the upstream view and date range. ViewID may be
// empty here; the report handler rejects requests until it is set.
type AnalyticsConfig struct {
	ViewID     string        `mapstructure:"view_id"`
	StartDate  string        `mapstructure:"start_date"`
	EndDate    string        `mapstructure:"end_date"`
	MaxResults int64         `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type SecretsConfig struct {
	Source             string `mapstructure:"source"`
	ServiceAccountName string `mapstructure:"service_account_name"`
	BearerTokenName    string `mapstructure:"bearer_token_name"`
	Region             string `mapstructure:"region"`
	Prefix             string `mapstructure:"prefix"`
}

type LoggingConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	Output       string `mapstructure:"output"`
	FileRotation bool   `mapstructure:"file_rotation"`
	MaxSize      int    `mapstructure:"max_size"`
	MaxBackups   int    `mapstructure:"max_backups"`
	MaxAge       int    `mapstructure:"max_age"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Path      string `mapstructure:"path"`
	Namespace string `mapstructure:"namespace"`
}

type TracingConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	Endpoint    string  `mapstructure:"endpoint"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

const (
	SecretSourceEnv = "env"
	SecretSourceSSM = "ssm"
)

// maxResultsLimit is the largest page the Core Reporting API returns
const maxResultsLimit = 10000

// Upstream accepts YYYY-MM-DD, today, yesterday or NdaysAgo.
var datePattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}|today|yesterday|\d+daysAgo)$`)

// envBindings maps config keys to the environment variables the functions
// runtime provides
var envBindings = map[string][]string{
	"server.port":                  {"PORT"},
	"analytics.view_id":            {"GA_VIEW_ID"},
	"analytics.start_date":         {"GA_START_DATE"},
	"analytics.end_date":           {"GA_END_DATE"},
	"analytics.max_results":        {"GA_MAX_RESULTS"},
	"analytics.timeout":            {"GA_TIMEOUT"},
	"secrets.source":               {"GA_SECRETS_SOURCE"},
	"secrets.service_account_name": {"GA_SVC_ACCOUNT_SECRET"},
	"secrets.bearer_token_name":    {"GA_API_TOKEN_SECRET"},
	"secrets.region":               {"AWS_REGION", "AWS_DEFAULT_REGION"},
	"secrets.prefix":               {"GA_SECRETS_PREFIX"},
	"logging.level":                {"LOG_LEVEL"},
	"logging.format":               {"LOG_FORMAT"},
	"logging.output":               {"LOG_OUTPUT"},
	"metrics.enabled":              {"METRICS_ENABLED"},
	"tracing.enabled":              {"TRACING_ENABLED"},
	"tracing.endpoint":             {"TRACING_ENDPOINT"},
}

// Load loads configuration from an optional YAML file, defaults and the
// environment. An empty configPath means environment only.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration. A missing view ID is not an error
// here because the endpoints must still answer preflight and 401 responses.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if !datePattern.MatchString(c.Analytics.StartDate) {
		return fmt.Errorf("invalid start date: %q", c.Analytics.StartDate)
	}

	if !datePattern.MatchString(c.Analytics.EndDate) {
		return fmt.Errorf("invalid end date: %q", c.Analytics.EndDate)
	}

	if c.Analytics.MaxResults < 0 || c.Analytics.MaxResults > maxResultsLimit {
		return fmt.Errorf("max results must be between 0 and %d", maxResultsLimit)
	}

	switch c.Secrets.Source {
	case SecretSourceEnv:
	case SecretSourceSSM:
		if c.Secrets.Region == "" {
			return fmt.Errorf("region is required when secrets source is ssm")
		}
	default:
		return fmt.Errorf("unknown secrets source: %q", c.Secrets.Source)
	}

	if c.Secrets.ServiceAccountName == "" || c.Secrets.BearerTokenName == "" {
		return fmt.Errorf("secret names must not be empty")
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")

	// Analytics defaults
	v.SetDefault("analytics.view_id", "")
	v.SetDefault("analytics.start_date", "3daysAgo")
	v.SetDefault("analytics.end_date", "today")
	v.SetDefault("analytics.max_results", 0)
	v.SetDefault("analytics.timeout", "30s")

	// Secrets defaults
	v.SetDefault("secrets.source", SecretSourceEnv)
	v.SetDefault("secrets.service_account_name", "GA_SVC_ACCOUNT")
	v.SetDefault("secrets.bearer_token_name", "GA_API_TOKEN")
	v.SetDefault("secrets.region", "")
	v.SetDefault("secrets.prefix", "")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.namespace", "ga_proxy")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "ga-view-proxy")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")
	v.SetDefault("tracing.sample_rate", 0.1)
}
