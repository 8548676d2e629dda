package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Apollo    ApolloConfig    `yaml:"apollo" mapstructure:"apollo"`
	WebSearch WebSearchConfig `yaml:"websearch" mapstructure:"websearch"`
	Places    PlacesConfig    `yaml:"places" mapstructure:"places"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Retry     RetryConfig     `yaml:"retry" mapstructure:"retry"`
	Circuit   CircuitConfig   `yaml:"circuit" mapstructure:"circuit"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ApolloConfig holds Apollo.io API settings.
type ApolloConfig struct {
	Key            string  `yaml:"key" mapstructure:"key"`
	BaseURL        string  `yaml:"base_url" mapstructure:"base_url"`
	RequestsPerSec float64 `yaml:"requests_per_sec" mapstructure:"requests_per_sec"`
}

// WebSearchConfig holds web search API settings.
type WebSearchConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PlacesConfig holds Google Places API settings.
type PlacesConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PipelineConfig configures enrichment behavior: candidate acceptance and
// the confidence/quality grading thresholds.
type PipelineConfig struct {
	MatchAcceptThreshold  int    `yaml:"match_accept_threshold" mapstructure:"match_accept_threshold"`
	SearchPerPage         int    `yaml:"search_per_page" mapstructure:"search_per_page"`
	ConfidenceHighFound   int    `yaml:"confidence_high_found" mapstructure:"confidence_high_found"`
	ConfidenceHighMissing int    `yaml:"confidence_high_missing" mapstructure:"confidence_high_missing"`
	ConfidenceMediumFound int    `yaml:"confidence_medium_found" mapstructure:"confidence_medium_found"`
	QualityCompleteFields int    `yaml:"quality_complete_fields" mapstructure:"quality_complete_fields"`
	QualityPartialFields  int    `yaml:"quality_partial_fields" mapstructure:"quality_partial_fields"`
	StepTimeoutSecs       int    `yaml:"step_timeout_secs" mapstructure:"step_timeout_secs"`
	ProfileCacheTTLHours  int    `yaml:"profile_cache_ttl_hours" mapstructure:"profile_cache_ttl_hours"`
	RefDataPath           string `yaml:"ref_data_path" mapstructure:"ref_data_path"`
}

// RetryConfig configures external-call retries.
type RetryConfig struct {
	MaxAttempts      int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	Multiplier       float64 `yaml:"multiplier" mapstructure:"multiplier"`
	JitterFraction   float64 `yaml:"jitter_fraction" mapstructure:"jitter_fraction"`
}

// CircuitConfig configures the per-provider circuit breakers.
type CircuitConfig struct {
	FailureThreshold int `yaml:"failure_threshold" mapstructure:"failure_threshold"`
	ResetTimeoutSecs int `yaml:"reset_timeout_secs" mapstructure:"reset_timeout_secs"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentContacts int `yaml:"max_concurrent_contacts" mapstructure:"max_concurrent_contacts"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment. An empty path
// searches for config.yaml in the working directory; a non-empty path
// names a file that must exist.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("ENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.max_concurrent_contacts", 5)
	v.SetDefault("apollo.base_url", "https://api.apollo.io/v1")
	v.SetDefault("apollo.requests_per_sec", 2.0)
	v.SetDefault("websearch.base_url", "https://google.serper.dev")
	v.SetDefault("places.base_url", "https://places.googleapis.com/v1")
	v.SetDefault("pipeline.match_accept_threshold", 3)
	v.SetDefault("pipeline.search_per_page", 5)
	v.SetDefault("pipeline.confidence_high_found", 6)
	v.SetDefault("pipeline.confidence_high_missing", 2)
	v.SetDefault("pipeline.confidence_medium_found", 3)
	v.SetDefault("pipeline.quality_complete_fields", 5)
	v.SetDefault("pipeline.quality_partial_fields", 2)
	v.SetDefault("pipeline.step_timeout_secs", 30)
	v.SetDefault("pipeline.profile_cache_ttl_hours", 24)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 250)
	v.SetDefault("retry.max_backoff_ms", 5000)
	v.SetDefault("retry.multiplier", 2.0)
	v.SetDefault("retry.jitter_fraction", 0.2)
	v.SetDefault("circuit.failure_threshold", 5)
	v.SetDefault("circuit.reset_timeout_secs", 30)

	// The searched file is optional; an explicitly named one is not.
	// A missing explicit file surfaces as a path error, not as
	// ConfigFileNotFoundError, so it still fails here.
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
