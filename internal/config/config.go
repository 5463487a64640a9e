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
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// DataConfig locates the source documents.
type DataConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// OutputConfig locates the generated output files.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
}

// ExtractConfig configures extraction behavior.
type ExtractConfig struct {
	// PacingSecs is the minimum spacing between per-section LLM calls,
	// imposed to respect upstream rate limits.
	PacingSecs int `yaml:"pacing_secs" mapstructure:"pacing_secs"`
	// CallTimeoutSecs bounds each individual LLM call.
	CallTimeoutSecs int `yaml:"call_timeout_secs" mapstructure:"call_timeout_secs"`
}

// SessionConfig configures the in-memory session store.
type SessionConfig struct {
	TTLHours           int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
	CleanupIntervalMin int `yaml:"cleanup_interval_min" mapstructure:"cleanup_interval_min"`
}

// ServerConfig configures the REST server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
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
	v.SetEnvPrefix("TERMSHEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults. The empty key default registers the leaf with viper so
	// AutomaticEnv surfaces TERMSHEET_ANTHROPIC_KEY through Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.max_tokens", 4096)
	v.SetDefault("data.dir", "data")
	v.SetDefault("output.dir", "out")
	v.SetDefault("extract.pacing_secs", 5)
	v.SetDefault("extract.call_timeout_secs", 120)
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.cleanup_interval_min", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://127.0.0.1:3000"})
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

// Validate checks settings that must be present before a run can start.
func (c *Config) Validate() error {
	if c.Anthropic.Key == "" {
		return eris.New("config: anthropic.key is required (set TERMSHEET_ANTHROPIC_KEY)")
	}
	return nil
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
