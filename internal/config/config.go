package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	EIA       EIAConfig       `yaml:"eia" mapstructure:"eia"`
	Metadata  MetadataConfig  `yaml:"metadata" mapstructure:"metadata"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Classify  ClassifyConfig  `yaml:"classify" mapstructure:"classify"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Output    OutputConfig    `yaml:"output" mapstructure:"output"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EIAConfig configures the generation-feed client.
type EIAConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Period   string `yaml:"period" mapstructure:"period"`
	PageSize int    `yaml:"page_size" mapstructure:"page_size"`
}

// MetadataConfig locates the plant metadata reference table.
type MetadataConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	URL  string `yaml:"url" mapstructure:"url"`
}

// AnthropicConfig holds classifier API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ClassifyConfig tunes the batched classification orchestrator.
type ClassifyConfig struct {
	BatchSize       int           `yaml:"batch_size" mapstructure:"batch_size"`
	InterBatchDelay time.Duration `yaml:"inter_batch_delay" mapstructure:"inter_batch_delay"`
	MaxTokens       int64         `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature     float64       `yaml:"temperature" mapstructure:"temperature"`
}

// StoreConfig configures the run store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// OutputConfig configures file exports.
type OutputConfig struct {
	Dir string `yaml:"dir" mapstructure:"dir"`
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
	v.SetEnvPrefix("PLANTENRICH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("eia.base_url", "https://api.eia.gov/v2")
	v.SetDefault("eia.period", "2025-02")
	v.SetDefault("eia.page_size", 5000)
	v.SetDefault("metadata.path", "data/raw/Power_Plants.csv")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("classify.batch_size", 25)
	v.SetDefault("classify.inter_batch_delay", 2*time.Second)
	v.SetDefault("classify.max_tokens", 1000)
	v.SetDefault("classify.temperature", 0.1)
	v.SetDefault("store.path", "plantenrich.db")
	v.SetDefault("output.dir", "data/enriched")
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
