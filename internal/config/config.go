// Package config loads the geogpt configuration: a config.yaml next to
// the working directory, GEOGPT_* environment overrides, and the
// conventional provider env vars (LLM_PROVIDER, OPENAI_API_KEY, ...).
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Postal  PostalConfig  `yaml:"postal" mapstructure:"postal"`
	Geocode GeocodeConfig `yaml:"geocode" mapstructure:"geocode"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// LLMConfig selects the fallback provider and its credentials.
type LLMConfig struct {
	Provider  string         `yaml:"provider" mapstructure:"provider"`
	OpenAI    ProviderConfig `yaml:"openai" mapstructure:"openai"`
	Google    ProviderConfig `yaml:"google" mapstructure:"google"`
	Anthropic ProviderConfig `yaml:"anthropic" mapstructure:"anthropic"`
	DeepSeek  ProviderConfig `yaml:"deepseek" mapstructure:"deepseek"`
}

// ProviderConfig holds one provider's API key and model override.
type ProviderConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ForProvider returns the key/model pair for a provider name, or false
// when the name is unknown.
func (c LLMConfig) ForProvider(provider string) (ProviderConfig, bool) {
	switch provider {
	case "openai":
		return c.OpenAI, true
	case "google":
		return c.Google, true
	case "anthropic":
		return c.Anthropic, true
	case "deepseek":
		return c.DeepSeek, true
	default:
		return ProviderConfig{}, false
	}
}

// PostalConfig configures the offline dataset tier.
type PostalConfig struct {
	CacheDir         string   `yaml:"cache_dir" mapstructure:"cache_dir"`
	PreloadCountries []string `yaml:"preload_countries" mapstructure:"preload_countries"`
}

// ResolveCacheDir returns the configured cache directory, defaulting to
// the user cache dir.
func (p PostalConfig) ResolveCacheDir() (string, error) {
	if p.CacheDir != "" {
		return p.CacheDir, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", eris.Wrap(err, "config: resolve cache dir")
	}
	return filepath.Join(base, "geogpt"), nil
}

// GeocodeConfig tunes the completeness rule that triggers LLM fallback.
type GeocodeConfig struct {
	RequireCoordinates bool `yaml:"require_coordinates" mapstructure:"require_coordinates"`
	RequireCity        bool `yaml:"require_city" mapstructure:"require_city"`
	RequirePostalCode  bool `yaml:"require_postal_code" mapstructure:"require_postal_code"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	// .env in the working directory is honored for parity with the
	// provider env-var conventions; absence is fine.
	_ = godotenv.Load()

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GEOGPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional provider variables double as overrides.
	_ = v.BindEnv("llm.provider", "GEOGPT_LLM_PROVIDER", "LLM_PROVIDER")
	_ = v.BindEnv("llm.openai.key", "GEOGPT_LLM_OPENAI_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("llm.google.key", "GEOGPT_LLM_GOOGLE_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("llm.anthropic.key", "GEOGPT_LLM_ANTHROPIC_KEY", "ANTHROPIC_API_KEY")
	_ = v.BindEnv("llm.deepseek.key", "GEOGPT_LLM_DEEPSEEK_KEY", "DEEPSEEK_API_KEY")
	_ = v.BindEnv("llm.openai.model", "GEOGPT_LLM_OPENAI_MODEL", "LLM_MODEL_OPENAI")
	_ = v.BindEnv("llm.google.model", "GEOGPT_LLM_GOOGLE_MODEL", "LLM_MODEL_GOOGLE")
	_ = v.BindEnv("llm.anthropic.model", "GEOGPT_LLM_ANTHROPIC_MODEL", "LLM_MODEL_ANTHROPIC")
	_ = v.BindEnv("llm.deepseek.model", "GEOGPT_LLM_DEEPSEEK_MODEL", "LLM_MODEL_DEEPSEEK")

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("geocode.require_coordinates", true)
	v.SetDefault("geocode.require_city", true)
	v.SetDefault("geocode.require_postal_code", true)
	v.SetDefault("postal.preload_countries", []string{})

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
