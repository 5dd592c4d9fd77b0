// Package config loads modelfeed settings from file, environment, and
// defaults.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for modelfeed.
type Config struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
	FallbackTTL time.Duration `mapstructure:"fallback_ttl"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	BaseDelay   time.Duration `mapstructure:"base_delay"`
	Pacing      time.Duration `mapstructure:"pacing"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RateLimit   float64       `mapstructure:"rate_limit"`
	MinViable   int           `mapstructure:"min_viable"`
	PageParams  []string      `mapstructure:"page_params"`
	PageSize    int           `mapstructure:"page_size"`
	Proxies     []string      `mapstructure:"proxies"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Load reads configuration from file, environment, and defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("cache_ttl", "30m")
	v.SetDefault("fallback_ttl", "5m")
	v.SetDefault("max_attempts", 3)
	v.SetDefault("base_delay", "500ms")
	v.SetDefault("pacing", "1s")
	v.SetDefault("timeout", "15s")
	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("min_viable", 10)
	v.SetDefault("page_params", []string{"per_page", "limit", "page_size", "count"})
	v.SetDefault("page_size", 500)
	v.SetDefault("proxies", []string{
		"https://api.allorigins.win/raw?url=",
		"https://corsproxy.io/?",
	})
	v.SetDefault("log_level", "info")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/modelfeed")
	}

	// Environment variables
	v.SetEnvPrefix("MODELFEED")
	v.AutomaticEnv()

	_ = v.BindEnv("api_key", "OPENROUTER_API_KEY")
	_ = v.BindEnv("base_url", "MODELFEED_BASE_URL")
	_ = v.BindEnv("log_level", "MODELFEED_LOG_LEVEL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
