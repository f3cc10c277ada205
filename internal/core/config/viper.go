package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// Environment > config file > defaults precedence; the CLI applies flags
// on top of the returned value.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	def := DefaultConfig()
	v.SetDefault("engine.formula_cost_limit", def.Engine.FormulaCostLimit)
	v.SetDefault("engine.regex_cache_size", def.Engine.RegexCacheSize)
	v.SetDefault("engine.max_pattern_length", def.Engine.MaxPatternLength)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)

	// Bind environment variables with FL_ prefix
	v.SetEnvPrefix("FL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Rule sets are documents, not configuration
	if v.IsSet("rules") || v.IsSet("engine.rules") {
		return nil, fmt.Errorf("rules not allowed in config files (pass a rule document to the command)")
	}

	cfg := &Config{
		Engine: EngineConfig{
			FormulaCostLimit: v.GetUint64("engine.formula_cost_limit"),
			RegexCacheSize:   v.GetInt("engine.regex_cache_size"),
			MaxPatternLength: v.GetInt("engine.max_pattern_length"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(v.GetString("log.level")),
			Format: strings.ToLower(v.GetString("log.format")),
		},
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateConfig checks engine limits are positive and the log settings are known.
func ValidateConfig(cfg *Config) error {
	if cfg.Engine.FormulaCostLimit == 0 {
		return fmt.Errorf("formula_cost_limit must be positive, got %d", cfg.Engine.FormulaCostLimit)
	}
	if cfg.Engine.RegexCacheSize <= 0 {
		return fmt.Errorf("regex_cache_size must be positive, got %d", cfg.Engine.RegexCacheSize)
	}
	if cfg.Engine.MaxPatternLength <= 0 {
		return fmt.Errorf("max_pattern_length must be positive, got %d", cfg.Engine.MaxPatternLength)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil || cfg.Log.Level == "" {
		return fmt.Errorf("log level must be one of debug, info, warn, error, got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("log format must be json or text, got %q", cfg.Log.Format)
	}
	return nil
}
