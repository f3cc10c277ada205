// Package config provides configuration management for formlogic.
package config

// EngineConfig holds limits applied to every rules engine the CLI creates.
type EngineConfig struct {
	FormulaCostLimit uint64
	RegexCacheSize   int
	MaxPatternLength int
}

// LogConfig selects log verbosity and output encoding.
type LogConfig struct {
	Level  string
	Format string
}

// Config is the complete formlogic configuration.
type Config struct {
	Engine EngineConfig
	Log    LogConfig
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		Engine: EngineConfig{
			FormulaCostLimit: 10_000,
			RegexCacheSize:   128,
			MaxPatternLength: 500,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
