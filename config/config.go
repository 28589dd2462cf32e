// Package config provides configuration management for lockd.
// It handles loading and validating configuration from YAML/JSON files and
// environment variables.
package config

import "time"

// AppConfig represents the complete application configuration
type AppConfig struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
	Registry RegistryConfig `koanf:"registry"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr      string        `koanf:"listen_addr"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// PurgeRatePerSec / PurgeBurst limit how often /purge may be called.
	PurgeRatePerSec float64 `koanf:"purge_rate_per_sec"`
	PurgeBurst      int     `koanf:"purge_burst"`
}

// AuthConfig holds authentication configuration. An empty key list leaves
// /purge unauthenticated.
type AuthConfig struct {
	PurgeAPIKeys []string `koanf:"purge_api_keys"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// RegistryConfig selects and configures the lock registry backend
type RegistryConfig struct {
	// Backend is one of "mutex", "sharded" or "redis".
	Backend string `koanf:"backend"`

	// Shards applies to the sharded backend only.
	Shards int `koanf:"shards"`

	RedisAddr      string `koanf:"redis_addr"`
	RedisPassword  string `koanf:"redis_password"`
	RedisDB        int    `koanf:"redis_db"`
	RedisKeyPrefix string `koanf:"redis_key_prefix"`
}
