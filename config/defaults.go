package config

import (
	"time"

	"github.com/ebogdum/lockd/registry"
)

// Registry backend names accepted in RegistryConfig.Backend
const (
	BackendMutex   = "mutex"
	BackendSharded = "sharded"
	BackendRedis   = "redis"
)

// DefaultAppConfig returns an AppConfig struct with sensible default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:      ":3000",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     120 * time.Second,
			RequestTimeout:  60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			PurgeRatePerSec: 10,
			PurgeBurst:      5,
		},
		Auth: AuthConfig{
			PurgeAPIKeys: []string{},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Registry: RegistryConfig{
			Backend:        BackendMutex,
			Shards:         registry.DefaultShardCount,
			RedisAddr:      "localhost:6379",
			RedisPassword:  "",
			RedisDB:        0,
			RedisKeyPrefix: "lockd:",
		},
	}
}
