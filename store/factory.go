package store

import (
	"fmt"
	"net"

	"MusicHub/config"
)

// FromConfig builds the backend selected in the configuration.
func FromConfig(cfg *config.Config) (Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.DataFile)
	case "redis":
		return NewRedisStore(
			net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix,
		)
	case "mysql":
		return NewGormStore(cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
