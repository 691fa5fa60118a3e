package db

import (
	"fmt"

	"inkwell/cms/db/cache"
	"inkwell/cms/db/sqlite"
	"inkwell/cms/pkg/logger"

	"go.uber.org/zap"
)

// Manager owns every storage connection. SQLite is required; Redis is
// optional and its absence only disables session caching.
type Manager struct {
	DB    *DB
	Cache *Cache
}

// Config holds storage connection settings.
type Config struct {
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewManager opens the configured stores.
func NewManager(cfg *Config) (*Manager, error) {
	sqliteDB, err := sqlite.NewSQLiteDB(cfg.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to init SQLite: %w", err)
	}
	logger.Info("SQLite initialized", zap.String("path", cfg.SQLitePath))

	manager := &Manager{DB: NewDB(sqliteDB)}

	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("Redis connection failed, continuing without session cache",
				zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			logger.Info("Redis connected", zap.String("addr", cfg.RedisAddr))
			manager.Cache = NewCache(redisCache)
		}
	}

	return manager, nil
}

// HasCache reports whether the optional Redis cache is available.
func (m *Manager) HasCache() bool {
	return m.Cache != nil && m.Cache.Redis != nil
}

// Close closes every open connection.
func (m *Manager) Close() error {
	var errs []error

	if m.DB != nil {
		if err := m.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("SQLite close error: %w", err))
		}
	}
	if m.Cache != nil {
		if err := m.Cache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("Redis close error: %w", err))
		}
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
