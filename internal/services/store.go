package services

import (
	"fmt"

	"github.com/j-veylop/codetime-dashboard-tui/internal/config"
	"github.com/j-veylop/codetime-dashboard-tui/internal/db"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store"
	"github.com/j-veylop/codetime-dashboard-tui/internal/store/redis"
)

// OpenStore opens the blob store selected by cfg.StoreBackend.
func OpenStore(cfg *config.Config) (store.BlobStore, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite, "":
		database, err := db.New(cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return database, nil

	case config.BackendRedis:
		rs, err := redis.Open(redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		return rs, nil

	case config.BackendMemory:
		return store.NewMemoryStore(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
