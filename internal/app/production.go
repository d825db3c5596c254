package app

import (
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/appsheet"
)

// NewProductionService wires the AppSheet source and the Redis row cache.
// A nil Redis client disables caching.
func NewProductionService(cfg *Config, redisClient *redis.Client, logger *slog.Logger) *production.Service {
	source := appsheet.NewClient(cfg.AppSheet(), nil, logger)
	var rowCache *production.Cache
	if redisClient != nil {
		rowCache = production.NewCache(redisClient, cfg.CacheTTL)
	}
	return production.NewService(source, rowCache, logger)
}
