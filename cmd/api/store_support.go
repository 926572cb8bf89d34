package main

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/roicid/proyectomodulo2/internal/config"
	"github.com/roicid/proyectomodulo2/internal/users"
)

// openUserStore は STORE_DRIVER に応じたユーザーストアを開きます。
func openUserStore(ctx context.Context, cfg *config.Config) (users.Store, error) {
	switch cfg.StoreDriver {
	case config.StoreRedis:
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient := redis.NewClient(opt)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			_ = redisClient.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return users.NewRedisStore(redisClient), nil
	case config.StoreSQLite:
		return users.OpenSQLiteStore(cfg.SQLitePath)
	case config.StoreMemory:
		return users.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
