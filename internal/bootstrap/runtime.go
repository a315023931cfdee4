// Package bootstrap wires the runtime dependencies shared by the server and the CLIs.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"acervo/internal/cache"
	"acervo/internal/config"
	"acervo/internal/database"
	"acervo/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedBuiltIns bool
}

// InitRuntime connects to the database, applies the schema policy and connects Redis.
// An unreachable Redis is logged and yields a nil client.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return nil, nil, fmt.Errorf("schema apply failed: %w", err)
	}

	r, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		log.Printf("Redis connection warning: %v (continuing without rate limit store)", err)
	} else {
		log.Println("Redis connected successfully")
	}

	if opts.SeedBuiltIns {
		if err := seed.Communities(db); err != nil {
			return nil, nil, fmt.Errorf("failed to seed built-in communities: %w", err)
		}
	}

	return db, r, nil
}
