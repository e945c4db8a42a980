package storage

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Open builds the store selected by cfg.Driver, wrapped in a redis cache when cfg.Cache.Enabled.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	primary, err := openPrimary(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage opened", zap.String("driver", cfg.Driver))

	if !cfg.Cache.Enabled || cfg.Driver == "redis" || cfg.Driver == "memory" || cfg.Driver == "none" {
		return primary, nil
	}

	client, err := newRedisClient(ctx, cfg.Redis)
	if err != nil {
		primary.Close()
		return nil, err
	}
	cache := NewRedisStore(client, cfg.Redis.Prefix+"cache:", cfg.Cache.TTL)
	logger.Info("storage cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Cache.TTL))
	return NewCachedStore(primary, cache, logger.Named("storage-cache")), nil
}

func openPrimary(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(), nil
	case "none":
		return NopStore{}, nil
	case "sqlite":
		s, err := NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(cfg.Postgres.DSN())
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	case "redis":
		client, err := newRedisClient(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Redis.Prefix, cfg.Redis.TTL), nil
	case "mongo":
		db, err := ConnectMongoDB(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		return NewMongoStore(db, cfg.Mongo.Collection), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

func newRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}
