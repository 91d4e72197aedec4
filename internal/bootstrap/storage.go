package bootstrap

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/redis/go-redis/v9"

	"github.com/GregMSThompson/novaspeak/internal/config"
	"github.com/GregMSThompson/novaspeak/internal/store"
)

// InitSettings opens the key/value backend selected by STORAGE_BACKEND.
func InitSettings(ctx context.Context, cfg *config.Config) (store.KV, error) {
	switch cfg.StorageBackend {
	case config.StoragePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
		}
		return store.NewPostgres(ctx, cfg.DatabaseURL)

	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		return store.NewRedis(client), nil

	case config.StorageFirestore:
		if cfg.ProjectID == "" {
			return nil, fmt.Errorf("PROJECTID is required for the firestore storage backend")
		}
		client, err := firestore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return store.NewFirestore(client), nil

	default:
		return store.NewSQLite(cfg.StoragePath)
	}
}
