package main

import (
	"context"
	"fmt"

	"github.com/servicemarket/admin-console/internal/core/ports"
	"github.com/servicemarket/admin-console/internal/infrastructure/config"
	"github.com/servicemarket/admin-console/internal/infrastructure/db/memory"
	"github.com/servicemarket/admin-console/internal/infrastructure/db/mongo"
	"github.com/servicemarket/admin-console/internal/infrastructure/db/redis"
)

// openStorage connects the configured session storage driver and returns it
// with its close function.
func openStorage(ctx context.Context, cfg config.StorageConfig) (ports.KeyValueStore, func(), error) {
	switch cfg.Driver {
	case config.DriverRedis:
		store, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil

	case config.DriverMongo:
		db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, nil, err
		}
		store := mongo.NewStore(db)
		return store, func() { _ = store.Close(context.Background()) }, nil

	case config.DriverMemory:
		return memory.NewStore(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
}
