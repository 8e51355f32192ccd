// docbind-ping verifies that the configured stores are reachable. It is the
// only binary in the repository; docbind itself is a library.
package main

import (
	"context"
	"os"

	"github.com/docbind/docbind/driver/mongodriver"
	"github.com/docbind/docbind/internal/config"
	"github.com/docbind/docbind/pkg/logger"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	logger.Init(cfg.Log.Level)

	ctx := context.Background()
	ok := true

	if cfg.Mongo.URI != "" {
		client, err := mongodriver.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
		if err != nil {
			logger.Errorf("mongodb: %v", err)
			ok = false
		} else {
			logger.Infof("mongodb ok (database %q)", cfg.Mongo.Database)
			_ = client.Disconnect(ctx)
		}
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Errorf("redis: %v", err)
			ok = false
		} else {
			logger.Infof("redis ok (%s)", cfg.Redis.Addr)
			_ = rdb.Close()
		}
	}

	if cfg.Mongo.URI == "" && cfg.Redis.Addr == "" {
		logger.Infof("no store configured; docbind would use the memory driver")
	}

	if !ok {
		os.Exit(1)
	}
}
