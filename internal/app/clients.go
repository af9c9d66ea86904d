package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pagetree/internal/config"
	"github.com/yungbote/pagetree/internal/platform/locker"
	"github.com/yungbote/pagetree/internal/platform/logger"
)

type Clients struct {
	// Redis is nil when no address is configured.
	Redis  *goredis.Client
	Locker locker.Locker
}

func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	log.Info("Wiring clients...")

	if cfg.Redis.Addr == "" {
		log.Info("Tree locks are process-local (no redis address)")
		return Clients{Locker: locker.NewLocal()}, nil
	}
	rdb, err := locker.Dial(ctx, cfg.Redis.Addr)
	if err != nil {
		return Clients{}, fmt.Errorf("init redis locker: %w", err)
	}
	log.Info("Tree locks are shared through redis", "addr", cfg.Redis.Addr)
	return Clients{
		Redis: rdb,
		Locker: locker.NewRedis(rdb, log, locker.RedisOptions{
			Prefix: cfg.Redis.Prefix,
			TTL:    cfg.Redis.LockTTL.Duration,
		}),
	}, nil
}

func (c Clients) Close() {
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
