package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/pagetree/internal/platform/logger"
)

// Compare-and-delete so a holder whose TTL lapsed never frees a lock that
// someone else has since taken.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisOptions struct {
	Prefix string
	// TTL bounds how long a crashed holder can keep a key.
	TTL time.Duration
	// Poll is the retry interval while waiting.
	Poll time.Duration
}

// Redis is a Locker shared by every process pointing at the same server.
type Redis struct {
	rdb  goredis.UniversalClient
	log  *logger.Logger
	opts RedisOptions
}

func NewRedis(rdb goredis.UniversalClient, log *logger.Logger, opts RedisOptions) *Redis {
	if opts.Prefix == "" {
		opts.Prefix = "pagetree:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 30 * time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = 25 * time.Millisecond
	}
	return &Redis{rdb: rdb, log: log.With("service", "RedisLocker"), opts: opts}
}

// Dial connects and pings like the rest of our redis clients do.
func Dial(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

func (r *Redis) Acquire(ctx context.Context, keys []string, wait time.Duration) (Release, error) {
	keys = normalize(keys)
	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	held := make([]string, 0, len(keys))
	releaseAll := func() {
		// Release must still run after the caller's context is done.
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := releaseScript.Run(rctx, r.rdb, []string{held[i]}, token).Err(); err != nil && !errors.Is(err, goredis.Nil) {
				r.log.Warn("lock release failed", "key", held[i], "error", err)
			}
		}
	}

	for _, k := range keys {
		full := r.opts.Prefix + k
		for {
			ok, err := r.rdb.SetNX(ctx, full, token, r.opts.TTL).Result()
			if err != nil {
				releaseAll()
				return nil, fmt.Errorf("lock %s: %w", k, err)
			}
			if ok {
				held = append(held, full)
				break
			}
			if !time.Now().Before(deadline) {
				releaseAll()
				return nil, ErrTimeout
			}
			select {
			case <-time.After(min(r.opts.Poll, time.Until(deadline))):
			case <-ctx.Done():
				releaseAll()
				return nil, ctx.Err()
			}
		}
	}
	var once sync.Once
	return func() { once.Do(releaseAll) }, nil
}
