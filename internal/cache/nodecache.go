package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/logger"
	"github.com/MollytheCatLoca/plataforma-dge-matematicas-sub000/internal/utils"
)

// NodeCache is a redis-backed read cache for node detail payloads. It is
// strictly best-effort: a miss or a redis failure falls through to the
// database, and node writes invalidate the cached entry.
type NodeCache interface {
	Get(ctx context.Context, nodeID string) ([]byte, bool)
	Set(ctx context.Context, nodeID string, payload []byte)
	Invalidate(ctx context.Context, nodeIDs ...string)
	Close() error
}

type nodeCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

// New returns a NodeCache backed by REDIS_ADDR, or (nil, nil) when no address
// is configured so callers can run without a cache.
func New(log *logger.Logger) (NodeCache, error) {
	addr := strings.TrimSpace(utils.GetEnv("REDIS_ADDR", "", log))
	if addr == "" {
		return nil, nil
	}
	ttlSeconds := utils.GetEnvAsInt("NODE_CACHE_TTL_SECONDS", 300, log)

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &nodeCache{
		log: log.With("service", "NodeCache"),
		rdb: rdb,
		ttl: time.Duration(ttlSeconds) * time.Second,
	}, nil
}

func cacheKey(nodeID string) string {
	return "curriculum:node:" + nodeID
}

func (c *nodeCache) Get(ctx context.Context, nodeID string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, cacheKey(nodeID)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("node cache read failed", "error", err, "node_id", nodeID)
		}
		return nil, false
	}
	return raw, true
}

func (c *nodeCache) Set(ctx context.Context, nodeID string, payload []byte) {
	if err := c.rdb.Set(ctx, cacheKey(nodeID), payload, c.ttl).Err(); err != nil {
		c.log.Warn("node cache write failed", "error", err, "node_id", nodeID)
	}
}

func (c *nodeCache) Invalidate(ctx context.Context, nodeIDs ...string) {
	if len(nodeIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		keys = append(keys, cacheKey(id))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("node cache invalidation failed", "error", err)
	}
}

func (c *nodeCache) Close() error {
	return c.rdb.Close()
}
