package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eddge/learnengine/internal/learnpath"
	"github.com/eddge/learnengine/internal/platform/logger"
)

// DefaultCacheTTL bounds how long a cached path may outlive a write made by
// another process.
const DefaultCacheTTL = 10 * time.Minute

const (
	cacheKeyPrefix = "eddge:path:"
	// A per-topic generation and a global epoch are bumped by every write.
	// Cache fills watch both, so a fill that raced a write is discarded.
	cacheGenPrefix = "eddge:pathgen:"
	cacheEpochKey  = "eddge:pathepoch"
)

// ParseRedisURL validates a Redis connection URL.
func ParseRedisURL(url string) (*redis.Options, error) {
	if url == "" {
		return nil, fmt.Errorf("cache URL is empty")
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid cache URL: %w", err)
	}
	return opts, nil
}

// DialRedis creates a Redis client and checks the connection.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := ParseRedisURL(url)
	if err != nil {
		return nil, err
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("pinging cache: %w", err)
	}
	return client, nil
}

// CachedPathRepo is a read-through Redis cache in front of another PathRepo.
// Writes go to the inner repo first and then drop the cached entry. A fill
// only lands if no write touched the topic since the fill began. Cache
// failures are logged and never fail the call.
type CachedPathRepo struct {
	inner PathRepo
	rdb   *redis.Client
	ttl   time.Duration
	log   *logger.Logger
}

var _ PathRepo = (*CachedPathRepo)(nil)

// NewCachedPathRepo wraps inner with a Redis cache.
func NewCachedPathRepo(inner PathRepo, rdb *redis.Client, ttl time.Duration, log *logger.Logger) *CachedPathRepo {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &CachedPathRepo{inner: inner, rdb: rdb, ttl: ttl, log: log.With("component", "path-cache")}
}

func cacheKey(topicID string) string { return cacheKeyPrefix + topicID }
func genKey(topicID string) string   { return cacheGenPrefix + topicID }

func (c *CachedPathRepo) Get(ctx context.Context, topicID string) (*PathRecord, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(topicID)).Bytes()
	switch {
	case err == nil:
		var rec PathRecord
		if err := json.Unmarshal(raw, &rec); err == nil {
			return &rec, nil
		}
		c.log.Warn("dropping undecodable cache entry", "topic", topicID)
		c.drop(ctx, topicID)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache read failed", "topic", topicID, "error", err)
		return c.inner.Get(ctx, topicID)
	}
	return c.fill(ctx, topicID)
}

// fill reads the inner repo under WATCH and caches the record unless a
// write bumped the topic generation or the epoch meanwhile.
func (c *CachedPathRepo) fill(ctx context.Context, topicID string) (*PathRecord, error) {
	var (
		rec     *PathRecord
		readErr error
		read    bool
	)
	werr := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		rec, readErr = c.inner.Get(ctx, topicID)
		read = true
		if readErr != nil || rec == nil {
			return nil
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, cacheKey(topicID), data, c.ttl)
			return nil
		})
		return err
	}, genKey(topicID), cacheEpochKey)

	if !read {
		rec, readErr = c.inner.Get(ctx, topicID)
	}
	if readErr != nil {
		return nil, readErr
	}
	switch {
	case errors.Is(werr, redis.TxFailedErr):
		c.log.Debug("cache fill skipped, path changed", "topic", topicID)
	case werr != nil:
		c.log.Warn("cache write failed", "topic", topicID, "error", werr)
	}
	return rec, nil
}

func (c *CachedPathRepo) Save(ctx context.Context, p learnpath.Path, expectedVersion int64) (int64, error) {
	v, err := c.inner.Save(ctx, p, expectedVersion)
	c.invalidate(ctx, p.TopicID)
	return v, err
}

func (c *CachedPathRepo) List(ctx context.Context) ([]PathRecord, error) {
	return c.inner.List(ctx)
}

func (c *CachedPathRepo) Delete(ctx context.Context, topicID string) error {
	err := c.inner.Delete(ctx, topicID)
	c.invalidate(ctx, topicID)
	return err
}

func (c *CachedPathRepo) DeleteAll(ctx context.Context) (int, error) {
	n, err := c.inner.DeleteAll(ctx)

	if ierr := c.rdb.Incr(ctx, cacheEpochKey).Err(); ierr != nil {
		c.log.Warn("cache epoch bump failed", "error", ierr)
	}
	iter := c.rdb.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if derr := c.rdb.Del(ctx, iter.Val()).Err(); derr != nil {
			c.log.Warn("cache delete failed", "key", iter.Val(), "error", derr)
		}
	}
	if serr := iter.Err(); serr != nil {
		c.log.Warn("cache scan failed", "error", serr)
	}
	return n, err
}

// invalidate bumps the topic generation and drops the cached entry.
func (c *CachedPathRepo) invalidate(ctx context.Context, topicID string) {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, genKey(topicID))
		p.Expire(ctx, genKey(topicID), c.ttl)
		p.Del(ctx, cacheKey(topicID))
		return nil
	})
	if err != nil {
		c.log.Warn("cache invalidate failed", "topic", topicID, "error", err)
	}
}

func (c *CachedPathRepo) drop(ctx context.Context, topicID string) {
	if err := c.rdb.Del(ctx, cacheKey(topicID)).Err(); err != nil {
		c.log.Warn("cache delete failed", "topic", topicID, "error", err)
	}
}
