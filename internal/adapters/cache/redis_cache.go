package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"route-planner-service/internal/domain"
	"route-planner-service/internal/platform/obs"
	"route-planner-service/internal/ports"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ ports.DistanceCache = (*RedisCache)(nil)

const geocodeKey = "geocode"

// RedisCache stores travel metrics and coordinates in Redis hashes: one
// hash per origin for distances and a single hash for geocodes. Each
// write refreshes the hash TTL.
type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type cachedDistance struct {
	Meters  int `json:"m"`
	Seconds int `json:"s"`
}

// NewRedisCache connects using a redis:// URL. A zero ttl keeps entries forever.
func NewRedisCache(url, prefix string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis cache: parse url: %w", err)
	}
	return NewRedisCacheFromClient(redis.NewClient(opt), prefix, ttl), nil
}

func NewRedisCacheFromClient(rdb *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	if prefix == "" {
		prefix = "routeplanner"
	}
	return &RedisCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *RedisCache) Close() error { return c.rdb.Close() }

func (c *RedisCache) key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *RedisCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if strings.TrimSpace(origin) == "" {
		return nil, errors.New("redis distance cache: origin must not be empty")
	}
	keys := uniqueKeys(destinations)
	out := make(map[string]ports.DistanceResult, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.key("distance", origin), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis distance cache: hmget: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var d cachedDistance
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("redis distance cache: decode %q: %w", keys[i], err)
		}
		out[keys[i]] = ports.DistanceResult{DistanceMeters: d.Meters, DurationSeconds: d.Seconds}
	}
	return out, nil
}

func (c *RedisCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.redis.PutMany")(&err)

	if strings.TrimSpace(origin) == "" {
		return errors.New("redis distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("redis distance cache: empty destination key")
		}
		b, err := json.Marshal(cachedDistance{Meters: r.DistanceMeters, Seconds: r.DurationSeconds})
		if err != nil {
			return fmt.Errorf("redis distance cache: encode %q: %w", dest, err)
		}
		fields[dest] = string(b)
	}
	return c.write(ctx, c.key("distance", origin), fields)
}

// Geocodes returns a view of the cache that satisfies ports.GeocodeCache.
func (c *RedisCache) Geocodes() *RedisGeocodeCache {
	return &RedisGeocodeCache{c: c}
}

// RedisGeocodeCache shares the connection of its RedisCache.
type RedisGeocodeCache struct {
	c *RedisCache
}

var _ ports.GeocodeCache = (*RedisGeocodeCache)(nil)

func (g *RedisGeocodeCache) GetMany(ctx context.Context, addresses []string) (_ map[string]domain.Coordinates, err error) {
	defer obs.Time(ctx, "geocode.redis.GetMany")(&err)

	keys := uniqueKeys(addresses)
	out := make(map[string]domain.Coordinates, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	vals, err := g.c.rdb.HMGet(ctx, g.c.key(geocodeKey), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis geocode cache: hmget: %w", err)
	}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var coords domain.Coordinates
		if err := json.Unmarshal([]byte(s), &coords); err != nil {
			return nil, fmt.Errorf("redis geocode cache: decode %q: %w", keys[i], err)
		}
		out[keys[i]] = coords
	}
	return out, nil
}

func (g *RedisGeocodeCache) PutMany(ctx context.Context, results map[string]domain.Coordinates) (err error) {
	defer obs.Time(ctx, "geocode.redis.PutMany")(&err)

	if len(results) == 0 {
		return nil
	}
	fields := make(map[string]any, len(results))
	for addr, coords := range results {
		if strings.TrimSpace(addr) == "" {
			return errors.New("redis geocode cache: empty address key")
		}
		b, err := json.Marshal(coords)
		if err != nil {
			return fmt.Errorf("redis geocode cache: encode %q: %w", addr, err)
		}
		fields[addr] = string(b)
	}
	return g.c.write(ctx, g.c.key(geocodeKey), fields)
}

func (c *RedisCache) write(ctx context.Context, key string, fields map[string]any) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		if c.ttl > 0 {
			pipe.Expire(ctx, key, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis cache: write %s: %w", key, err)
	}
	return nil
}
