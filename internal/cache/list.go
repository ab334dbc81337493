// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// list.go provides a Valkey-backed cache of encoded post listing pages.
// Entries are keyed by a generation number plus the canonical query. Any
// post write bumps the generation, so a listing computed before the write
// lands under a key no reader will look up again.
package cache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// listKeyPrefix is the Valkey key prefix for cached listing pages.
	listKeyPrefix = "posts:list:"

	// generationKey holds the current listing generation.
	generationKey = "posts:generation"

	// DefaultListTTL is how long a listing page stays cached.
	DefaultListTTL = time.Minute
)

// ListCache manages post listing caching in Valkey.
type ListCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListCache creates a new listing cache backed by the given Valkey client.
func NewListCache(client *redis.Client, ttl time.Duration) *ListCache {
	if ttl == 0 {
		ttl = DefaultListTTL
	}
	return &ListCache{client: client, ttl: ttl}
}

// Generation returns the current listing generation. ok is false when
// Valkey cannot be read; callers then bypass the cache.
func (lc *ListCache) Generation(ctx context.Context) (gen int64, ok bool) {
	gen, err := lc.client.Get(ctx, generationKey).Int64()
	if err == redis.Nil {
		return 0, true
	}
	if err != nil {
		slog.Warn("list cache generation error", "error", err)
		return 0, false
	}
	return gen, true
}

// Get retrieves a cached listing page. Returns false on miss.
func (lc *ListCache) Get(ctx context.Context, gen int64, key string) ([]byte, bool) {
	val, err := lc.client.Get(ctx, listKey(gen, key)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("list cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("list cache hit", "key", key, "generation", gen)
	return val, true
}

// Set stores an encoded listing page with the configured TTL.
func (lc *ListCache) Set(ctx context.Context, gen int64, key string, body []byte) {
	if err := lc.client.Set(ctx, listKey(gen, key), body, lc.ttl).Err(); err != nil {
		slog.Warn("list cache set error", "key", key, "error", err)
	}
}

// Invalidate starts a new generation and removes the pages cached so far.
// Called after every post create, update, or delete.
func (lc *ListCache) Invalidate(ctx context.Context) {
	if err := lc.client.Incr(ctx, generationKey).Err(); err != nil {
		slog.Warn("list cache generation bump error", "error", err)
	}

	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := lc.client.Scan(ctx, cursor, listKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("list cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := lc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("list cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	slog.Debug("list cache invalidated", "deleted", deleted)
}

func listKey(gen int64, key string) string {
	return listKeyPrefix + strconv.FormatInt(gen, 10) + ":" + key
}
