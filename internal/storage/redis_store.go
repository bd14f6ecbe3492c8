package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisOpTimeout = 3 * time.Second

// redisStore keeps each date as a hash with digest and revision fields,
// expired by Redis itself.
type redisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func openRedis(opts Options) (Store, error) {
	rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.RedisAddr, err)
	}

	return &redisStore{rdb: rdb, prefix: opts.KeyPrefix, ttl: opts.MenuTTL}, nil
}

func (r *redisStore) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}

func (r *redisStore) LastAnnouncement(date string) (Announcement, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := r.rdb.HGetAll(ctx, r.prefix+date).Result()
	if err != nil {
		return Announcement{}, false, fmt.Errorf("redis hgetall: %w", err)
	}
	digest := fields["digest"]
	if digest == "" {
		return Announcement{}, false, nil
	}
	rev, _ := strconv.Atoi(fields["revision"])
	return Announcement{Digest: digest, Revision: rev}, true, nil
}

func (r *redisStore) RecordAnnouncement(date string, a Announcement) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	key := r.prefix + date
	pipe := r.rdb.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "digest", a.Digest, "revision", a.Revision)
	pipe.Expire(ctx, key, r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis record %s: %w", date, err)
	}
	return nil
}
