package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	"github.com/oksasatya/invest-tracker/pkg/helpers"
)

func profileKey(userID string) string {
	return "profile:" + userID
}

// ProfileCache keeps public profiles in Redis. Only the public projection is
// stored, never the password hash.
type ProfileCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewProfileCache(rdb redis.Cmdable, ttl time.Duration) *ProfileCache {
	return &ProfileCache{rdb: rdb, ttl: ttl}
}

func (c *ProfileCache) Get(ctx context.Context, userID string) (*entity.PublicUser, bool, error) {
	var p entity.PublicUser
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, profileKey(userID), &p)
	if err != nil || !ok {
		return nil, false, err
	}
	return &p, true, nil
}

func (c *ProfileCache) Set(ctx context.Context, p entity.PublicUser) error {
	return helpers.RedisSetJSON(ctx, c.rdb, profileKey(p.ID), p, c.ttl)
}
