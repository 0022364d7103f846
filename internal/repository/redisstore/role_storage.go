// Package redisstore persists small durable values in Redis.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type RoleStorage struct {
	rdb    *redis.Client
	prefix string
}

func NewRoleStorage(rdb *redis.Client) *RoleStorage {
	return &RoleStorage{rdb: rdb, prefix: "legalai:"}
}

func (s *RoleStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores without TTL; a role survives restarts until overwritten.
func (s *RoleStorage) Set(ctx context.Context, key, value string) error {
	if err := s.rdb.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
