package memory

import (
	"context"

	"github.com/patrickmn/go-cache"
)

// RoleStorage keeps roles in process memory. It is the fallback when Redis is unreachable,
// so values never expire.
type RoleStorage struct {
	cache *cache.Cache
}

func NewRoleStorage() *RoleStorage {
	return &RoleStorage{
		cache: cache.New(cache.NoExpiration, 0),
	}
}

func (r *RoleStorage) Get(_ context.Context, key string) (string, bool, error) {
	if x, found := r.cache.Get(key); found {
		return x.(string), true, nil
	}
	return "", false, nil
}

func (r *RoleStorage) Set(_ context.Context, key, value string) error {
	r.cache.Set(key, value, cache.NoExpiration)
	return nil
}
