package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisNamespace = "bookstore:"

type redisStore struct {
	rdb *redis.Client
	ctx context.Context
}

// NewRedis connects to addr and verifies the connection with a ping.
func NewRedis(addr, password string) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("storage/redis: ping: %w", err)
	}
	return &redisStore{rdb: rdb, ctx: ctx}, nil
}

func (s *redisStore) Get(key string) ([]byte, error) {
	val, err := s.rdb.Get(s.ctx, redisNamespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage/redis: get %s: %w", key, err)
	}
	return val, nil
}

// Set stores without expiry; the containers decide when state goes away.
func (s *redisStore) Set(key string, value []byte) error {
	if err := s.rdb.Set(s.ctx, redisNamespace+key, value, 0).Err(); err != nil {
		return fmt.Errorf("storage/redis: set %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Remove(key string) error {
	if err := s.rdb.Del(s.ctx, redisNamespace+key).Err(); err != nil {
		return fmt.Errorf("storage/redis: del %s: %w", key, err)
	}
	return nil
}
