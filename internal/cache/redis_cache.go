package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sushilghimire07/Social-Media-App/internal/config"
	"github.com/sushilghimire07/Social-Media-App/internal/domain"
)

// RedisUserCache implements UserCache on redis with one JSON value per user,
// keyed "{prefix}:user:{id}".
type RedisUserCache struct {
	client *redis.Client
	prefix string
}

// NewRedisUserCache connects to redis and verifies the connection with a
// ping before returning.
func NewRedisUserCache(cfg config.RedisConfig, prefix string) (*RedisUserCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisUserCache{client: client, prefix: prefix}, nil
}

func (c *RedisUserCache) key(userID string) string {
	return fmt.Sprintf("%s:user:%s", c.prefix, userID)
}

func (c *RedisUserCache) Get(ctx context.Context, userID string) (*domain.User, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var user domain.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}
	return &user, nil
}

func (c *RedisUserCache) Set(ctx context.Context, user *domain.User, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}
	if err := c.client.Set(ctx, c.key(user.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

func (c *RedisUserCache) Invalidate(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

func (c *RedisUserCache) Close() error {
	return c.client.Close()
}

var _ UserCache = (*RedisUserCache)(nil)
