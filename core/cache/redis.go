package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-coordinator/core/config"
	"go-coordinator/core/logger"

	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client *redis.Client
	policy LoginPolicy
}

func NewRedisCache(ctx context.Context, cfg config.RedisConfig, policy LoginPolicy) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		logger.Error("Cache:Redis:Ping:Error", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Cache:Redis:Connected", "addr", cfg.Addr, "db", cfg.DB)
	return &RedisCache{client: client, policy: policy}, nil
}

// IncrementLoginAttempt counts a failed login. The window starts at the first
// failure and lasts BlockFor.
func (c *RedisCache) IncrementLoginAttempt(ctx context.Context, key string) error {
	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, c.policy.BlockFor)
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}
	return incr.Err()
}

func (c *RedisCache) IsLoginBlocked(ctx context.Context, key string) (bool, error) {
	count, err := c.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return count >= c.policy.MaxAttempts, nil
}

func (c *RedisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Publish(ctx context.Context, channel string, payload []byte) error {
	return c.client.Publish(ctx, channel, payload).Err()
}

func (c *RedisCache) Subscribe(ctx context.Context, channel string) (Subscription, error) {
	pubsub := c.client.Subscribe(ctx, channel)
	// Receive blocks until redis confirms the subscription.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSubscription{pubsub: pubsub, out: make(chan []byte), done: make(chan struct{})}
	go sub.pump()
	return sub, nil
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	out    chan []byte
	once   sync.Once
	done   chan struct{}
}

func (s *redisSubscription) pump() {
	defer close(s.out)
	for msg := range s.pubsub.Channel() {
		select {
		case s.out <- []byte(msg.Payload):
		case <-s.done:
			return
		}
	}
}

func (s *redisSubscription) Messages() <-chan []byte {
	return s.out
}

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}
