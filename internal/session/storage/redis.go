package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/frahmantamala/timesheet-management/internal"
	"github.com/redis/go-redis/v9"
)

const DefaultRedisPrefix = "timesheet:session:"

// RedisClient is the subset of *redis.Client the backend uses.
type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStorage shares one session between terminals or machines.
type RedisStorage struct {
	client  RedisClient
	prefix  string
	timeout time.Duration
}

func NewRedisConn(cfg internal.RedisConfig, logger *slog.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := internal.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logger.Error("failed to connect to redis", slog.Any("error", err), slog.String("addr", cfg.Addr))
		return nil, err
	}

	logger.Debug("connected to redis", slog.String("addr", cfg.Addr))

	return rdb, nil
}

func NewRedisStorage(client RedisClient, prefix string, timeout time.Duration) *RedisStorage {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStorage{client: client, prefix: prefix, timeout: timeout}
}

func (r *RedisStorage) Get(key string) (string, error) {
	ctx, cancel := internal.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *RedisStorage) Set(key, value string) error {
	ctx, cancel := internal.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *RedisStorage) Remove(key string) error {
	ctx, cancel := internal.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	return r.client.Del(ctx, r.prefix+key).Err()
}
