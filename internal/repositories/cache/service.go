// Package cache provides the Redis-backed cache used to serve account
// reads without touching the ledger.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"remit/internal/models"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

func NewRedisClient(cfg *RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

// Get unmarshals the cached value into dest and reports whether the key
// was present.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func accountKey(id uint) string {
	return fmt.Sprintf("account:%d", id)
}

// CacheAccount stores an account snapshot under its id.
func (s *CacheService) CacheAccount(ctx context.Context, account *models.Account) error {
	return s.Set(ctx, accountKey(account.ID), account)
}

// GetAccount returns the cached account or nil when absent.
func (s *CacheService) GetAccount(ctx context.Context, id uint) (*models.Account, error) {
	var account models.Account
	found, err := s.Get(ctx, accountKey(id), &account)
	if err != nil || !found {
		return nil, err
	}
	return &account, nil
}

// InvalidateAccount drops the cached snapshot after a balance mutation.
func (s *CacheService) InvalidateAccount(ctx context.Context, id uint) error {
	return s.Delete(ctx, accountKey(id))
}

// HealthCheck pings Redis.
func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

// Close closes the Redis client connection.
func (s *CacheService) Close() error {
	return s.client.Close()
}
