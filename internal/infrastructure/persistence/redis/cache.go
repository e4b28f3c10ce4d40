package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/expricer/exclusivity-service/internal/infrastructure/bloom"
	"github.com/expricer/exclusivity-service/internal/infrastructure/monitoring"
	"github.com/expricer/exclusivity-service/internal/pkg/logger"
)

const (
	copiesSoldKey  = "ledger:copies_sold"
	txBloomKey     = "bloom:processed_transactions"
	rateLimitNS    = "ratelimit"
	expectedTxns   = 100000
	bloomErrorRate = 0.01
)

type Cache struct {
	client      *redis.Client
	bloomFilter *bloom.RedisBloomFilter
	logger      *logger.Logger
}

func NewCache(conn *Connection, log *logger.Logger) *Cache {
	client := monitoring.InstrumentRedisClient(conn.GetClient())

	m, k := bloom.GetOptimalParameters(expectedTxns, bloomErrorRate)
	bloomFilter := bloom.NewRedisBloomFilter(client, txBloomKey, m, k)

	return &Cache{
		client:      client,
		bloomFilter: bloomFilter,
		logger:      log,
	}
}

func (c *Cache) DistributedLock(ctx context.Context, key string, expiration time.Duration) (bool, error) {
	lockKey := fmt.Sprintf("lock:%s", key)
	result, err := c.client.SetNX(ctx, lockKey, "1", expiration).Result()
	if err == nil {
		if result {
			monitoring.RedisLockSuccessTotal.WithLabelValues(key).Inc()
		} else {
			monitoring.RedisLockFailureTotal.WithLabelValues(key, "already_locked").Inc()
		}
	} else {
		monitoring.RedisLockFailureTotal.WithLabelValues(key, "redis_error").Inc()
	}
	return result, err
}

func (c *Cache) ReleaseLock(ctx context.Context, key string) error {
	lockKey := fmt.Sprintf("lock:%s", key)
	return c.client.Del(ctx, lockKey).Err()
}

func (c *Cache) GetCopiesSold(ctx context.Context) (int, bool, error) {
	result, err := c.client.Get(ctx, copiesSoldKey).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, false, nil
		}
		return 0, false, err
	}

	count, err := strconv.Atoi(result)
	if err != nil {
		return 0, false, err
	}

	return count, true, nil
}

func (c *Cache) SetCopiesSold(ctx context.Context, count int, expiration time.Duration) error {
	return c.client.Set(ctx, copiesSoldKey, count, expiration).Err()
}

func (c *Cache) InvalidateCopiesSold(ctx context.Context) error {
	return c.client.Del(ctx, copiesSoldKey).Err()
}

func (c *Cache) TransactionSeen(ctx context.Context, transactionID string) (bool, error) {
	return c.bloomFilter.Contains(ctx, transactionID)
}

func (c *Cache) MarkTransactionSeen(ctx context.Context, transactionID string) error {
	return c.bloomFilter.Add(ctx, transactionID)
}

// IncrementRequestCount bumps the caller's fixed-window counter and
// returns the new count. The window TTL is set on first increment.
func (c *Cache) IncrementRequestCount(ctx context.Context, clientID string, window time.Duration) (int, error) {
	key := fmt.Sprintf("%s:%s", rateLimitNS, clientID)

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := c.client.Expire(ctx, key, window).Err(); err != nil {
			c.logger.Warn("Failed to set rate limit window", "key", key, "error", err.Error())
		}
	}

	return int(count), nil
}
