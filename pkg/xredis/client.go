package xredis

import (
	"context"
	"errors"
	"time"

	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

// ErrNil is returned when the key or the member doesn't exist.
var ErrNil = redis.Nil

type Client interface {
	Exist(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error

	// Sorted set
	ZReplace(ctx context.Context, key string, ttl time.Duration, members ...redis.Z) error
	ZIncrByIfMember(ctx context.Context, key string, incr int64, member string) (bool, error)
	ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRank(ctx context.Context, key string, member string) (uint64, error)
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        5,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Close() error {
	return c.redisClient.Close()
}

func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) Del(ctx context.Context, keys ...string) error {
	err := c.redisClient.Del(ctx, keys...).Err()
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}

	return err
}

// ZReplace atomically replaces the whole sorted set by the given members.
func (c *client) ZReplace(ctx context.Context, key string, ttl time.Duration, members ...redis.Z) error {
	_, err := c.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(members) > 0 {
			pipe.ZAdd(ctx, key, members...)
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})

	return err
}

// ZIncrByIfMember increments the score of member only if it is already in the sorted set, and
// reports whether it was. A missing key is never created.
func (c *client) ZIncrByIfMember(ctx context.Context, key string, incr int64, member string) (bool, error) {
	err := c.redisClient.ZAddArgsIncr(ctx, key, redis.ZAddArgs{
		XX:      true,
		Members: []redis.Z{{Score: float64(incr), Member: member}},
	}).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}

func (c *client) ZRevRangeWithScores(
	ctx context.Context, key string, offset, limit int,
) ([]redis.Z, error) {
	result := c.redisClient.ZRevRangeWithScores(ctx, key, int64(offset), int64(offset+limit-1))
	return result.Result()
}

func (c *client) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	return c.redisClient.ZRevRank(ctx, key, member).Uint64()
}
