package testutil

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type MockRedisClient struct {
	ExistFunc               func(ctx context.Context, key string) (bool, error)
	DelFunc                 func(ctx context.Context, keys ...string) error
	ZReplaceFunc            func(ctx context.Context, key string, ttl time.Duration, members ...redis.Z) error
	ZIncrByIfMemberFunc     func(ctx context.Context, key string, incr int64, member string) (bool, error)
	ZRevRangeWithScoresFunc func(ctx context.Context, key string, offset, limit int) ([]redis.Z, error)
	ZRevRankFunc            func(ctx context.Context, key string, member string) (uint64, error)
}

func (m *MockRedisClient) Exist(ctx context.Context, key string) (bool, error) {
	if m.ExistFunc != nil {
		return m.ExistFunc(ctx, key)
	}

	return false, nil
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc != nil {
		return m.DelFunc(ctx, keys...)
	}

	return nil
}

func (m *MockRedisClient) ZReplace(ctx context.Context, key string, ttl time.Duration, members ...redis.Z) error {
	if m.ZReplaceFunc != nil {
		return m.ZReplaceFunc(ctx, key, ttl, members...)
	}

	return nil
}

func (m *MockRedisClient) ZIncrByIfMember(ctx context.Context, key string, incr int64, member string) (bool, error) {
	if m.ZIncrByIfMemberFunc != nil {
		return m.ZIncrByIfMemberFunc(ctx, key, incr, member)
	}

	return false, nil
}

func (m *MockRedisClient) ZRevRangeWithScores(ctx context.Context, key string, offset, limit int) ([]redis.Z, error) {
	if m.ZRevRangeWithScoresFunc != nil {
		return m.ZRevRangeWithScoresFunc(ctx, key, offset, limit)
	}

	return nil, nil
}

func (m *MockRedisClient) ZRevRank(ctx context.Context, key string, member string) (uint64, error) {
	if m.ZRevRankFunc != nil {
		return m.ZRevRankFunc(ctx, key, member)
	}

	return 0, nil
}
