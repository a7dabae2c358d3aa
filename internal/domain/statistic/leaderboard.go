package statistic

import (
	"context"
	"errors"
	"time"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/cardcon-lab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"golang.org/x/exp/slices"
)

// leaderboardTTL bounds how long a cached leaderboard may drift from the database.
const leaderboardTTL = 10 * time.Minute

type MemberPoints struct {
	UserID string
	Points int64
	Rank   int
}

type Leaderboard interface {
	// GetLeaderBoard returns the active members of a faction ordered by points.
	GetLeaderBoard(ctx context.Context, factionID string, offset, limit int) ([]MemberPoints, error)

	// GetRank returns the 1-based rank of the user in the faction, or 0 if the user is not an active
	// member of it.
	GetRank(ctx context.Context, factionID, userID string) (uint64, error)

	ChangePoints(ctx context.Context, factionID, userID string, delta int64) error
	Invalidate(ctx context.Context, factionIDs ...string) error
}

type leaderboard struct {
	factionMemberRepo    repository.FactionMemberRepository
	pointTransactionRepo repository.PointTransactionRepository
	redisClient          xredis.Client
}

// NewLeaderboard creates a leaderboard cached in redis. If redisClient is nil, every read is
// computed from the database.
func NewLeaderboard(
	factionMemberRepo repository.FactionMemberRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	redisClient xredis.Client,
) *leaderboard {
	return &leaderboard{
		factionMemberRepo:    factionMemberRepo,
		pointTransactionRepo: pointTransactionRepo,
		redisClient:          redisClient,
	}
}

func (l *leaderboard) GetLeaderBoard(
	ctx context.Context, factionID string, offset, limit int,
) ([]MemberPoints, error) {
	if l.redisClient == nil {
		all, err := l.loadFromDB(ctx, factionID)
		if err != nil {
			return nil, err
		}

		return page(all, offset, limit), nil
	}

	key := common.RedisKeyFactionLeaderboard(factionID)
	if err := l.ensureLoaded(ctx, factionID, key); err != nil {
		return nil, err
	}

	results, err := l.redisClient.ZRevRangeWithScores(ctx, key, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get revrange redis: %v", err)
		return nil, errorx.Unknown
	}

	leaderboard := []MemberPoints{}
	for i, z := range results {
		member, ok := z.Member.(string)
		if !ok {
			xcontext.Logger(ctx).Errorf("Invalid leaderboard member %v", z.Member)
			return nil, errorx.Unknown
		}

		leaderboard = append(leaderboard, MemberPoints{
			UserID: member,
			Points: int64(z.Score),
			Rank:   offset + i + 1,
		})
	}

	return leaderboard, nil
}

func (l *leaderboard) GetRank(ctx context.Context, factionID, userID string) (uint64, error) {
	if l.redisClient == nil {
		all, err := l.loadFromDB(ctx, factionID)
		if err != nil {
			return 0, err
		}

		for _, m := range all {
			if m.UserID == userID {
				return uint64(m.Rank), nil
			}
		}

		return 0, nil
	}

	key := common.RedisKeyFactionLeaderboard(factionID)
	if err := l.ensureLoaded(ctx, factionID, key); err != nil {
		return 0, err
	}

	rank, err := l.redisClient.ZRevRank(ctx, key, userID)
	if err != nil {
		if errors.Is(err, xredis.ErrNil) {
			return 0, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get rev rank redis: %v", err)
		return 0, errorx.Unknown
	}

	return rank + 1, nil
}

func (l *leaderboard) ChangePoints(ctx context.Context, factionID, userID string, delta int64) error {
	if l.redisClient == nil {
		return nil
	}

	key := common.RedisKeyFactionLeaderboard(factionID)
	ok, err := l.redisClient.ZIncrByIfMember(ctx, key, delta, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call ZIncrByIfMember redis: %v", err)
		return errorx.Unknown
	}

	// Every active member is loaded with the set, so a missing member means either the key
	// expired or the cache is stale. Both are fixed by reloading from database on the next read.
	if !ok {
		if err := l.redisClient.Del(ctx, key); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot call del redis: %v", err)
			return errorx.Unknown
		}
	}

	return nil
}

func (l *leaderboard) Invalidate(ctx context.Context, factionIDs ...string) error {
	if l.redisClient == nil {
		return nil
	}

	keys := []string{}
	for _, id := range factionIDs {
		if id != "" {
			keys = append(keys, common.RedisKeyFactionLeaderboard(id))
		}
	}

	if len(keys) == 0 {
		return nil
	}

	if err := l.redisClient.Del(ctx, keys...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete leaderboard keys: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *leaderboard) ensureLoaded(ctx context.Context, factionID, key string) error {
	ok, err := l.redisClient.Exist(ctx, key)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot call exist redis: %v", err)
		return errorx.Unknown
	}

	if ok {
		return nil
	}

	members, err := l.loadFromDB(ctx, factionID)
	if err != nil {
		return err
	}

	zs := []redis.Z{}
	for _, m := range members {
		zs = append(zs, redis.Z{Member: m.UserID, Score: float64(m.Points)})
	}

	if err := l.redisClient.ZReplace(ctx, key, leaderboardTTL, zs...); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load leaderboard to redis: %v", err)
		return errorx.Unknown
	}

	return nil
}

// loadFromDB ranks every active member of the faction. Ties are ordered by user id descending,
// the same order redis uses for equal scores.
func (l *leaderboard) loadFromDB(ctx context.Context, factionID string) ([]MemberPoints, error) {
	members, err := l.factionMemberRepo.GetActiveByFaction(ctx, factionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active members: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	points, err := l.pointTransactionRepo.SumByUsers(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum points of members: %v", err)
		return nil, errorx.Unknown
	}

	result := []MemberPoints{}
	for _, id := range userIDs {
		result = append(result, MemberPoints{UserID: id, Points: points[id]})
	}

	slices.SortFunc(result, func(a, b MemberPoints) bool {
		if a.Points != b.Points {
			return a.Points > b.Points
		}

		return a.UserID > b.UserID
	})

	for i := range result {
		result[i].Rank = i + 1
	}

	return result, nil
}

func page[T any](a []T, offset, limit int) []T {
	if offset >= len(a) {
		return []T{}
	}

	end := offset + limit
	if limit < 0 || end > len(a) {
		end = len(a)
	}

	return a[offset:end]
}
