package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/pubsub"
	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func newTestLedger(redisClient *testutil.MockRedisClient, publisher pubsub.Publisher) *ledger {
	memberRepo := repository.NewFactionMemberRepository()
	txRepo := repository.NewPointTransactionRepository()

	var leaderboard statistic.Leaderboard
	if redisClient != nil {
		leaderboard = statistic.NewLeaderboard(memberRepo, txRepo, redisClient)
	} else {
		leaderboard = statistic.NewLeaderboard(memberRepo, txRepo, nil)
	}

	return New(memberRepo, txRepo, leaderboard, publisher)
}

func Test_ledger_Record(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger(nil, nil)

	tx := &entity.PointTransaction{
		UserID:      "user2",
		FactionID:   testutil.FactionMystic,
		Points:      10,
		Type:        entity.PointBonus,
		Description: "Booth visit",
	}
	require.NoError(t, l.Record(ctx, tx))
	require.NotZero(t, tx.ID)
	require.False(t, tx.CreatedAt.IsZero())

	points, err := l.Points(ctx, "user2")
	require.NoError(t, err)
	require.Equal(t, int64(35), points)

	txs, err := l.Query(ctx, "user2", "")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, tx.ID, txs[1].ID)
}

func Test_ledger_Record_Invalid(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger(nil, nil)

	err := l.Record(ctx, &entity.PointTransaction{UserID: "user1", Points: 1, Type: entity.PointBonus})
	require.Equal(t, errorx.BadRequest, errorx.CodeOf(err))

	err = l.Record(ctx, &entity.PointTransaction{
		UserID: "nobody", FactionID: testutil.FactionMystic, Points: 1, Type: entity.PointBonus,
	})
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))

	points, err := l.Points(ctx, "nobody")
	require.NoError(t, err)
	require.Zero(t, points)
}

func Test_ledger_Query(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	l := newTestLedger(nil, nil)

	txs, err := l.Query(ctx, "", testutil.FactionMystic)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	require.Equal(t, testutil.Transaction1.ID, txs[0].ID)
	require.Equal(t, testutil.Transaction2.ID, txs[1].ID)
	require.Equal(t, testutil.Transaction5.ID, txs[2].ID)

	txs, err = l.Query(ctx, "user3", testutil.FactionMystic)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func Test_ledger_Announce(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	var incrKey, incrMember string
	var incr int64
	redisClient := &testutil.MockRedisClient{
		ZIncrByIfMemberFunc: func(ctx context.Context, key string, delta int64, member string) (bool, error) {
			incrKey, incrMember, incr = key, member, delta
			return true, nil
		},
	}

	var packs []*pubsub.Pack
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			require.Equal(t, common.PointTransactionTopic, topic)
			packs = append(packs, pack)
			return nil
		},
	}

	l := newTestLedger(redisClient, publisher)
	tx := &entity.PointTransaction{
		UserID:      "user3",
		FactionID:   testutil.FactionPixel,
		Points:      -3,
		Type:        entity.PointPenalty,
		Description: "Late return",
	}
	require.NoError(t, l.Record(ctx, tx))
	l.Announce(ctx, *tx)

	require.Equal(t, common.RedisKeyFactionLeaderboard(testutil.FactionPixel), incrKey)
	require.Equal(t, "user3", incrMember)
	require.Equal(t, int64(-3), incr)

	require.Len(t, packs, 1)
	require.Equal(t, []byte("user3"), packs[0].Key)

	event, err := DecodeEvent(packs[0])
	require.NoError(t, err)
	require.Equal(t, "user3", event.UserID)
	require.Equal(t, int64(-3), event.Points)
	require.Equal(t, "penalty", event.Type)
}

func Test_ledger_Announce_InactiveMember(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	redisClient := &testutil.MockRedisClient{
		ZIncrByIfMemberFunc: func(ctx context.Context, key string, delta int64, member string) (bool, error) {
			require.FailNow(t, "leaderboard of an inactive member must not change")
			return false, nil
		},
	}

	// A failing publisher doesn't fail the announce.
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			return errors.New("broker unavailable")
		},
	}

	l := newTestLedger(redisClient, publisher)
	l.Announce(ctx, *testutil.Transaction4)
}

func Test_DecodeEvent_Invalid(t *testing.T) {
	_, err := DecodeEvent(&pubsub.Pack{Msg: []byte("not json")})
	require.Error(t, err)
}
