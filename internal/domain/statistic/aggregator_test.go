package statistic

import (
	"testing"
	"time"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func newTestAggregator() *aggregator {
	return NewAggregator(
		catalog.Default(),
		repository.NewFactionRepository(),
		repository.NewFactionMemberRepository(),
		repository.NewPointTransactionRepository(),
	)
}

func Test_aggregator_FactionStats_SingleMember(t *testing.T) {
	ctx := testutil.MockContext()
	db := xcontext.DB(ctx)

	require.NoError(t, db.Omit("Faction").Create(&entity.FactionMember{
		UserID:    "u1",
		FactionID: testutil.FactionSports,
		JoinedAt:  time.Now(),
		IsActive:  true,
	}).Error)
	require.NoError(t, db.Create(&entity.PointTransaction{
		ID: 1, UserID: "u1", FactionID: testutil.FactionSports, Points: 25, Type: entity.PointBonus,
	}).Error)
	require.NoError(t, db.Create(&entity.PointTransaction{
		ID: 2, UserID: "u1", FactionID: testutil.FactionSports, Points: 24, Type: entity.PointPurchase,
	}).Error)

	stats, err := newTestAggregator().FactionStats(ctx, testutil.FactionSports)
	require.NoError(t, err)
	require.Equal(t, int64(49), stats.TotalPoints)
	require.Equal(t, int64(1), stats.MemberCount)
	require.Equal(t, float64(49), stats.AveragePointsPerMember)
	require.Equal(t, int64(24), stats.PurchasePoints)
	require.Equal(t, int64(25), stats.BonusPoints)
	require.Equal(t, 1, stats.Rank)
	require.Equal(t, []MemberPoints{{UserID: "u1", Points: 49, Rank: 1}}, stats.TopMembers)
}

func Test_aggregator_FactionStats(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	a := newTestAggregator()

	stats, err := a.FactionStats(ctx, testutil.FactionMystic)
	require.NoError(t, err)
	require.Equal(t, int64(90), stats.TotalPoints)
	require.Equal(t, int64(2), stats.MemberCount)
	require.Equal(t, float64(45), stats.AveragePointsPerMember)
	require.Equal(t, int64(40), stats.PurchasePoints)
	require.Equal(t, int64(50), stats.BonusPoints)
	require.Equal(t, 1, stats.Rank)
	require.Equal(t, []MemberPoints{
		{UserID: "user1", Points: 65, Rank: 1},
		{UserID: "user2", Points: 25, Rank: 2},
	}, stats.TopMembers)

	// The shadow syndicate keeps the points of the member who left.
	stats, err = a.FactionStats(ctx, testutil.FactionShadow)
	require.NoError(t, err)
	require.Equal(t, int64(25), stats.TotalPoints)
	require.Zero(t, stats.MemberCount)
	require.Zero(t, stats.AveragePointsPerMember)
	require.Empty(t, stats.TopMembers)

	_, err = a.FactionStats(ctx, "unknown")
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))
}

func Test_aggregator_AllFactionStats(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	all, err := newTestAggregator().AllFactionStats(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)

	ids := []string{}
	for i, s := range all {
		require.Equal(t, i+1, s.Rank)
		ids = append(ids, s.FactionID)
	}

	require.Equal(t, []string{
		testutil.FactionMystic,
		testutil.FactionShadow,
		testutil.FactionPixel,
		testutil.FactionSports,
	}, ids)

	// The snapshot counters are refreshed.
	f, err := repository.NewFactionRepository().GetByID(ctx, testutil.FactionMystic)
	require.NoError(t, err)
	require.Equal(t, int64(90), f.TotalPoints)
	require.Equal(t, int64(2), f.MemberCount)
}

func Test_aggregator_AllFactionStats_Ties(t *testing.T) {
	ctx := testutil.MockContext()

	all, err := newTestAggregator().AllFactionStats(ctx)
	require.NoError(t, err)

	// Without any point, factions keep the catalog order.
	for i, f := range catalog.Default().GetAll() {
		require.Equal(t, f.ID, all[i].FactionID)
		require.Equal(t, i+1, all[i].Rank)
	}
}

func Test_aggregator_TopMembers_Limit(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Faction.TopMembers = 1
	ctx = xcontext.WithConfigs(ctx, cfg)
	testutil.CreateFixtureDb(ctx)

	stats, err := newTestAggregator().FactionStats(ctx, testutil.FactionMystic)
	require.NoError(t, err)
	require.Equal(t, []MemberPoints{{UserID: "user1", Points: 65, Rank: 1}}, stats.TopMembers)
}
