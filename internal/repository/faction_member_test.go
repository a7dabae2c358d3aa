package repository

import (
	"testing"
	"time"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Test_factionMemberRepository_Upsert(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewFactionMemberRepository()

	// Member4 left the shadow syndicate and rejoins another faction.
	err := repo.Upsert(ctx, &entity.FactionMember{
		UserID:    testutil.Member4.UserID,
		FactionID: testutil.FactionPixel,
		JoinedAt:  time.Now(),
	})
	require.NoError(t, err)

	member, err := repo.Get(ctx, testutil.Member4.UserID)
	require.NoError(t, err)
	require.Equal(t, testutil.FactionPixel, member.FactionID)
	require.True(t, member.IsActive)

	// A new user gets a new row.
	err = repo.Upsert(ctx, &entity.FactionMember{
		UserID:    "user5",
		FactionID: testutil.FactionSports,
		JoinedAt:  time.Now(),
	})
	require.NoError(t, err)

	member, err = repo.Get(ctx, "user5")
	require.NoError(t, err)
	require.Equal(t, testutil.FactionSports, member.FactionID)
	require.True(t, member.IsActive)
}

func Test_factionMemberRepository_Deactivate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewFactionMemberRepository()

	existed, err := repo.Deactivate(ctx, testutil.Member1.UserID)
	require.NoError(t, err)
	require.True(t, existed)

	member, err := repo.Get(ctx, testutil.Member1.UserID)
	require.NoError(t, err)
	require.False(t, member.IsActive)
	require.Equal(t, testutil.FactionMystic, member.FactionID)

	// Deactivating an inactive member still reports the row.
	existed, err = repo.Deactivate(ctx, testutil.Member4.UserID)
	require.NoError(t, err)
	require.True(t, existed)

	existed, err = repo.Deactivate(ctx, "unknown-user")
	require.NoError(t, err)
	require.False(t, existed)
}

func Test_factionMemberRepository_Get_NotFound(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	_, err := NewFactionMemberRepository().Get(ctx, "unknown-user")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_factionMemberRepository_GetForUpdate(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewFactionMemberRepository()

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	member, err := repo.GetForUpdate(txCtx, testutil.Member1.UserID)
	require.NoError(t, err)
	require.Equal(t, testutil.FactionMystic, member.FactionID)

	_, err = repo.GetForUpdate(txCtx, "unknown-user")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_factionMemberRepository_GetForUpdate_LocksRow(t *testing.T) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "faction:faction@tcp(localhost:3306)/faction?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var query string
	err = db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		query = tx.Statement.SQL.String()
	})
	require.NoError(t, err)

	ctx := xcontext.WithDB(testutil.MockContext(), db)
	_, err = NewFactionMemberRepository().GetForUpdate(ctx, "user1")
	require.NoError(t, err)
	require.Contains(t, query, "FOR UPDATE")

	_, err = NewFactionMemberRepository().Get(ctx, "user1")
	require.NoError(t, err)
	require.NotContains(t, query, "FOR UPDATE")
}

func Test_factionMemberRepository_GetActiveByFaction(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewFactionMemberRepository()

	members, err := repo.GetActiveByFaction(ctx, testutil.FactionMystic)
	require.NoError(t, err)
	require.Len(t, members, 2)
	require.Equal(t, testutil.Member1.UserID, members[0].UserID)
	require.Equal(t, testutil.Member2.UserID, members[1].UserID)

	members, err = repo.GetActiveByFaction(ctx, testutil.FactionShadow)
	require.NoError(t, err)
	require.Empty(t, members)
}

func Test_factionMemberRepository_CountActiveByFaction(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	counts, err := NewFactionMemberRepository().CountActiveByFaction(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{
		testutil.FactionMystic: 2,
		testutil.FactionPixel:  1,
	}, counts)
}
