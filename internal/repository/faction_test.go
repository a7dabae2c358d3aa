package repository

import (
	"testing"

	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_factionRepository_GetList(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewFactionRepository()

	factions, err := repo.GetList(ctx)
	require.NoError(t, err)
	require.Len(t, factions, 4)
	require.Equal(t, testutil.FactionMystic, factions[0].ID)
	require.NotEmpty(t, factions[0].Colors)

	f, err := repo.GetByID(ctx, testutil.FactionPixel)
	require.NoError(t, err)
	require.Equal(t, testutil.FactionPixel, f.ID)
}

func Test_factionRepository_UpdateCounters(t *testing.T) {
	ctx := testutil.MockContext()
	repo := NewFactionRepository()

	require.NoError(t, repo.UpdateCounters(ctx, testutil.FactionMystic, 90, 2))

	f, err := repo.GetByID(ctx, testutil.FactionMystic)
	require.NoError(t, err)
	require.Equal(t, int64(90), f.TotalPoints)
	require.Equal(t, int64(2), f.MemberCount)
}
