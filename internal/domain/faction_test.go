package domain

import (
	"strings"
	"testing"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

func Test_factionDomain_GetFactions(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(nil)

	resp, err := d.faction.GetFactions(ctx, &model.GetFactionsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Factions, 4)
	require.Equal(t, testutil.FactionMystic, resp.Factions[0].ID)

	resp, err = d.faction.GetFactions(ctx, &model.GetFactionsRequest{Theme: "SPORTS"})
	require.NoError(t, err)
	require.Len(t, resp.Factions, 1)
	require.Equal(t, testutil.FactionSports, resp.Factions[0].ID)

	resp, err = d.faction.GetFactions(ctx, &model.GetFactionsRequest{Theme: "no such theme"})
	require.NoError(t, err)
	require.Empty(t, resp.Factions)
}

func Test_factionDomain_GetFaction(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(nil)

	resp, err := d.faction.GetFaction(ctx, &model.GetFactionRequest{ID: testutil.FactionPixel})
	require.NoError(t, err)
	require.Equal(t, testutil.FactionPixel, resp.ID)
	require.NotEmpty(t, resp.Name)

	_, err = d.faction.GetFaction(ctx, &model.GetFactionRequest{ID: "unknown"})
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))
}

func Test_factionDomain_GetContest(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(nil)

	resp, err := d.faction.GetContest(ctx, &model.GetContestRequest{})
	require.NoError(t, err)
	require.Equal(t, 1.0, resp.PointsPerDollar)
	require.NotEmpty(t, resp.PrizeTiers)
	require.NotEmpty(t, resp.BonusActivities)
}

func Test_factionDomain_Join(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(nil)

	userCtx := testutil.WithUser(ctx, "u1", false)
	resp, err := d.faction.Join(userCtx, &model.JoinFactionRequest{
		FactionID:   testutil.FactionMystic,
		DisplayName: "Una",
	})
	require.NoError(t, err)
	require.Equal(t, int64(25), resp.WelcomeBonus)
	require.Equal(t, int64(25), resp.Member.TotalPoints)
	require.Equal(t, "Una", resp.Member.DisplayName)
	require.True(t, resp.Member.IsActive)

	txs, err := d.pointTransactionRepo.GetList(ctx, repository.PointTransactionFilter{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	require.Equal(t, entity.PointBonus, txs[0].Type)
	require.Equal(t, testutil.FactionMystic, txs[0].FactionID)

	// Joining again is refused, whatever the faction.
	_, err = d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionMystic})
	require.Equal(t, errorx.AlreadyMember, errorx.CodeOf(err))

	_, err = d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionPixel})
	require.Equal(t, errorx.AlreadyMember, errorx.CodeOf(err))

	_, err = d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: "unknown"})
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))
}

func Test_factionDomain_Join_AfterLeave(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	// Member4 left the shadow syndicate, so it can join another faction and gets its welcome bonus.
	userCtx := testutil.WithUser(ctx, testutil.Member4.UserID, false)
	resp, err := d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionPixel})
	require.NoError(t, err)
	require.Equal(t, int64(25), resp.WelcomeBonus)
	require.Equal(t, int64(50), resp.Member.TotalPoints)
	require.Equal(t, testutil.FactionPixel, resp.Member.FactionID)

	// Coming back to a previous faction grants its welcome bonus again.
	_, err = d.faction.Leave(userCtx, &model.LeaveFactionRequest{})
	require.NoError(t, err)

	resp, err = d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionShadow})
	require.NoError(t, err)
	require.Equal(t, int64(25), resp.WelcomeBonus)
	require.Equal(t, int64(75), resp.Member.TotalPoints)
}

func Test_factionDomain_Join_RejoinSameFaction(t *testing.T) {
	ctx := testutil.MockContext()
	d := newTestDomains(nil)

	// A staff bonus with the same description doesn't suppress the welcome bonus.
	staffCtx := testutil.WithUser(ctx, "staff", true)
	userCtx := testutil.WithUser(ctx, "u1", false)

	_, err := d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionMystic})
	require.NoError(t, err)

	_, err = d.point.AwardBonusPoints(staffCtx, &model.AwardBonusPointsRequest{
		UserID:      "u1",
		Points:      5,
		Description: "Welcome bonus",
	})
	require.NoError(t, err)

	_, err = d.faction.Leave(userCtx, &model.LeaveFactionRequest{})
	require.NoError(t, err)

	resp, err := d.faction.Join(userCtx, &model.JoinFactionRequest{FactionID: testutil.FactionMystic})
	require.NoError(t, err)
	require.Equal(t, int64(25), resp.WelcomeBonus)
	require.Equal(t, int64(55), resp.Member.TotalPoints)

	txs, err := d.pointTransactionRepo.GetList(ctx, repository.PointTransactionFilter{
		UserID: "u1",
		Types:  []entity.PointTransactionType{entity.PointBonus},
	})
	require.NoError(t, err)
	require.Len(t, txs, 3)
}

func Test_factionDomain_Join_NoWelcomeBonus(t *testing.T) {
	ctx := testutil.MockContext()
	cfg := xcontext.Configs(ctx)
	cfg.Faction.WelcomeBonus = 0
	ctx = xcontext.WithConfigs(ctx, cfg)
	d := newTestDomains(nil)

	resp, err := d.faction.Join(testutil.WithUser(ctx, "u1", false), &model.JoinFactionRequest{
		FactionID: testutil.FactionSports,
	})
	require.NoError(t, err)
	require.Zero(t, resp.WelcomeBonus)
	require.Zero(t, resp.Member.TotalPoints)
}

func Test_factionDomain_CanJoin(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	// Member1 is active in the mystic guardians.
	userCtx := testutil.WithUser(ctx, testutil.Member1.UserID, false)
	resp, err := d.faction.CanJoin(userCtx, &model.CanJoinFactionRequest{FactionID: testutil.FactionPixel})
	require.NoError(t, err)
	require.False(t, resp.CanJoin)
	require.True(t, strings.HasPrefix(resp.Reason, "Already a member of another faction"))

	resp, err = d.faction.CanJoin(userCtx, &model.CanJoinFactionRequest{FactionID: testutil.FactionMystic})
	require.NoError(t, err)
	require.False(t, resp.CanJoin)
	require.Equal(t, "Already a member of this faction", resp.Reason)

	resp, err = d.faction.CanJoin(userCtx, &model.CanJoinFactionRequest{FactionID: "unknown"})
	require.NoError(t, err)
	require.False(t, resp.CanJoin)
	require.Equal(t, "Faction not found", resp.Reason)

	// Member4 left its faction.
	userCtx = testutil.WithUser(ctx, testutil.Member4.UserID, false)
	resp, err = d.faction.CanJoin(userCtx, &model.CanJoinFactionRequest{FactionID: testutil.FactionShadow})
	require.NoError(t, err)
	require.True(t, resp.CanJoin)

	userCtx = testutil.WithUser(ctx, "newcomer", false)
	resp, err = d.faction.CanJoin(userCtx, &model.CanJoinFactionRequest{FactionID: testutil.FactionSports})
	require.NoError(t, err)
	require.True(t, resp.CanJoin)
	require.Empty(t, resp.Reason)
}

func Test_factionDomain_Leave(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	userCtx := testutil.WithUser(ctx, testutil.Member2.UserID, false)
	resp, err := d.faction.Leave(userCtx, &model.LeaveFactionRequest{})
	require.NoError(t, err)
	require.True(t, resp.Left)

	members, err := d.faction.GetMembers(ctx, &model.GetFactionMembersRequest{FactionID: testutil.FactionMystic})
	require.NoError(t, err)
	require.Len(t, members.Members, 1)
	require.Equal(t, testutil.Member1.UserID, members.Members[0].UserID)

	// Points are kept after leaving.
	points, err := d.point.GetMyPoints(userCtx, &model.GetMyPointsRequest{})
	require.NoError(t, err)
	require.Equal(t, int64(25), points.Points)

	resp, err = d.faction.Leave(testutil.WithUser(ctx, "newcomer", false), &model.LeaveFactionRequest{})
	require.NoError(t, err)
	require.False(t, resp.Left)
}

func Test_factionDomain_GetMyFaction(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	resp, err := d.faction.GetMyFaction(testutil.WithUser(ctx, testutil.Member1.UserID, false), &model.GetMyFactionRequest{})
	require.NoError(t, err)
	require.Equal(t, testutil.FactionMystic, resp.Faction.ID)
	require.Equal(t, "Alice", resp.Member.DisplayName)
	require.Equal(t, int64(65), resp.Member.TotalPoints)

	_, err = d.faction.GetMyFaction(testutil.WithUser(ctx, "newcomer", false), &model.GetMyFactionRequest{})
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))
}

func Test_factionDomain_GetMembers(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	resp, err := d.faction.GetMembers(ctx, &model.GetFactionMembersRequest{FactionID: testutil.FactionMystic})
	require.NoError(t, err)
	require.Len(t, resp.Members, 2)
	require.Equal(t, int64(65), resp.Members[0].TotalPoints)
	require.Equal(t, int64(25), resp.Members[1].TotalPoints)

	_, err = d.faction.GetMembers(ctx, &model.GetFactionMembersRequest{FactionID: "unknown"})
	require.Equal(t, errorx.NotFound, errorx.CodeOf(err))
}

func Test_factionDomain_ValidateMembership(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	d := newTestDomains(nil)

	testCases := []struct {
		name   string
		req    *model.ValidateMembershipRequest
		valid  bool
		reason string
	}{
		{
			name:  "active member",
			req:   &model.ValidateMembershipRequest{UserID: "user1"},
			valid: true,
		},
		{
			name:  "active member of the faction",
			req:   &model.ValidateMembershipRequest{UserID: "user1", FactionID: testutil.FactionMystic},
			valid: true,
		},
		{
			name:   "member of another faction",
			req:    &model.ValidateMembershipRequest{UserID: "user1", FactionID: testutil.FactionPixel},
			reason: "User belongs to another faction",
		},
		{
			name:   "member who left",
			req:    &model.ValidateMembershipRequest{UserID: "user4"},
			reason: "User has left the faction",
		},
		{
			name:   "not a member",
			req:    &model.ValidateMembershipRequest{UserID: "newcomer"},
			reason: "User is not a member of any faction",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := d.faction.ValidateMembership(ctx, tt.req)
			require.NoError(t, err)
			require.Equal(t, tt.valid, resp.Valid)
			require.Equal(t, tt.reason, resp.Reason)
		})
	}

	_, err := d.faction.ValidateMembership(ctx, &model.ValidateMembershipRequest{})
	require.Equal(t, errorx.BadRequest, errorx.CodeOf(err))
}
