package domain

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

const (
	welcomeBonusDescription = "Welcome bonus"

	reasonAlreadyInFaction      = "Already a member of this faction"
	reasonAlreadyInOtherFaction = "Already a member of another faction. Leave it before joining a new one"
)

type FactionDomain interface {
	GetFactions(context.Context, *model.GetFactionsRequest) (*model.GetFactionsResponse, error)
	GetFaction(context.Context, *model.GetFactionRequest) (*model.GetFactionResponse, error)
	GetContest(context.Context, *model.GetContestRequest) (*model.GetContestResponse, error)
	CanJoin(context.Context, *model.CanJoinFactionRequest) (*model.CanJoinFactionResponse, error)
	Join(context.Context, *model.JoinFactionRequest) (*model.JoinFactionResponse, error)
	Leave(context.Context, *model.LeaveFactionRequest) (*model.LeaveFactionResponse, error)
	GetMyFaction(context.Context, *model.GetMyFactionRequest) (*model.GetMyFactionResponse, error)
	GetMembers(context.Context, *model.GetFactionMembersRequest) (*model.GetFactionMembersResponse, error)
	ValidateMembership(context.Context, *model.ValidateMembershipRequest) (*model.ValidateMembershipResponse, error)
}

type factionDomain struct {
	catalog              *catalog.Catalog
	factionRepo          repository.FactionRepository
	factionMemberRepo    repository.FactionMemberRepository
	pointTransactionRepo repository.PointTransactionRepository
	ledger               ledger.Ledger
	leaderboard          statistic.Leaderboard
}

func NewFactionDomain(
	cat *catalog.Catalog,
	factionRepo repository.FactionRepository,
	factionMemberRepo repository.FactionMemberRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	ledger ledger.Ledger,
	leaderboard statistic.Leaderboard,
) *factionDomain {
	return &factionDomain{
		catalog:              cat,
		factionRepo:          factionRepo,
		factionMemberRepo:    factionMemberRepo,
		pointTransactionRepo: pointTransactionRepo,
		ledger:               ledger,
		leaderboard:          leaderboard,
	}
}

func (d *factionDomain) GetFactions(
	ctx context.Context, req *model.GetFactionsRequest,
) (*model.GetFactionsResponse, error) {
	factions := d.catalog.GetAll()
	if req.Theme != "" {
		factions = d.catalog.FilterByTheme(req.Theme)
	}

	snapshots, err := d.factionRepo.GetList(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get faction snapshots: %v", err)
		return nil, errorx.Unknown
	}

	snapshotMap := map[string]*entity.Faction{}
	for i := range snapshots {
		snapshotMap[snapshots[i].ID] = &snapshots[i]
	}

	clientFactions := []model.Faction{}
	for _, f := range factions {
		clientFactions = append(clientFactions, model.ConvertFaction(f, snapshotMap[f.ID]))
	}

	return &model.GetFactionsResponse{Factions: clientFactions}, nil
}

func (d *factionDomain) GetFaction(
	ctx context.Context, req *model.GetFactionRequest,
) (*model.GetFactionResponse, error) {
	f, err := d.catalog.GetByID(req.ID)
	if err != nil {
		return nil, err
	}

	snapshot, err := d.factionRepo.GetByID(ctx, f.ID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get faction snapshot: %v", err)
			return nil, errorx.Unknown
		}

		snapshot = nil
	}

	resp := model.GetFactionResponse(model.ConvertFaction(f, snapshot))
	return &resp, nil
}

func (d *factionDomain) GetContest(
	ctx context.Context, req *model.GetContestRequest,
) (*model.GetContestResponse, error) {
	resp := model.GetContestResponse(model.ConvertContest(d.catalog.Contest()))
	return &resp, nil
}

func (d *factionDomain) CanJoin(
	ctx context.Context, req *model.CanJoinFactionRequest,
) (*model.CanJoinFactionResponse, error) {
	if _, err := d.catalog.GetByID(req.FactionID); err != nil {
		return &model.CanJoinFactionResponse{CanJoin: false, Reason: "Faction not found"}, nil
	}

	reason, err := d.joinBlocker(ctx, xcontext.RequestUserID(ctx), req.FactionID, false)
	if err != nil {
		return nil, err
	}

	if reason != "" {
		return &model.CanJoinFactionResponse{CanJoin: false, Reason: reason}, nil
	}

	return &model.CanJoinFactionResponse{CanJoin: true}, nil
}

// joinBlocker returns the reason why the user cannot join the faction, or an empty string if the
// user can join it. With forUpdate, the member row stays locked until the transaction of ctx ends.
func (d *factionDomain) joinBlocker(
	ctx context.Context, userID, factionID string, forUpdate bool,
) (string, error) {
	get := d.factionMemberRepo.Get
	if forUpdate {
		get = d.factionMemberRepo.GetForUpdate
	}

	member, err := get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return "", errorx.Unknown
	}

	if !member.IsActive {
		return "", nil
	}

	if member.FactionID == factionID {
		return reasonAlreadyInFaction, nil
	}

	return reasonAlreadyInOtherFaction, nil
}

func (d *factionDomain) Join(
	ctx context.Context, req *model.JoinFactionRequest,
) (*model.JoinFactionResponse, error) {
	if _, err := d.catalog.GetByID(req.FactionID); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	previousFactionID := ""
	if old, err := d.factionMemberRepo.Get(ctx, userID); err == nil {
		previousFactionID = old.FactionID
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	reason, err := d.joinBlocker(ctx, userID, req.FactionID, true)
	if err != nil {
		return nil, err
	}

	if reason != "" {
		xcontext.Logger(ctx).Debugf("User %s cannot join faction %s: %s", userID, req.FactionID, reason)
		return nil, errorx.New(errorx.AlreadyMember, reason)
	}

	member := &entity.FactionMember{
		UserID:      userID,
		FactionID:   req.FactionID,
		DisplayName: sql.NullString{Valid: req.DisplayName != "", String: req.DisplayName},
		JoinedAt:    time.Now(),
	}

	if err := d.factionMemberRepo.Upsert(ctx, member); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot upsert member: %v", err)
		return nil, errorx.Unknown
	}

	bonus, err := d.grantWelcomeBonus(ctx, userID, req.FactionID)
	if err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit join faction: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.leaderboard.Invalidate(ctx, previousFactionID, req.FactionID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate leaderboard: %v", err)
	}

	welcomeBonus := int64(0)
	if bonus != nil {
		welcomeBonus = bonus.Points
		d.ledger.Announce(ctx, *bonus)
	}

	points, err := d.ledger.Points(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.JoinFactionResponse{
		Member:       model.ConvertFactionMember(member, points),
		WelcomeBonus: welcomeBonus,
	}, nil
}

// grantWelcomeBonus records the welcome bonus of the faction. Every successful join earns it.
func (d *factionDomain) grantWelcomeBonus(
	ctx context.Context, userID, factionID string,
) (*entity.PointTransaction, error) {
	amount := xcontext.Configs(ctx).Faction.WelcomeBonus
	if amount <= 0 {
		return nil, nil
	}

	bonus := &entity.PointTransaction{
		UserID:      userID,
		FactionID:   factionID,
		Points:      amount,
		Type:        entity.PointBonus,
		Description: welcomeBonusDescription,
	}

	if err := d.ledger.Record(ctx, bonus); err != nil {
		return nil, err
	}

	return bonus, nil
}

func (d *factionDomain) Leave(
	ctx context.Context, req *model.LeaveFactionRequest,
) (*model.LeaveFactionResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	member, err := d.factionMemberRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.LeaveFactionResponse{Left: false}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	existed, err := d.factionMemberRepo.Deactivate(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate member: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.leaderboard.Invalidate(ctx, member.FactionID); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate leaderboard: %v", err)
	}

	return &model.LeaveFactionResponse{Left: existed}, nil
}

func (d *factionDomain) GetMyFaction(
	ctx context.Context, req *model.GetMyFactionRequest,
) (*model.GetMyFactionResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	member, err := d.factionMemberRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not a member of any faction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	faction, err := d.catalog.GetByID(member.FactionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Member %s belongs to unknown faction %s", userID, member.FactionID)
		return nil, errorx.Unknown
	}

	points, err := d.ledger.Points(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.GetMyFactionResponse{
		Member:  model.ConvertFactionMember(member, points),
		Faction: model.ConvertFaction(faction, nil),
	}, nil
}

func (d *factionDomain) GetMembers(
	ctx context.Context, req *model.GetFactionMembersRequest,
) (*model.GetFactionMembersResponse, error) {
	if _, err := d.catalog.GetByID(req.FactionID); err != nil {
		return nil, err
	}

	members, err := d.factionMemberRepo.GetActiveByFaction(ctx, req.FactionID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active members: %v", err)
		return nil, errorx.Unknown
	}

	userIDs := []string{}
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
	}

	points, err := d.pointTransactionRepo.SumByUsers(ctx, userIDs)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum points of members: %v", err)
		return nil, errorx.Unknown
	}

	clientMembers := []model.FactionMember{}
	for i := range members {
		clientMembers = append(clientMembers, model.ConvertFactionMember(&members[i], points[members[i].UserID]))
	}

	return &model.GetFactionMembersResponse{Members: clientMembers}, nil
}

// ValidateMembership checks that the user is an active member, of the given faction if any.
func (d *factionDomain) ValidateMembership(
	ctx context.Context, req *model.ValidateMembershipRequest,
) (*model.ValidateMembershipResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	member, err := d.factionMemberRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.ValidateMembershipResponse{Valid: false, Reason: "User is not a member of any faction"}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	points, err := d.ledger.Points(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	clientMember := model.ConvertFactionMember(member, points)
	resp := &model.ValidateMembershipResponse{Valid: true, Member: &clientMember}
	switch {
	case !member.IsActive:
		resp.Valid = false
		resp.Reason = "User has left the faction"
	case req.FactionID != "" && member.FactionID != req.FactionID:
		resp.Valid = false
		resp.Reason = "User belongs to another faction"
	}

	return resp, nil
}
