package domain

import (
	"context"
	"errors"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type StatisticDomain interface {
	GetFactionStats(context.Context, *model.GetFactionStatsRequest) (*model.GetFactionStatsResponse, error)
	GetAllFactionStats(context.Context, *model.GetAllFactionStatsRequest) (*model.GetAllFactionStatsResponse, error)
	GetLeaderBoard(context.Context, *model.GetLeaderBoardRequest) (*model.GetLeaderBoardResponse, error)
	GetMyRank(context.Context, *model.GetMyRankRequest) (*model.GetMyRankResponse, error)
}

type statisticDomain struct {
	catalog           *catalog.Catalog
	factionMemberRepo repository.FactionMemberRepository
	aggregator        statistic.Aggregator
	leaderboard       statistic.Leaderboard
	ledger            ledger.Ledger
}

func NewStatisticDomain(
	cat *catalog.Catalog,
	factionMemberRepo repository.FactionMemberRepository,
	aggregator statistic.Aggregator,
	leaderboard statistic.Leaderboard,
	ledger ledger.Ledger,
) *statisticDomain {
	return &statisticDomain{
		catalog:           cat,
		factionMemberRepo: factionMemberRepo,
		aggregator:        aggregator,
		leaderboard:       leaderboard,
		ledger:            ledger,
	}
}

func (d *statisticDomain) GetFactionStats(
	ctx context.Context, req *model.GetFactionStatsRequest,
) (*model.GetFactionStatsResponse, error) {
	faction, err := d.catalog.GetByID(req.FactionID)
	if err != nil {
		return nil, err
	}

	stats, err := d.aggregator.FactionStats(ctx, req.FactionID)
	if err != nil {
		return nil, err
	}

	resp := model.GetFactionStatsResponse(model.ConvertFactionStats(*stats, faction))
	return &resp, nil
}

func (d *statisticDomain) GetAllFactionStats(
	ctx context.Context, req *model.GetAllFactionStatsRequest,
) (*model.GetAllFactionStatsResponse, error) {
	all, err := d.aggregator.AllFactionStats(ctx)
	if err != nil {
		return nil, err
	}

	clientStats := []model.FactionStats{}
	for _, s := range all {
		faction, err := d.catalog.GetByID(s.FactionID)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot get faction of stats: %v", err)
			return nil, errorx.Unknown
		}

		clientStats = append(clientStats, model.ConvertFactionStats(s, faction))
	}

	return &model.GetAllFactionStatsResponse{Stats: clientStats}, nil
}

func (d *statisticDomain) GetLeaderBoard(
	ctx context.Context, req *model.GetLeaderBoardRequest,
) (*model.GetLeaderBoardResponse, error) {
	if _, err := d.catalog.GetByID(req.FactionID); err != nil {
		return nil, err
	}

	apiCfg := xcontext.Configs(ctx).ApiServer
	if req.Limit == 0 {
		req.Limit = apiCfg.DefaultLimit
	}

	if req.Limit < 0 {
		return nil, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if req.Limit > apiCfg.MaxLimit {
		return nil, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	if req.Offset < 0 {
		return nil, errorx.New(errorx.BadRequest, "Offset must not be negative")
	}

	entries, err := d.leaderboard.GetLeaderBoard(ctx, req.FactionID, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	leaderboard := []model.MemberPoints{}
	for _, e := range entries {
		leaderboard = append(leaderboard, model.ConvertMemberPoints(e))
	}

	return &model.GetLeaderBoardResponse{LeaderBoard: leaderboard}, nil
}

func (d *statisticDomain) GetMyRank(
	ctx context.Context, req *model.GetMyRankRequest,
) (*model.GetMyRankResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	member, err := d.factionMemberRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not a member of any faction")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	if !member.IsActive {
		return nil, errorx.New(errorx.NotFound, "Not a member of any faction")
	}

	rank, err := d.leaderboard.GetRank(ctx, member.FactionID, userID)
	if err != nil {
		return nil, err
	}

	points, err := d.ledger.Points(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.GetMyRankResponse{FactionID: member.FactionID, Rank: rank, Points: points}, nil
}
