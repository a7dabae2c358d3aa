package domain

import (
	"context"
	"errors"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/enum"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PointDomain interface {
	GetMyPoints(context.Context, *model.GetMyPointsRequest) (*model.GetMyPointsResponse, error)
	GetMyTransactions(context.Context, *model.GetMyTransactionsRequest) (*model.GetMyTransactionsResponse, error)
	GetTransactions(context.Context, *model.GetTransactionsRequest) (*model.GetTransactionsResponse, error)
	AwardBonusPoints(context.Context, *model.AwardBonusPointsRequest) (*model.AwardBonusPointsResponse, error)
}

type pointDomain struct {
	catalog           *catalog.Catalog
	factionMemberRepo repository.FactionMemberRepository
	ledger            ledger.Ledger
}

func NewPointDomain(
	cat *catalog.Catalog,
	factionMemberRepo repository.FactionMemberRepository,
	ledger ledger.Ledger,
) *pointDomain {
	return &pointDomain{
		catalog:           cat,
		factionMemberRepo: factionMemberRepo,
		ledger:            ledger,
	}
}

func (d *pointDomain) GetMyPoints(
	ctx context.Context, req *model.GetMyPointsRequest,
) (*model.GetMyPointsResponse, error) {
	points, err := d.ledger.Points(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	return &model.GetMyPointsResponse{Points: points}, nil
}

func (d *pointDomain) GetMyTransactions(
	ctx context.Context, req *model.GetMyTransactionsRequest,
) (*model.GetMyTransactionsResponse, error) {
	txs, err := d.ledger.Query(ctx, xcontext.RequestUserID(ctx), "")
	if err != nil {
		return nil, err
	}

	return &model.GetMyTransactionsResponse{Transactions: convertPointTransactions(txs)}, nil
}

func (d *pointDomain) GetTransactions(
	ctx context.Context, req *model.GetTransactionsRequest,
) (*model.GetTransactionsResponse, error) {
	txs, err := d.ledger.Query(ctx, req.UserID, req.FactionID)
	if err != nil {
		return nil, err
	}

	return &model.GetTransactionsResponse{Transactions: convertPointTransactions(txs)}, nil
}

func (d *pointDomain) AwardBonusPoints(
	ctx context.Context, req *model.AwardBonusPointsRequest,
) (*model.AwardBonusPointsResponse, error) {
	if req.UserID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty user id")
	}

	tx, err := d.buildAward(req)
	if err != nil {
		return nil, err
	}

	member, err := d.factionMemberRepo.Get(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found member")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	if !member.IsActive {
		return nil, errorx.New(errorx.BadRequest, "User is not an active member")
	}

	tx.UserID = member.UserID
	tx.FactionID = member.FactionID
	tx.VerifiedBy.String = xcontext.RequestUserID(ctx)
	tx.VerifiedBy.Valid = tx.VerifiedBy.String != ""

	if err := d.ledger.Record(ctx, tx); err != nil {
		return nil, err
	}

	d.ledger.Announce(ctx, *tx)
	return &model.AwardBonusPointsResponse{Transaction: model.ConvertPointTransaction(tx)}, nil
}

// buildAward validates the points and type of the award. Bonuses are positive and penalties are
// negative whatever the sign given by the caller.
func (d *pointDomain) buildAward(req *model.AwardBonusPointsRequest) (*entity.PointTransaction, error) {
	if req.ActivityID != "" {
		activity, err := d.catalog.BonusActivity(req.ActivityID)
		if err != nil {
			return nil, err
		}

		description := req.Description
		if description == "" {
			description = activity.Name
		}

		return &entity.PointTransaction{
			Points:      activity.Points,
			Type:        entity.PointBonus,
			Description: description,
		}, nil
	}

	txType := entity.PointBonus
	if req.Type != "" {
		var err error
		txType, err = enum.ToEnum[entity.PointTransactionType](req.Type)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid transaction type %s", req.Type)
		}
	}

	if req.Points == 0 {
		return nil, errorx.New(errorx.BadRequest, "Points must not be zero")
	}

	points := req.Points
	switch txType {
	case entity.PointPurchase:
		return nil, errorx.New(errorx.BadRequest, "Purchase points are only awarded by QR codes")
	case entity.PointBonus:
		points = abs(points)
	case entity.PointPenalty:
		points = -abs(points)
	}

	return &entity.PointTransaction{
		Points:      points,
		Type:        txType,
		Description: req.Description,
	}, nil
}

func convertPointTransactions(txs []entity.PointTransaction) []model.PointTransaction {
	result := []model.PointTransaction{}
	for i := range txs {
		result = append(result, model.ConvertPointTransaction(&txs[i]))
	}

	return result
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
