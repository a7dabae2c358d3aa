package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/domain/qrcode"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultQRCodeImageSize = 256
	minQRCodeImageSize     = 64
	maxQRCodeImageSize     = 1024
)

const (
	redeemSuccess       = "success"
	redeemNotFound      = "not_found"
	redeemUsed          = "used"
	redeemExpired       = "expired"
	redeemInvalidFormat = "invalid_format"
	redeemNoMember      = "no_member"
)

// purchaseAmountScale and maxPurchaseAmount follow the decimal(12,2) column of purchase_amount.
const purchaseAmountScale = 2

var maxPurchaseAmount = decimal.RequireFromString("9999999999.99")

var redeemMessages = map[string]string{
	redeemSuccess:       "QR code redeemed",
	redeemNotFound:      "QR code not found",
	redeemUsed:          "QR code has already been used",
	redeemExpired:       "QR code has expired",
	redeemInvalidFormat: "Invalid QR code format",
	redeemNoMember:      "Owner of the QR code is not a faction member",
}

type QRCodeDomain interface {
	CreatePurchaseQRCode(context.Context, *model.CreatePurchaseQRCodeRequest) (*model.CreatePurchaseQRCodeResponse, error)
	RedeemQRCode(context.Context, *model.RedeemQRCodeRequest) (*model.RedeemQRCodeResponse, error)
	GetMyQRCodes(context.Context, *model.GetMyQRCodesRequest) (*model.GetMyQRCodesResponse, error)
	GetQRCodeImage(context.Context, *model.GetQRCodeImageRequest) (*model.GetQRCodeImageResponse, error)
}

type qrCodeDomain struct {
	catalog           *catalog.Catalog
	qrCodeRepo        repository.QRCodeRepository
	factionMemberRepo repository.FactionMemberRepository
	ledger            ledger.Ledger
}

func NewQRCodeDomain(
	cat *catalog.Catalog,
	qrCodeRepo repository.QRCodeRepository,
	factionMemberRepo repository.FactionMemberRepository,
	ledger ledger.Ledger,
) *qrCodeDomain {
	return &qrCodeDomain{
		catalog:           cat,
		qrCodeRepo:        qrCodeRepo,
		factionMemberRepo: factionMemberRepo,
		ledger:            ledger,
	}
}

// PointsForPurchase converts a purchase amount to points, rounding down.
func PointsForPurchase(amount decimal.Decimal, pointsPerDollar float64) int64 {
	return amount.Mul(decimal.NewFromFloat(pointsPerDollar)).Floor().IntPart()
}

func (d *qrCodeDomain) CreatePurchaseQRCode(
	ctx context.Context, req *model.CreatePurchaseQRCodeRequest,
) (*model.CreatePurchaseQRCodeResponse, error) {
	if !req.PurchaseAmount.IsPositive() {
		return nil, errorx.New(errorx.BadRequest, "Purchase amount must be positive")
	}

	if !req.PurchaseAmount.Equal(req.PurchaseAmount.Truncate(purchaseAmountScale)) {
		return nil, errorx.New(errorx.BadRequest, "Purchase amount has more than 2 decimal places")
	}

	if req.PurchaseAmount.GreaterThan(maxPurchaseAmount) {
		return nil, errorx.New(errorx.BadRequest, "Purchase amount is too large")
	}

	userID := xcontext.RequestUserID(ctx)
	member, err := d.factionMemberRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.BadRequest, "Join a faction before earning points")
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return nil, errorx.Unknown
	}

	if !member.IsActive {
		return nil, errorx.New(errorx.BadRequest, "Join a faction before earning points")
	}

	now := time.Now()
	cfg := xcontext.Configs(ctx).Faction
	qr := &entity.QRCode{
		Base:           entity.Base{ID: uuid.NewString()},
		Code:           qrcode.Generate(member.FactionID, userID, now),
		UserID:         userID,
		FactionID:      member.FactionID,
		TicketID:       sql.NullString{Valid: req.TicketID != "", String: req.TicketID},
		PurchaseAmount: req.PurchaseAmount,
		PointsAwarded:  PointsForPurchase(req.PurchaseAmount, d.catalog.Contest().PointsPerDollar),
	}

	if cfg.QRCodeTTL > 0 {
		qr.ExpiresAt = sql.NullTime{Valid: true, Time: now.Add(cfg.QRCodeTTL)}
	}

	if err := d.qrCodeRepo.Create(ctx, qr); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create qr code: %v", err)
		return nil, errorx.Unknown
	}

	common.PromCounters[common.QRCodeIssuedTotal].WithLabelValues(qr.FactionID).Inc()
	return &model.CreatePurchaseQRCodeResponse{QRCode: model.ConvertQRCode(qr)}, nil
}

func (d *qrCodeDomain) RedeemQRCode(
	ctx context.Context, req *model.RedeemQRCodeRequest,
) (*model.RedeemQRCodeResponse, error) {
	resp, err := d.redeem(ctx, req.Code, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	common.PromCounters[common.QRCodeRedeemTotal].WithLabelValues(resp.outcome).Inc()
	return &resp.RedeemQRCodeResponse, nil
}

type redeemResult struct {
	model.RedeemQRCodeResponse
	outcome string
}

func rejectRedeem(outcome string) *redeemResult {
	return &redeemResult{
		RedeemQRCodeResponse: model.RedeemQRCodeResponse{
			Success: false,
			Message: redeemMessages[outcome],
		},
		outcome: outcome,
	}
}

func (d *qrCodeDomain) redeem(ctx context.Context, codeOrID, verifiedBy string) (*redeemResult, error) {
	if codeOrID == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow empty code")
	}

	var qr *entity.QRCode
	var err error
	if qrcode.LooksLikeCode(codeOrID) {
		if err := qrcode.Validate(codeOrID); err != nil {
			return rejectRedeem(redeemInvalidFormat), nil
		}

		qr, err = d.qrCodeRepo.GetByCode(ctx, codeOrID)
	} else {
		qr, err = d.qrCodeRepo.GetByID(ctx, codeOrID)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return rejectRedeem(redeemNotFound), nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get qr code: %v", err)
		return nil, errorx.Unknown
	}

	if qr.Used {
		return rejectRedeem(redeemUsed), nil
	}

	now := time.Now()
	if xcontext.Configs(ctx).Faction.EnforceQRCodeExpiry && qr.ExpiresAt.Valid && now.After(qr.ExpiresAt.Time) {
		return rejectRedeem(redeemExpired), nil
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	verifier := sql.NullString{Valid: verifiedBy != "", String: verifiedBy}
	ok, err := d.qrCodeRepo.MarkUsed(ctx, qr.ID, now, verifier)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot mark qr code as used: %v", err)
		return nil, errorx.Unknown
	}

	// Another redemption flipped the code first.
	if !ok {
		return rejectRedeem(redeemUsed), nil
	}

	tx := &entity.PointTransaction{
		UserID:      qr.UserID,
		FactionID:   qr.FactionID,
		Points:      qr.PointsAwarded,
		Type:        entity.PointPurchase,
		Description: purchaseDescription(qr),
		QRCodeID:    sql.NullString{Valid: true, String: qr.ID},
		VerifiedBy:  verifier,
	}

	if err := d.ledger.Record(ctx, tx); err != nil {
		if errorx.CodeOf(err) == errorx.NotFound {
			return rejectRedeem(redeemNoMember), nil
		}

		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit qr code redemption: %v", err)
		return nil, errorx.Unknown
	}

	d.ledger.Announce(ctx, *tx)

	return &redeemResult{
		RedeemQRCodeResponse: model.RedeemQRCodeResponse{
			Success:       true,
			Message:       redeemMessages[redeemSuccess],
			PointsAwarded: qr.PointsAwarded,
			UserID:        qr.UserID,
			FactionID:     qr.FactionID,
		},
		outcome: redeemSuccess,
	}, nil
}

func purchaseDescription(qr *entity.QRCode) string {
	if qr.TicketID.Valid {
		return fmt.Sprintf("Purchase of $%s (ticket %s)", qr.PurchaseAmount.StringFixed(2), qr.TicketID.String)
	}

	return fmt.Sprintf("Purchase of $%s", qr.PurchaseAmount.StringFixed(2))
}

func (d *qrCodeDomain) GetMyQRCodes(
	ctx context.Context, req *model.GetMyQRCodesRequest,
) (*model.GetMyQRCodesResponse, error) {
	qrs, err := d.qrCodeRepo.GetByUserID(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get qr codes: %v", err)
		return nil, errorx.Unknown
	}

	clientQRCodes := []model.QRCode{}
	for i := range qrs {
		clientQRCodes = append(clientQRCodes, model.ConvertQRCode(&qrs[i]))
	}

	return &model.GetMyQRCodesResponse{QRCodes: clientQRCodes}, nil
}

func (d *qrCodeDomain) GetQRCodeImage(
	ctx context.Context, req *model.GetQRCodeImageRequest,
) (*model.GetQRCodeImageResponse, error) {
	size := req.Size
	if size == 0 {
		size = defaultQRCodeImageSize
	}

	if size < minQRCodeImageSize || size > maxQRCodeImageSize {
		return nil, errorx.New(errorx.BadRequest, "Image size must be between %d and %d",
			minQRCodeImageSize, maxQRCodeImageSize)
	}

	qr, err := d.qrCodeRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found qr code")
		}

		xcontext.Logger(ctx).Errorf("Cannot get qr code: %v", err)
		return nil, errorx.Unknown
	}

	if qr.UserID != xcontext.RequestUserID(ctx) && !xcontext.RequestStaff(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
	}

	image, err := qrcode.Image(qr.Code, size)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode qr code image: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetQRCodeImageResponse{ContentType: "image/png", Image: image}, nil
}
