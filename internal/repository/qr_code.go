package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
)

type QRCodeRepository interface {
	Create(context.Context, *entity.QRCode) error
	GetByID(context.Context, string) (*entity.QRCode, error)
	GetByCode(context.Context, string) (*entity.QRCode, error)
	GetByUserID(context.Context, string) ([]entity.QRCode, error)
	MarkUsed(ctx context.Context, id string, usedAt time.Time, verifiedBy sql.NullString) (bool, error)
}

type qrCodeRepository struct{}

func NewQRCodeRepository() *qrCodeRepository {
	return &qrCodeRepository{}
}

func (r *qrCodeRepository) Create(ctx context.Context, data *entity.QRCode) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *qrCodeRepository) GetByID(ctx context.Context, id string) (*entity.QRCode, error) {
	var result entity.QRCode
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *qrCodeRepository) GetByCode(ctx context.Context, code string) (*entity.QRCode, error) {
	var result entity.QRCode
	if err := xcontext.DB(ctx).Take(&result, "code=?", code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *qrCodeRepository) GetByUserID(ctx context.Context, userID string) ([]entity.QRCode, error) {
	var result []entity.QRCode
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("created_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkUsed flips the used flag of an unused code. It returns false if the code was already used,
// so two concurrent redemptions of the same code cannot both succeed.
func (r *qrCodeRepository) MarkUsed(
	ctx context.Context, id string, usedAt time.Time, verifiedBy sql.NullString,
) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.QRCode{}).
		Where("id=? AND used=?", id, false).
		Updates(map[string]any{
			"used":        true,
			"used_at":     usedAt,
			"verified_by": verifiedBy,
		})
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}
