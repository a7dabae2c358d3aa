package repository

import (
	"context"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PointTransactionFilter struct {
	UserID    string
	FactionID string
	Types     []entity.PointTransactionType
	QRCodeID  string
}

type UserPoints struct {
	UserID string
	Points int64
}

type PointTransactionRepository interface {
	Create(context.Context, *entity.PointTransaction) error
	GetList(ctx context.Context, filter PointTransactionFilter) ([]entity.PointTransaction, error)
	Sum(ctx context.Context, filter PointTransactionFilter) (int64, error)
	SumByFaction(ctx context.Context, types ...entity.PointTransactionType) (map[string]int64, error)
	SumByUsers(ctx context.Context, userIDs []string) (map[string]int64, error)
}

type pointTransactionRepository struct{}

func NewPointTransactionRepository() *pointTransactionRepository {
	return &pointTransactionRepository{}
}

func (r *pointTransactionRepository) Create(ctx context.Context, data *entity.PointTransaction) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *pointTransactionRepository) GetList(
	ctx context.Context, filter PointTransactionFilter,
) ([]entity.PointTransaction, error) {
	var result []entity.PointTransaction
	tx := applyFilter(xcontext.DB(ctx).Model(&entity.PointTransaction{}), filter).Order("id ASC")
	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *pointTransactionRepository) Sum(ctx context.Context, filter PointTransactionFilter) (int64, error) {
	var result int64
	tx := applyFilter(xcontext.DB(ctx).Model(&entity.PointTransaction{}), filter).
		Select("COALESCE(SUM(points), 0)")
	if err := tx.Scan(&result).Error; err != nil {
		return 0, err
	}

	return result, nil
}

// SumByFaction returns the sum of points keyed by faction id, only transactions of the given types
// are counted if any type is provided.
func (r *pointTransactionRepository) SumByFaction(
	ctx context.Context, types ...entity.PointTransactionType,
) (map[string]int64, error) {
	var rows []struct {
		FactionID string
		Total     int64
	}

	tx := xcontext.DB(ctx).
		Model(&entity.PointTransaction{}).
		Select("faction_id, COALESCE(SUM(points), 0) AS total").
		Group("faction_id")

	if len(types) > 0 {
		tx = tx.Where("type IN (?)", types)
	}

	if err := tx.Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.FactionID] = row.Total
	}

	return result, nil
}

func (r *pointTransactionRepository) SumByUsers(
	ctx context.Context, userIDs []string,
) (map[string]int64, error) {
	result := make(map[string]int64, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	var rows []UserPoints
	err := xcontext.DB(ctx).
		Model(&entity.PointTransaction{}).
		Select("user_id, COALESCE(SUM(points), 0) AS points").
		Where("user_id IN (?)", userIDs).
		Group("user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		result[row.UserID] = row.Points
	}

	return result, nil
}

func applyFilter(tx *gorm.DB, filter PointTransactionFilter) *gorm.DB {
	if filter.UserID != "" {
		tx = tx.Where("user_id=?", filter.UserID)
	}

	if filter.FactionID != "" {
		tx = tx.Where("faction_id=?", filter.FactionID)
	}

	if len(filter.Types) > 0 {
		tx = tx.Where("type IN (?)", filter.Types)
	}

	if filter.QRCodeID != "" {
		tx = tx.Where("qr_code_id=?", filter.QRCodeID)
	}

	return tx
}
