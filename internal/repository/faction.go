package repository

import (
	"context"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
)

type FactionRepository interface {
	GetByID(context.Context, string) (*entity.Faction, error)
	GetList(context.Context) ([]entity.Faction, error)
	UpdateCounters(ctx context.Context, id string, totalPoints, memberCount int64) error
}

type factionRepository struct{}

func NewFactionRepository() *factionRepository {
	return &factionRepository{}
}

func (r *factionRepository) GetByID(ctx context.Context, id string) (*entity.Faction, error) {
	var result entity.Faction
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *factionRepository) GetList(ctx context.Context) ([]entity.Faction, error) {
	var result []entity.Faction
	if err := xcontext.DB(ctx).Order("position ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *factionRepository) UpdateCounters(
	ctx context.Context, id string, totalPoints, memberCount int64,
) error {
	return xcontext.DB(ctx).
		Model(&entity.Faction{}).
		Where("id=?", id).
		Updates(map[string]any{
			"total_points": totalPoints,
			"member_count": memberCount,
		}).Error
}
