package repository

import (
	"context"
	"errors"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FactionMemberRepository interface {
	Upsert(context.Context, *entity.FactionMember) error
	Deactivate(ctx context.Context, userID string) (bool, error)
	Get(ctx context.Context, userID string) (*entity.FactionMember, error)
	GetForUpdate(ctx context.Context, userID string) (*entity.FactionMember, error)
	GetActiveByFaction(ctx context.Context, factionID string) ([]entity.FactionMember, error)
	CountActiveByFaction(ctx context.Context) (map[string]int64, error)
}

type factionMemberRepository struct{}

func NewFactionMemberRepository() *factionMemberRepository {
	return &factionMemberRepository{}
}

// Upsert creates the membership row of the user, or overwrites the existing one. The row is
// always marked active.
func (r *factionMemberRepository) Upsert(ctx context.Context, data *entity.FactionMember) error {
	data.IsActive = true
	return xcontext.DB(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"faction_id", "display_name", "joined_at", "is_active", "updated_at",
			}),
		}).
		Create(data).Error
}

// Deactivate marks the membership inactive and reports whether the user had a membership row.
func (r *factionMemberRepository) Deactivate(ctx context.Context, userID string) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.FactionMember{}).
		Where("user_id=?", userID).
		Update("is_active", false)
	if tx.Error != nil {
		return false, tx.Error
	}

	if tx.RowsAffected > 0 {
		return true, nil
	}

	// Some drivers report zero affected rows when the value didn't change.
	_, err := r.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *factionMemberRepository) Get(ctx context.Context, userID string) (*entity.FactionMember, error) {
	var result entity.FactionMember
	if err := xcontext.DB(ctx).Take(&result, "user_id=?", userID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetForUpdate reads the membership row with a row lock held until the current transaction ends.
func (r *factionMemberRepository) GetForUpdate(
	ctx context.Context, userID string,
) (*entity.FactionMember, error) {
	var result entity.FactionMember
	err := xcontext.DB(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&result, "user_id=?", userID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *factionMemberRepository) GetActiveByFaction(
	ctx context.Context, factionID string,
) ([]entity.FactionMember, error) {
	var result []entity.FactionMember
	err := xcontext.DB(ctx).
		Where("faction_id=? AND is_active=?", factionID, true).
		Order("joined_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// CountActiveByFaction returns the number of active members keyed by faction id. Factions without
// any active member are absent from the map.
func (r *factionMemberRepository) CountActiveByFaction(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		FactionID string
		Count     int64
	}

	err := xcontext.DB(ctx).
		Model(&entity.FactionMember{}).
		Select("faction_id, COUNT(*) AS count").
		Where("is_active=?", true).
		Group("faction_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.FactionID] = row.Count
	}

	return result, nil
}
