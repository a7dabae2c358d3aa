package migration

import (
	"context"
	"fmt"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm/clause"
)

// AutoMigrate creates or updates all tables to the latest version.
func AutoMigrate(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.Faction{},
		&entity.FactionMember{},
		&entity.PointTransaction{},
		&entity.QRCode{},
	)
}

// SeedFactions writes the snapshot of every catalog faction. The informational counters of existing
// rows are kept.
func SeedFactions(ctx context.Context, cat *catalog.Catalog) error {
	for i, f := range cat.GetAll() {
		err := xcontext.DB(ctx).
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "theme", "colors", "motto", "benefits", "position", "updated_at",
				}),
			}).
			Create(&entity.Faction{
				ID:       f.ID,
				Name:     f.Name,
				Theme:    f.Theme,
				Colors:   f.Colors,
				Motto:    f.Motto,
				Benefits: f.Benefits,
				Position: i,
			}).Error
		if err != nil {
			return fmt.Errorf("cannot seed faction %s: %w", f.ID, err)
		}
	}

	return nil
}

// Migrators are one-shot data migrations, selected by the --version flag of the migrate command.
var Migrators = map[string]func(context.Context) error{
	"0001": dropOrphanTransactions,
}

// dropOrphanTransactions removes ledger entries whose user has no membership row, as left behind
// when member rows are deleted by hand.
func dropOrphanTransactions(ctx context.Context) error {
	tx := xcontext.DB(ctx).
		Where("user_id NOT IN (?)", xcontext.DB(ctx).Model(&entity.FactionMember{}).Select("user_id")).
		Delete(&entity.PointTransaction{})
	if tx.Error != nil {
		return tx.Error
	}

	xcontext.Logger(ctx).Infof("Dropped %d orphan transactions", tx.RowsAffected)
	return nil
}

func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	return migrator(ctx)
}
