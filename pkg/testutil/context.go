package testutil

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/cardcon-lab/backend/config"
	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/migration"
	"github.com/cardcon-lab/backend/pkg/logger"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const TokenSecret = "secret"

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			MaxLimit:     50,
			DefaultLimit: 10,
		},
		Auth: config.AuthConfigs{
			TokenSecret: TokenSecret,
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
		},
		Faction: config.FactionConfigs{
			WelcomeBonus:        25,
			QRCodeTTL:           30 * 24 * time.Hour,
			EnforceQRCodeExpiry: true,
			TopMembers:          10,
			SnowflakeNode:       1,
		},
	}
}

// MockContext returns a context with an isolated in-memory database, already migrated and seeded
// with the catalog factions.
func MockContext() context.Context {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// A single connection keeps the in-memory database alive and serializes transactions.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	cfg := MockConfigs()
	node, err := snowflake.NewNode(cfg.Faction.SnowflakeNode)
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewNopLogger())
	ctx = xcontext.WithSnowFlake(ctx, node)
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	if err := migration.SeedFactions(ctx, catalog.Default()); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(userID string) context.Context {
	return xcontext.WithRequestUserID(MockContext(), userID)
}

// WithUser returns a context of the same database where the request comes from the given user.
func WithUser(ctx context.Context, userID string, staff bool) context.Context {
	ctx = xcontext.WithRequestUserID(ctx, userID)
	return xcontext.WithRequestStaff(ctx, staff)
}
