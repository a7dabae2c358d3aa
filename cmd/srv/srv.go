package main

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/cardcon-lab/backend/config"
	"github.com/cardcon-lab/backend/internal/domain"
	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/migration"
	"github.com/cardcon-lab/backend/pkg/authenticator"
	"github.com/cardcon-lab/backend/pkg/kafka"
	"github.com/cardcon-lab/backend/pkg/logger"
	"github.com/cardcon-lab/backend/pkg/pubsub"
	"github.com/cardcon-lab/backend/pkg/router"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/cardcon-lab/backend/pkg/xredis"
	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	ctx context.Context
	app *cli.App

	logger  interface{ Sync() error }
	catalog *catalog.Catalog

	redisClient xredis.Client
	publisher   pubsub.Publisher
	tokenEngine authenticator.TokenEngine[model.AccessToken]

	factionRepo          repository.FactionRepository
	factionMemberRepo    repository.FactionMemberRepository
	pointTransactionRepo repository.PointTransactionRepository
	qrCodeRepo           repository.QRCodeRepository

	leaderboard statistic.Leaderboard
	aggregator  statistic.Aggregator
	ledger      ledger.Ledger

	factionDomain   domain.FactionDomain
	pointDomain     domain.PointDomain
	qrCodeDomain    domain.QRCodeDomain
	statisticDomain domain.StatisticDomain

	router *router.Router

	// closers release external clients once the server is stopped.
	closers []func() error
}

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg, err := config.Load(cctx.String("config"))
	if err != nil {
		return err
	}

	s.ctx = xcontext.WithConfigs(s.ctx, *cfg)
	s.loadLogger()
	return nil
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx)
	l := logger.NewZapLogger(cfg.Log.Level, cfg.Log.JSON)
	s.logger = l
	s.ctx = xcontext.WithLogger(s.ctx, l)
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Kind {
	case "mysql":
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	default:
		dialector = sqlite.Open(cfg.ConnectionString())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		panic(err)
	}

	// SQLite allows a single writer.
	if cfg.Kind != "mysql" {
		sqlDB, err := db.DB()
		if err != nil {
			panic(err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	xcontext.Logger(s.ctx).Infof("Connected to %s database", cfg.Kind)
	return db
}

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}

	if err := migration.SeedFactions(s.ctx, s.catalog); err != nil {
		panic(err)
	}
}

func (s *srv) loadCatalog() {
	path := xcontext.Configs(s.ctx).Faction.CatalogPath
	if path == "" {
		s.catalog = catalog.Default()
		return
	}

	var err error
	s.catalog, err = catalog.Load(path)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadSnowflake() {
	node, err := snowflake.NewNode(xcontext.Configs(s.ctx).Faction.SnowflakeNode)
	if err != nil {
		panic(err)
	}

	s.ctx = xcontext.WithSnowFlake(s.ctx, node)
}

func (s *srv) loadRedisClient() {
	if !xcontext.Configs(s.ctx).Redis.Enable {
		xcontext.Logger(s.ctx).Infof("Redis is disabled, leaderboards are computed from database")
		return
	}

	client, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = client
	s.closers = append(s.closers, client.Close)
}

func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		xcontext.Logger(s.ctx).Infof("Kafka is disabled, point events are not published")
		return
	}

	publisher, err := kafka.NewPublisher("faction-api", []string{cfg.Addr})
	if err != nil {
		panic(err)
	}

	s.publisher = publisher
	s.closers = append(s.closers, func() error { return publisher.Stop(s.ctx) })
}

func (s *srv) loadTokenEngine() {
	cfg := xcontext.Configs(s.ctx).Auth
	s.tokenEngine = authenticator.NewTokenEngine[model.AccessToken](cfg.TokenSecret, cfg.AccessToken.Expiration)
}

func (s *srv) loadRepos() {
	s.factionRepo = repository.NewFactionRepository()
	s.factionMemberRepo = repository.NewFactionMemberRepository()
	s.pointTransactionRepo = repository.NewPointTransactionRepository()
	s.qrCodeRepo = repository.NewQRCodeRepository()
}

func (s *srv) loadDomains() {
	s.leaderboard = statistic.NewLeaderboard(s.factionMemberRepo, s.pointTransactionRepo, s.redisClient)
	s.aggregator = statistic.NewAggregator(s.catalog, s.factionRepo, s.factionMemberRepo, s.pointTransactionRepo)
	s.ledger = ledger.New(s.factionMemberRepo, s.pointTransactionRepo, s.leaderboard, s.publisher)

	s.factionDomain = domain.NewFactionDomain(s.catalog, s.factionRepo, s.factionMemberRepo,
		s.pointTransactionRepo, s.ledger, s.leaderboard)
	s.pointDomain = domain.NewPointDomain(s.catalog, s.factionMemberRepo, s.ledger)
	s.qrCodeDomain = domain.NewQRCodeDomain(s.catalog, s.qrCodeRepo, s.factionMemberRepo, s.ledger)
	s.statisticDomain = domain.NewStatisticDomain(s.catalog, s.factionMemberRepo, s.aggregator,
		s.leaderboard, s.ledger)
}

func (s *srv) closeClients() {
	for _, c := range s.closers {
		if err := c(); err != nil {
			xcontext.Logger(s.ctx).Warnf("Cannot close client: %v", err)
		}
	}
}

func (s *srv) syncLogger() {
	if s.logger != nil {
		if err := s.logger.Sync(); err != nil {
			fmt.Println("Cannot sync logger:", err)
		}
	}
}
