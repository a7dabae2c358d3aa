package domain

import (
	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/xredis"
)

type testDomains struct {
	faction   *factionDomain
	point     *pointDomain
	qrCode    *qrCodeDomain
	statistic *statisticDomain

	pointTransactionRepo repository.PointTransactionRepository
	qrCodeRepo           repository.QRCodeRepository
}

// newTestDomains wires every domain on the repositories of the context database. redisClient may be
// nil, then the leaderboard reads from the database.
func newTestDomains(redisClient xredis.Client) *testDomains {
	cat := catalog.Default()
	factionRepo := repository.NewFactionRepository()
	memberRepo := repository.NewFactionMemberRepository()
	txRepo := repository.NewPointTransactionRepository()
	qrRepo := repository.NewQRCodeRepository()

	leaderboard := statistic.NewLeaderboard(memberRepo, txRepo, redisClient)
	aggregator := statistic.NewAggregator(cat, factionRepo, memberRepo, txRepo)
	l := ledger.New(memberRepo, txRepo, leaderboard, nil)

	return &testDomains{
		faction:              NewFactionDomain(cat, factionRepo, memberRepo, txRepo, l, leaderboard),
		point:                NewPointDomain(cat, memberRepo, l),
		qrCode:               NewQRCodeDomain(cat, qrRepo, memberRepo, l),
		statistic:            NewStatisticDomain(cat, memberRepo, aggregator, leaderboard, l),
		pointTransactionRepo: txRepo,
		qrCodeRepo:           qrRepo,
	}
}
