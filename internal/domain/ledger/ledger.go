package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/internal/model"
	"github.com/cardcon-lab/backend/internal/repository"
	"github.com/cardcon-lab/backend/pkg/errorx"
	"github.com/cardcon-lab/backend/pkg/pubsub"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// Ledger is the append-only log of point movements. The points of a user are the sum of the
// user's transactions.
type Ledger interface {
	// Record appends the transaction. It joins the database transaction of ctx if any. The
	// transaction must belong to an existing member.
	Record(ctx context.Context, tx *entity.PointTransaction) error

	// Announce propagates recorded transactions to metrics, the leaderboard cache and the event
	// topic. It must be called once the database transaction is committed. Failures are logged.
	Announce(ctx context.Context, txs ...entity.PointTransaction)

	// Query returns the transactions matching the non-empty filters in insertion order.
	Query(ctx context.Context, userID, factionID string) ([]entity.PointTransaction, error)

	Points(ctx context.Context, userID string) (int64, error)
}

type ledger struct {
	factionMemberRepo    repository.FactionMemberRepository
	pointTransactionRepo repository.PointTransactionRepository
	leaderboard          statistic.Leaderboard
	publisher            pubsub.Publisher
}

// New creates a ledger. publisher may be nil, then no event is published.
func New(
	factionMemberRepo repository.FactionMemberRepository,
	pointTransactionRepo repository.PointTransactionRepository,
	leaderboard statistic.Leaderboard,
	publisher pubsub.Publisher,
) *ledger {
	return &ledger{
		factionMemberRepo:    factionMemberRepo,
		pointTransactionRepo: pointTransactionRepo,
		leaderboard:          leaderboard,
		publisher:            publisher,
	}
}

func (l *ledger) Record(ctx context.Context, tx *entity.PointTransaction) error {
	if tx.UserID == "" || tx.FactionID == "" {
		return errorx.New(errorx.BadRequest, "Transaction needs a user and a faction")
	}

	if _, err := l.factionMemberRepo.Get(ctx, tx.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found member %s", tx.UserID)
		}

		xcontext.Logger(ctx).Errorf("Cannot get member: %v", err)
		return errorx.Unknown
	}

	tx.ID = xcontext.SnowFlake(ctx).Generate().Int64()
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}

	if err := l.pointTransactionRepo.Create(ctx, tx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create point transaction: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (l *ledger) Announce(ctx context.Context, txs ...entity.PointTransaction) {
	for _, tx := range txs {
		labels := []string{tx.FactionID, string(tx.Type)}
		common.PromCounters[common.PointTransactionsTotal].WithLabelValues(labels...).Inc()
		common.PromCounters[common.PointsRecordedTotal].WithLabelValues(labels...).Add(float64(abs(tx.Points)))

		l.changeLeaderboard(ctx, tx)

		if l.publisher == nil {
			continue
		}

		if err := l.publish(ctx, tx); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot publish point transaction %d: %v", tx.ID, err)
		}
	}
}

// changeLeaderboard moves the user in the leaderboard of the faction the user is currently active
// in, which may differ from the faction of the transaction.
func (l *ledger) changeLeaderboard(ctx context.Context, tx entity.PointTransaction) {
	member, err := l.factionMemberRepo.Get(ctx, tx.UserID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot get member to change leaderboard: %v", err)
		return
	}

	if !member.IsActive {
		return
	}

	if err := l.leaderboard.ChangePoints(ctx, member.FactionID, tx.UserID, tx.Points); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot change leaderboard of faction %s: %v", member.FactionID, err)
	}
}

func (l *ledger) publish(ctx context.Context, tx entity.PointTransaction) error {
	b, err := json.Marshal(model.ConvertPointTransaction(&tx))
	if err != nil {
		return err
	}

	return l.publisher.Publish(ctx, common.PointTransactionTopic, &pubsub.Pack{
		Key: []byte(tx.UserID),
		Msg: b,
	})
}

func (l *ledger) Query(ctx context.Context, userID, factionID string) ([]entity.PointTransaction, error) {
	txs, err := l.pointTransactionRepo.GetList(ctx, repository.PointTransactionFilter{
		UserID:    userID,
		FactionID: factionID,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get point transactions: %v", err)
		return nil, errorx.Unknown
	}

	return txs, nil
}

func (l *ledger) Points(ctx context.Context, userID string) (int64, error) {
	points, err := l.pointTransactionRepo.Sum(ctx, repository.PointTransactionFilter{UserID: userID})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot sum points of user: %v", err)
		return 0, errorx.Unknown
	}

	return points, nil
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}

// DecodeEvent parses a point transaction event published by the ledger.
func DecodeEvent(pack *pubsub.Pack) (model.PointTransaction, error) {
	var tx model.PointTransaction
	if err := json.Unmarshal(pack.Msg, &tx); err != nil {
		return tx, fmt.Errorf("invalid point transaction event: %w", err)
	}

	return tx, nil
}
