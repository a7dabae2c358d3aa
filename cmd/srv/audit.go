package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardcon-lab/backend/internal/common"
	"github.com/cardcon-lab/backend/internal/domain/ledger"
	"github.com/cardcon-lab/backend/pkg/kafka"
	"github.com/cardcon-lab/backend/pkg/pubsub"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startAudit(*cli.Context) error {
	defer s.syncLogger()

	cfg := xcontext.Configs(s.ctx).Kafka
	if !cfg.Enable {
		return errors.New("kafka is disabled, enable it to run the audit consumer")
	}

	subscriber, err := kafka.NewSubscriber(
		cfg.GroupID,
		[]string{cfg.Addr},
		[]string{common.PointTransactionTopic},
		auditPointTransaction,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(ctx).Infof("Starting audit consumer on %s", cfg.Addr)
	subscriber.Subscribe(ctx)

	return subscriber.Stop(context.Background())
}

func auditPointTransaction(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	tx, err := ledger.DecodeEvent(pack)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot decode point event: %v", err)
		return
	}

	xcontext.Logger(ctx).Infof("point_transaction id=%s user=%s faction=%s type=%s points=%d verified_by=%s at=%s",
		tx.ID, tx.UserID, tx.FactionID, tx.Type, tx.Points, tx.VerifiedBy, t.Format(time.RFC3339))
}
