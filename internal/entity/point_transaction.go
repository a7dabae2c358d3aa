package entity

import (
	"database/sql"
	"time"

	"github.com/cardcon-lab/backend/pkg/enum"
)

type PointTransactionType string

var (
	PointPurchase = enum.New(PointTransactionType("purchase"))
	PointBonus    = enum.New(PointTransactionType("bonus"))
	PointPenalty  = enum.New(PointTransactionType("penalty"))
	PointManual   = enum.New(PointTransactionType("manual"))
)

// PointTransaction is an append-only ledger entry. ID is a snowflake id, ordering by ID gives the
// insertion order.
type PointTransaction struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"`
	CreatedAt time.Time

	UserID      string `gorm:"index"`
	FactionID   string `gorm:"index"`
	Points      int64
	Type        PointTransactionType `gorm:"index"`
	Description string
	QRCodeID    sql.NullString `gorm:"index"`
	VerifiedBy  sql.NullString
}
