package entity

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

type QRCode struct {
	Base

	Code           string `gorm:"uniqueIndex;size:64"`
	UserID         string `gorm:"index"`
	FactionID      string
	TicketID       sql.NullString
	PurchaseAmount decimal.Decimal `gorm:"type:decimal(12,2)"`
	PointsAwarded  int64
	Used           bool
	UsedAt         sql.NullTime
	VerifiedBy     sql.NullString
	ExpiresAt      sql.NullTime
}
