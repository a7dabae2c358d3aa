package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/xcontext"
	"github.com/shopspring/decimal"
)

const (
	FactionMystic = "mystic-guardians"
	FactionSports = "gridiron-legends"
	FactionPixel  = "pixel-pioneers"
	FactionShadow = "shadow-syndicate"

	Staff1 = "staff1"
)

var (
	now = time.Date(2026, 11, 13, 10, 0, 0, 0, time.UTC)

	// Member1 and Member2 are active in the mystic guardians, Member3 in the pixel pioneers.
	// Member4 left the shadow syndicate.
	Member1 = &entity.FactionMember{
		UserID:      "user1",
		FactionID:   FactionMystic,
		DisplayName: sql.NullString{Valid: true, String: "Alice"},
		JoinedAt:    now,
		IsActive:    true,
	}

	Member2 = &entity.FactionMember{
		UserID:    "user2",
		FactionID: FactionMystic,
		JoinedAt:  now.Add(time.Minute),
		IsActive:  true,
	}

	Member3 = &entity.FactionMember{
		UserID:      "user3",
		FactionID:   FactionPixel,
		DisplayName: sql.NullString{Valid: true, String: "Carol"},
		JoinedAt:    now.Add(2 * time.Minute),
		IsActive:    true,
	}

	Member4 = &entity.FactionMember{
		UserID:    "user4",
		FactionID: FactionShadow,
		JoinedAt:  now.Add(3 * time.Minute),
		IsActive:  false,
	}

	// Totals: user1 = 65, user2 = 25, user3 = 20, user4 = 25.
	// Factions: mystic = 90, pixel = 20, shadow = 25, sports = 0.
	Transaction1 = &entity.PointTransaction{
		ID: 1, CreatedAt: now, UserID: "user1", FactionID: FactionMystic,
		Points: 25, Type: entity.PointBonus, Description: "Welcome bonus",
	}

	Transaction2 = &entity.PointTransaction{
		ID: 2, CreatedAt: now.Add(time.Minute), UserID: "user2", FactionID: FactionMystic,
		Points: 25, Type: entity.PointBonus, Description: "Welcome bonus",
	}

	Transaction3 = &entity.PointTransaction{
		ID: 3, CreatedAt: now.Add(2 * time.Minute), UserID: "user3", FactionID: FactionPixel,
		Points: 25, Type: entity.PointBonus, Description: "Welcome bonus",
	}

	Transaction4 = &entity.PointTransaction{
		ID: 4, CreatedAt: now.Add(3 * time.Minute), UserID: "user4", FactionID: FactionShadow,
		Points: 25, Type: entity.PointBonus, Description: "Welcome bonus",
	}

	Transaction5 = &entity.PointTransaction{
		ID: 5, CreatedAt: now.Add(4 * time.Minute), UserID: "user1", FactionID: FactionMystic,
		Points: 40, Type: entity.PointPurchase, Description: "Purchase of $40.00",
		QRCodeID:   sql.NullString{Valid: true, String: "qr2"},
		VerifiedBy: sql.NullString{Valid: true, String: Staff1},
	}

	Transaction6 = &entity.PointTransaction{
		ID: 6, CreatedAt: now.Add(5 * time.Minute), UserID: "user3", FactionID: FactionPixel,
		Points: -5, Type: entity.PointPenalty, Description: "Late return",
		VerifiedBy: sql.NullString{Valid: true, String: Staff1},
	}

	// QRCode1 is redeemable, QRCode2 was redeemed by Transaction5, QRCode3 is expired.
	QRCode1 = &entity.QRCode{
		Base:           entity.Base{ID: "qr1", CreatedAt: now},
		Code:           "FC-MYS-USER1XXX-1794564000000-ABC123",
		UserID:         "user1",
		FactionID:      FactionMystic,
		TicketID:       sql.NullString{Valid: true, String: "ticket1"},
		PurchaseAmount: decimal.RequireFromString("12.50"),
		PointsAwarded:  12,
		ExpiresAt:      sql.NullTime{Valid: true, Time: time.Now().Add(24 * time.Hour)},
	}

	QRCode2 = &entity.QRCode{
		Base:           entity.Base{ID: "qr2", CreatedAt: now},
		Code:           "FC-MYS-USER1XXX-1794564000001-DEF456",
		UserID:         "user1",
		FactionID:      FactionMystic,
		PurchaseAmount: decimal.RequireFromString("40"),
		PointsAwarded:  40,
		Used:           true,
		UsedAt:         sql.NullTime{Valid: true, Time: now.Add(4 * time.Minute)},
		VerifiedBy:     sql.NullString{Valid: true, String: Staff1},
		ExpiresAt:      sql.NullTime{Valid: true, Time: time.Now().Add(24 * time.Hour)},
	}

	QRCode3 = &entity.QRCode{
		Base:           entity.Base{ID: "qr3", CreatedAt: now},
		Code:           "FC-PIX-USER3XXX-1794564000002-GHI789",
		UserID:         "user3",
		FactionID:      FactionPixel,
		PurchaseAmount: decimal.RequireFromString("30"),
		PointsAwarded:  30,
		ExpiresAt:      sql.NullTime{Valid: true, Time: time.Now().Add(-time.Hour)},
	}
)

// CreateFixtureDb inserts the package-level fixtures. Fixtures are recreated for every call, so
// tests may modify the returned rows freely.
func CreateFixtureDb(ctx context.Context) {
	db := xcontext.DB(ctx)

	for _, m := range []*entity.FactionMember{Member1, Member2, Member3, Member4} {
		c := *m
		if err := db.Omit("Faction").Create(&c).Error; err != nil {
			panic(err)
		}
	}

	for _, tx := range []*entity.PointTransaction{
		Transaction1, Transaction2, Transaction3, Transaction4, Transaction5, Transaction6,
	} {
		c := *tx
		if err := db.Create(&c).Error; err != nil {
			panic(err)
		}
	}

	for _, qr := range []*entity.QRCode{QRCode1, QRCode2, QRCode3} {
		c := *qr
		if err := db.Create(&c).Error; err != nil {
			panic(err)
		}
	}
}
