package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/cardcon-lab/backend/internal/entity"
	"github.com/cardcon-lab/backend/pkg/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_qrCodeRepository_CreateAndGet(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewQRCodeRepository()

	expiresAt := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	qr := &entity.QRCode{
		Base:           entity.Base{ID: "qr4"},
		Code:           "FC-GRI-USER2XXX-1794564000003-JKL012",
		UserID:         "user2",
		FactionID:      testutil.FactionSports,
		PurchaseAmount: decimal.RequireFromString("24.99"),
		PointsAwarded:  24,
		ExpiresAt:      sql.NullTime{Valid: true, Time: expiresAt},
	}
	require.NoError(t, repo.Create(ctx, qr))

	got, err := repo.GetByCode(ctx, qr.Code)
	require.NoError(t, err)
	require.Equal(t, "qr4", got.ID)
	require.True(t, decimal.RequireFromString("24.99").Equal(got.PurchaseAmount))
	require.True(t, got.ExpiresAt.Valid)
	require.True(t, expiresAt.Equal(got.ExpiresAt.Time))
	require.False(t, got.Used)

	got, err = repo.GetByID(ctx, "qr4")
	require.NoError(t, err)
	require.Equal(t, qr.Code, got.Code)

	// Codes are unique.
	err = repo.Create(ctx, &entity.QRCode{Base: entity.Base{ID: "qr5"}, Code: qr.Code, UserID: "user2"})
	require.Error(t, err)

	_, err = repo.GetByID(ctx, "unknown")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_qrCodeRepository_GetByUserID(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)

	qrs, err := NewQRCodeRepository().GetByUserID(ctx, "user1")
	require.NoError(t, err)
	require.Len(t, qrs, 2)

	qrs, err = NewQRCodeRepository().GetByUserID(ctx, "user2")
	require.NoError(t, err)
	require.Empty(t, qrs)
}

func Test_qrCodeRepository_MarkUsed(t *testing.T) {
	ctx := testutil.MockContext()
	testutil.CreateFixtureDb(ctx)
	repo := NewQRCodeRepository()

	verifier := sql.NullString{Valid: true, String: testutil.Staff1}
	ok, err := repo.MarkUsed(ctx, testutil.QRCode1.ID, time.Now(), verifier)
	require.NoError(t, err)
	require.True(t, ok)

	got, err := repo.GetByID(ctx, testutil.QRCode1.ID)
	require.NoError(t, err)
	require.True(t, got.Used)
	require.True(t, got.UsedAt.Valid)
	require.Equal(t, testutil.Staff1, got.VerifiedBy.String)

	// The second attempt loses.
	ok, err = repo.MarkUsed(ctx, testutil.QRCode1.ID, time.Now(), verifier)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = repo.MarkUsed(ctx, "unknown", time.Now(), verifier)
	require.NoError(t, err)
	require.False(t, ok)
}
