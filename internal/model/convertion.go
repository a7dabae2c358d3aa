package model

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/cardcon-lab/backend/internal/domain/catalog"
	"github.com/cardcon-lab/backend/internal/domain/statistic"
	"github.com/cardcon-lab/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func ConvertFaction(f catalog.Faction, snapshot *entity.Faction) Faction {
	result := Faction{
		ID:       f.ID,
		Name:     f.Name,
		Theme:    f.Theme,
		Colors:   append([]string{}, f.Colors...),
		Motto:    f.Motto,
		Benefits: append([]string{}, f.Benefits...),
	}

	if snapshot != nil {
		result.TotalPoints = snapshot.TotalPoints
		result.MemberCount = snapshot.MemberCount
	}

	return result
}

func ConvertContest(c catalog.Contest) Contest {
	tiers := []PrizeTier{}
	for _, t := range c.PrizeTiers {
		tiers = append(tiers, PrizeTier{Rank: t.Rank, Title: t.Title, Reward: t.Reward})
	}

	activities := []BonusActivity{}
	for _, a := range c.BonusActivities {
		activities = append(activities, ConvertBonusActivity(a))
	}

	return Contest{
		Name:            c.Name,
		Description:     c.Description,
		StartDate:       c.StartDate.Format(DefaultTimeLayout),
		EndDate:         c.EndDate.Format(DefaultTimeLayout),
		Rules:           append([]string{}, c.Rules...),
		PointsPerDollar: c.PointsPerDollar,
		PrizeTiers:      tiers,
		BonusActivities: activities,
	}
}

func ConvertBonusActivity(a catalog.BonusActivity) BonusActivity {
	return BonusActivity{
		ID:          a.ID,
		Name:        a.Name,
		Points:      a.Points,
		Description: a.Description,
	}
}

func ConvertFactionMember(m *entity.FactionMember, totalPoints int64) FactionMember {
	if m == nil {
		return FactionMember{}
	}

	return FactionMember{
		UserID:      m.UserID,
		FactionID:   m.FactionID,
		DisplayName: m.DisplayName.String,
		JoinedAt:    m.JoinedAt.Format(DefaultTimeLayout),
		IsActive:    m.IsActive,
		TotalPoints: totalPoints,
	}
}

func ConvertPointTransaction(tx *entity.PointTransaction) PointTransaction {
	if tx == nil {
		return PointTransaction{}
	}

	return PointTransaction{
		ID:          strconv.FormatInt(tx.ID, 10),
		UserID:      tx.UserID,
		FactionID:   tx.FactionID,
		Points:      tx.Points,
		Type:        string(tx.Type),
		Description: tx.Description,
		QRCodeID:    tx.QRCodeID.String,
		VerifiedBy:  tx.VerifiedBy.String,
		CreatedAt:   tx.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertQRCode(qr *entity.QRCode) QRCode {
	if qr == nil {
		return QRCode{}
	}

	return QRCode{
		ID:             qr.ID,
		Code:           qr.Code,
		UserID:         qr.UserID,
		FactionID:      qr.FactionID,
		TicketID:       qr.TicketID.String,
		PurchaseAmount: qr.PurchaseAmount,
		PointsAwarded:  qr.PointsAwarded,
		Used:           qr.Used,
		UsedAt:         formatNullTime(qr.UsedAt),
		VerifiedBy:     qr.VerifiedBy.String,
		ExpiresAt:      formatNullTime(qr.ExpiresAt),
		CreatedAt:      qr.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertMemberPoints(m statistic.MemberPoints) MemberPoints {
	return MemberPoints{UserID: m.UserID, Points: m.Points, Rank: m.Rank}
}

func ConvertFactionStats(s statistic.FactionStats, f catalog.Faction) FactionStats {
	topMembers := []MemberPoints{}
	for _, m := range s.TopMembers {
		topMembers = append(topMembers, ConvertMemberPoints(m))
	}

	faction := ConvertFaction(f, nil)
	faction.TotalPoints = s.TotalPoints
	faction.MemberCount = s.MemberCount

	return FactionStats{
		Faction:                faction,
		TotalPoints:            s.TotalPoints,
		MemberCount:            s.MemberCount,
		AveragePointsPerMember: s.AveragePointsPerMember,
		Rank:                   s.Rank,
		PurchasePoints:         s.PurchasePoints,
		BonusPoints:            s.BonusPoints,
		TopMembers:             topMembers,
	}
}

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(DefaultTimeLayout)
}
