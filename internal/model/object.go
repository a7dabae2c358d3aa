package model

import "github.com/shopspring/decimal"

type Faction struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Theme       string   `json:"theme"`
	Colors      []string `json:"colors"`
	Motto       string   `json:"motto"`
	Benefits    []string `json:"benefits"`
	TotalPoints int64    `json:"total_points"`
	MemberCount int64    `json:"member_count"`
}

type PrizeTier struct {
	Rank   int    `json:"rank"`
	Title  string `json:"title"`
	Reward string `json:"reward"`
}

type BonusActivity struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Points      int64  `json:"points"`
	Description string `json:"description"`
}

type Contest struct {
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	Rules           []string        `json:"rules"`
	PointsPerDollar float64         `json:"points_per_dollar"`
	PrizeTiers      []PrizeTier     `json:"prize_tiers"`
	BonusActivities []BonusActivity `json:"bonus_activities"`
}

type FactionMember struct {
	UserID      string `json:"user_id"`
	FactionID   string `json:"faction_id"`
	DisplayName string `json:"display_name,omitempty"`
	JoinedAt    string `json:"joined_at"`
	IsActive    bool   `json:"is_active"`
	TotalPoints int64  `json:"total_points"`
}

type PointTransaction struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	FactionID   string `json:"faction_id"`
	Points      int64  `json:"points"`
	Type        string `json:"type"`
	Description string `json:"description"`
	QRCodeID    string `json:"qr_code_id,omitempty"`
	VerifiedBy  string `json:"verified_by,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type QRCode struct {
	ID             string          `json:"id"`
	Code           string          `json:"code"`
	UserID         string          `json:"user_id"`
	FactionID      string          `json:"faction_id"`
	TicketID       string          `json:"ticket_id,omitempty"`
	PurchaseAmount decimal.Decimal `json:"purchase_amount"`
	PointsAwarded  int64           `json:"points_awarded"`
	Used           bool            `json:"used"`
	UsedAt         string          `json:"used_at,omitempty"`
	VerifiedBy     string          `json:"verified_by,omitempty"`
	ExpiresAt      string          `json:"expires_at,omitempty"`
	CreatedAt      string          `json:"created_at"`
}

type MemberPoints struct {
	UserID string `json:"user_id"`
	Points int64  `json:"points"`
	Rank   int    `json:"rank"`
}

type FactionStats struct {
	Faction                Faction        `json:"faction"`
	TotalPoints            int64          `json:"total_points"`
	MemberCount            int64          `json:"member_count"`
	AveragePointsPerMember float64        `json:"average_points_per_member"`
	Rank                   int            `json:"rank"`
	PurchasePoints         int64          `json:"purchase_points"`
	BonusPoints            int64          `json:"bonus_points"`
	TopMembers             []MemberPoints `json:"top_members"`
}
