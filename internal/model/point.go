package model

type GetMyPointsRequest struct{}

type GetMyPointsResponse struct {
	Points int64 `json:"points"`
}

type GetMyTransactionsRequest struct{}

type GetMyTransactionsResponse struct {
	Transactions []PointTransaction `json:"transactions"`
}

type GetTransactionsRequest struct {
	UserID    string `form:"user_id"`
	FactionID string `form:"faction_id"`
}

type GetTransactionsResponse struct {
	Transactions []PointTransaction `json:"transactions"`
}

// AwardBonusPointsRequest grants points to a member. If ActivityID is set, points and description
// come from the bonus activity of the contest.
type AwardBonusPointsRequest struct {
	UserID      string `json:"user_id"`
	Points      int64  `json:"points"`
	Type        string `json:"type"`
	Description string `json:"description"`
	ActivityID  string `json:"activity_id"`
}

type AwardBonusPointsResponse struct {
	Transaction PointTransaction `json:"transaction"`
}
