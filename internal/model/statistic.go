package model

type GetFactionStatsRequest struct {
	FactionID string `form:"faction_id"`
}

type GetFactionStatsResponse FactionStats

type GetAllFactionStatsRequest struct{}

type GetAllFactionStatsResponse struct {
	Stats []FactionStats `json:"stats"`
}

type GetLeaderBoardRequest struct {
	FactionID string `form:"faction_id"`
	Offset    int    `form:"offset"`
	Limit     int    `form:"limit"`
}

type GetLeaderBoardResponse struct {
	LeaderBoard []MemberPoints `json:"leaderboard"`
}

type GetMyRankRequest struct{}

type GetMyRankResponse struct {
	FactionID string `json:"faction_id"`
	Rank      uint64 `json:"rank"`
	Points    int64  `json:"points"`
}
