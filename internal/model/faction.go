package model

type GetFactionsRequest struct {
	Theme string `form:"theme"`
}

type GetFactionsResponse struct {
	Factions []Faction `json:"factions"`
}

type GetFactionRequest struct {
	ID string `form:"id"`
}

type GetFactionResponse Faction

type GetContestRequest struct{}

type GetContestResponse Contest

type CanJoinFactionRequest struct {
	FactionID string `form:"faction_id"`
}

type CanJoinFactionResponse struct {
	CanJoin bool   `json:"can_join"`
	Reason  string `json:"reason,omitempty"`
}

type JoinFactionRequest struct {
	FactionID   string `json:"faction_id"`
	DisplayName string `json:"display_name"`
}

type JoinFactionResponse struct {
	Member       FactionMember `json:"member"`
	WelcomeBonus int64         `json:"welcome_bonus"`
}

type LeaveFactionRequest struct{}

type LeaveFactionResponse struct {
	Left bool `json:"left"`
}

type GetMyFactionRequest struct{}

type GetMyFactionResponse struct {
	Member  FactionMember `json:"member"`
	Faction Faction       `json:"faction"`
}

type GetFactionMembersRequest struct {
	FactionID string `form:"faction_id"`
}

type GetFactionMembersResponse struct {
	Members []FactionMember `json:"members"`
}

type ValidateMembershipRequest struct {
	UserID    string `form:"user_id"`
	FactionID string `form:"faction_id"`
}

type ValidateMembershipResponse struct {
	Valid  bool           `json:"valid"`
	Reason string         `json:"reason,omitempty"`
	Member *FactionMember `json:"member,omitempty"`
}
