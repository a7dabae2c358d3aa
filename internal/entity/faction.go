package entity

import "time"

// Faction is the persisted snapshot of a catalog faction. The catalog file stays the reference;
// TotalPoints and MemberCount are informational counters refreshed by the statistic aggregator.
type Faction struct {
	ID        string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name        string
	Theme       string
	Colors      Array[string] `gorm:"type:text"`
	Motto       string
	Benefits    Array[string] `gorm:"type:text"`
	Position    int
	TotalPoints int64
	MemberCount int64
}
