package entity

import (
	"database/sql"
	"time"
)

// FactionMember is the membership row of a user. A user has at most one row; leaving a faction
// only clears IsActive so that the history is kept.
type FactionMember struct {
	UserID    string `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	FactionID   string  `gorm:"index"`
	Faction     Faction `gorm:"foreignKey:FactionID"`
	DisplayName sql.NullString
	JoinedAt    time.Time
	IsActive    bool `gorm:"index"`
}
