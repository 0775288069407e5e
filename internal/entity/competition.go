package entity

import (
	"database/sql"
	"time"
)

// Competition is a scored window over one metric. Management (creation,
// membership) belongs to an external collaborator; this side only reads.
type Competition struct {
	Base
	Title    string
	Metric   Metric
	StartsAt time.Time
	EndsAt   time.Time
}

// Participation enrolls a player into a competition, optionally under a
// team name.
type Participation struct {
	CompetitionID string      `gorm:"primaryKey"`
	Competition   Competition `gorm:"foreignKey:CompetitionID"`
	PlayerID      string      `gorm:"primaryKey"`
	Player        Player      `gorm:"foreignKey:PlayerID"`
	TeamName      sql.NullString
	CreatedAt     time.Time
}
