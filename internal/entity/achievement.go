package entity

import "time"

// Achievement marks that a player crossed a threshold definition. A row is
// created once per (player, name) and never removed. CreatedAt is the
// estimated crossing time; Imprecise marks estimates derived from history
// that already satisfied the threshold at its earliest known snapshot.
type Achievement struct {
	PlayerID  string `gorm:"primaryKey"`
	Player    Player `gorm:"foreignKey:PlayerID"`
	Name      string `gorm:"primaryKey"`
	Metric    Metric
	Threshold int64
	CreatedAt time.Time
	Imprecise bool
}
