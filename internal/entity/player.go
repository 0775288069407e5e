package entity

import (
	"database/sql"

	"github.com/xptrack-lab/backend/pkg/enum"
)

type PlayerStatus string

var (
	PlayerActive   = enum.New(PlayerStatus("active"), "active")
	PlayerFlagged  = enum.New(PlayerStatus("flagged"), "flagged")
	PlayerBanned   = enum.New(PlayerStatus("banned"), "banned")
	PlayerArchived = enum.New(PlayerStatus("archived"), "archived")
)

type Player struct {
	Base
	Username    string `gorm:"uniqueIndex"`
	DisplayName string
	Status      PlayerStatus

	// LastUpdatedAt is the creation time of the player's latest snapshot.
	LastUpdatedAt sql.NullTime

	// LastChangedAt is the last time a snapshot actually gained value over
	// its predecessor.
	LastChangedAt sql.NullTime
}
