package model

import "time"

type ScoreCompetitionRequest struct {
	CompetitionID string `json:"competition_id"`
}

type CompetitionStanding struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	TeamName string `json:"team_name,omitempty"`
	Rank     int    `json:"rank"`

	// Gained is nil when the participant had no ranked snapshot pair inside
	// the window; such participants sort last.
	Gained *int64 `json:"gained"`

	// PartialCoverage marks participants whose tracking began after the
	// window opened. They are still ranked.
	PartialCoverage bool `json:"partial_coverage"`
}

type TeamStanding struct {
	TeamName string `json:"team_name"`
	Rank     int    `json:"rank"`
	Gained   int64  `json:"gained"`
}

type GetCompetitionRankRequest struct {
	CompetitionID string `json:"competition_id"`
	Username      string `json:"username"`
}

// RankedScore is one cached scoreboard entry.
type RankedScore struct {
	PlayerID string `json:"player_id"`
	Gained   int64  `json:"gained"`
}

type GetCompetitionRankResponse struct {
	CompetitionID string        `json:"competition_id"`
	PlayerID      string        `json:"player_id"`
	Rank          int           `json:"rank"`
	Top           []RankedScore `json:"top"`
}

type ScoreCompetitionResponse struct {
	CompetitionID string                `json:"competition_id"`
	Metric        string                `json:"metric"`
	StartsAt      time.Time             `json:"starts_at"`
	EndsAt        time.Time             `json:"ends_at"`
	Standings     []CompetitionStanding `json:"standings"`
	Teams         []TeamStanding        `json:"teams,omitempty"`
}
