package model

import "time"

type GetAchievementsRequest struct {
	Username string `json:"username"`
}

type Achievement struct {
	Name      string    `json:"name"`
	Metric    string    `json:"metric"`
	Threshold int64     `json:"threshold"`
	CreatedAt time.Time `json:"created_at"`

	// Imprecise marks crossing dates estimated from history that already
	// satisfied the threshold at its earliest known snapshot.
	Imprecise bool `json:"imprecise"`
}

type GetAchievementsResponse struct {
	Achievements []Achievement `json:"achievements"`
}
