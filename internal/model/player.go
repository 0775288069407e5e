package model

import "time"

type RequestUpdateRequest struct {
	Username string `json:"username"`
}

const (
	UpdateAccepted          = "accepted"
	UpdateAlreadyInProgress = "already_in_progress"
	UpdateRejected          = "rejected"
)

type RequestUpdateResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type GetPlayerRequest struct {
	Username string `json:"username"`
}

type Player struct {
	ID            string     `json:"id"`
	Username      string     `json:"username"`
	DisplayName   string     `json:"display_name"`
	Status        string     `json:"status"`
	RegisteredAt  time.Time  `json:"registered_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`
	LastChangedAt *time.Time `json:"last_changed_at"`
}

type GetPlayerResponse struct {
	Player Player `json:"player"`
}
