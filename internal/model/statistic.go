package model

import "time"

type GetDeltaRequest struct {
	Username string `json:"username"`
	Period   string `json:"period"`

	// Custom range, used when Period is empty. Millisecond timestamps.
	StartDate int64 `json:"start_date"`
	EndDate   int64 `json:"end_date"`
}

// MetricGain is the signed gain of one metric over a period. Gained is nil
// when either endpoint was unranked, never a numeric zero.
type MetricGain struct {
	Metric     string `json:"metric"`
	Gained     *int64 `json:"gained"`
	StartValue int64  `json:"start_value"`
	EndValue   int64  `json:"end_value"`
	StartRank  int    `json:"start_rank"`
	EndRank    int    `json:"end_rank"`
}

type GetDeltaResponse struct {
	Username string       `json:"username"`
	StartsAt time.Time    `json:"starts_at"`
	EndsAt   time.Time    `json:"ends_at"`
	Gains    []MetricGain `json:"gains"`
}

type GetRecordsRequest struct {
	Username string `json:"username"`
	Period   string `json:"period"`
	Metric   string `json:"metric"`
}

type Record struct {
	Period    string    `json:"period"`
	Metric    string    `json:"metric"`
	Value     float64   `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GetRecordsResponse struct {
	Records []Record `json:"records"`
}

type GetEfficiencyRequest struct {
	Username string `json:"username"`
}

type GetEfficiencyResponse struct {
	Hours    map[string]float64 `json:"hours"`
	TotalEHP float64            `json:"total_ehp"`
	TotalEHB float64            `json:"total_ehb"`
}
