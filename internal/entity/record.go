package entity

import "time"

// Record is the best gain ever observed for one (player, period, metric)
// key. Value only ever grows; it is replaced by strictly greater gains and
// never decreased. Virtual metric values are stored scaled by
// VirtualMetricScale.
type Record struct {
	PlayerID  string     `gorm:"primaryKey"`
	Player    Player     `gorm:"foreignKey:PlayerID"`
	Period    PeriodName `gorm:"primaryKey"`
	Metric    Metric     `gorm:"primaryKey"`
	Value     int64
	UpdatedAt time.Time
}
