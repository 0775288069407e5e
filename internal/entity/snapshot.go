package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/xptrack-lab/backend/pkg/enum"
)

// MetricValue is one point-in-time measurement of a single metric.
type MetricValue struct {
	Rank  int   `json:"rank"`
	Value int64 `json:"value"`
}

// IsUnranked reports whether the source had no rank for this metric when
// the snapshot was taken.
func (v MetricValue) IsUnranked() bool {
	return v.Value <= UnrankedValue
}

type MetricValues map[Metric]MetricValue

func (m *MetricValues) Scan(value any) error {
	switch t := value.(type) {
	case string:
		return json.Unmarshal([]byte(t), m)
	case []byte:
		return json.Unmarshal(t, m)
	default:
		return fmt.Errorf("cannot scan invalid data type %T", value)
	}
}

func (m MetricValues) Value() (driver.Value, error) {
	return json.Marshal(m)
}

type SnapshotSource string

var (
	SnapshotSourceUpdate = enum.New(SnapshotSource("update"), "update")
	SnapshotSourceImport = enum.New(SnapshotSource("import"), "import")
)

// Snapshot is an immutable measurement of every cataloged metric of one
// player at one instant. Rows are append-only; two snapshots of the same
// player order by CreatedAt, with the time-ordered ID breaking ties.
type Snapshot struct {
	ID        int64 `gorm:"primaryKey"`
	PlayerID  string `gorm:"index:idx_snapshots_player_time,priority:1"`
	Player    Player `gorm:"foreignKey:PlayerID"`
	CreatedAt time.Time `gorm:"index:idx_snapshots_player_time,priority:2"`
	Source    SnapshotSource
	Values    MetricValues `gorm:"type:text"`
}

// Get returns the measurement of a metric, falling back to an unranked
// value for metrics the snapshot predates.
func (s *Snapshot) Get(metric Metric) MetricValue {
	if v, ok := s.Values[metric]; ok {
		return v
	}

	return MetricValue{Rank: int(UnrankedValue), Value: UnrankedValue}
}
