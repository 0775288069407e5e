package gains

import (
	"context"
	"errors"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"

	"gorm.io/gorm"
)

// Gain is the signed progress of one metric between two snapshots. Gained
// is nil when either endpoint was unranked; a nil gain is never reported
// as zero because zero means "measured, no progress".
type Gain struct {
	Metric entity.Metric
	Gained *int64
	Start  entity.MetricValue
	End    entity.MetricValue
}

// Delta is the full per-metric gain map between a snapshot pair.
type Delta struct {
	PlayerID string
	StartsAt time.Time
	EndsAt   time.Time
	Gains    []Gain
}

// Compute derives the per-metric gains between two snapshots of the same
// player. It is a pure function: negative gains (rollbacks, resets) are
// preserved as-is for sign-aware consumers.
func Compute(start, end *entity.Snapshot) Delta {
	metrics := entity.AllMetrics()
	metrics = append(metrics, entity.VirtualMetrics...)

	gains := make([]Gain, 0, len(metrics))
	for _, metric := range metrics {
		s, e := start.Get(metric), end.Get(metric)
		gains = append(gains, Gain{
			Metric: metric,
			Gained: gained(metric, s, e),
			Start:  s,
			End:    e,
		})
	}

	return Delta{
		PlayerID: end.PlayerID,
		StartsAt: start.CreatedAt,
		EndsAt:   end.CreatedAt,
		Gains:    gains,
	}
}

func gained(metric entity.Metric, start, end entity.MetricValue) *int64 {
	if end.IsUnranked() {
		return nil
	}

	if start.IsUnranked() {
		// Score metrics appear on the source with a zero baseline once
		// ranked, so an unranked start still yields a meaningful gain.
		// Every other kind stays unranked.
		if kind, ok := entity.KindOf(metric); !ok || kind != entity.KindScore {
			return nil
		}

		value := end.Value
		return &value
	}

	value := end.Value - start.Value
	return &value
}

// Calculator selects snapshot pairs for period-based deltas.
type Calculator struct {
	snapshotRepo repository.SnapshotRepository
}

func NewCalculator(snapshotRepo repository.SnapshotRepository) *Calculator {
	return &Calculator{snapshotRepo: snapshotRepo}
}

// ComputeOverPeriod computes the delta of a player over a period. The end
// snapshot is the latest one at or before the period end; the start
// snapshot is the earliest one inside the window, falling back to the
// earliest available so the delta is computed against whatever history
// exists. A player with no history yields a delta with all-unranked gains.
func (c *Calculator) ComputeOverPeriod(
	ctx context.Context, playerID string, period entity.Period,
) (Delta, error) {
	end, err := c.snapshotRepo.GetLatestBefore(ctx, playerID, period.End)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyDelta(playerID, period), nil
		}

		return Delta{}, err
	}

	start, err := c.snapshotRepo.GetFirstAfter(ctx, playerID, period.Start)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return Delta{}, err
		}

		start, err = c.snapshotRepo.GetFirst(ctx, playerID)
		if err != nil {
			return Delta{}, err
		}
	}

	// The earliest snapshot after the period start can postdate the end
	// snapshot when the window is entirely in the past. Compare against the
	// end snapshot itself in that case.
	if start.CreatedAt.After(end.CreatedAt) {
		start = end
	}

	return Compute(start, end), nil
}

func emptyDelta(playerID string, period entity.Period) Delta {
	metrics := entity.AllMetrics()
	metrics = append(metrics, entity.VirtualMetrics...)

	unranked := entity.MetricValue{Rank: int(entity.UnrankedValue), Value: entity.UnrankedValue}
	gains := make([]Gain, 0, len(metrics))
	for _, metric := range metrics {
		gains = append(gains, Gain{Metric: metric, Start: unranked, End: unranked})
	}

	return Delta{PlayerID: playerID, StartsAt: period.Start, EndsAt: period.End, Gains: gains}
}
