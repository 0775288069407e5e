package gains

import (
	"context"
	"errors"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/gorm"
)

// Tracker maintains the best-ever gain per (player, period, metric).
// Updates follow update-if-greater semantics: re-applying the same or a
// smaller delta never changes a stored record, so tracking is idempotent
// and record values are monotonically non-decreasing.
type Tracker struct {
	recordRepo repository.RecordRepository
}

func NewTracker(recordRepo repository.RecordRepository) *Tracker {
	return &Tracker{recordRepo: recordRepo}
}

// Track folds a finalized delta into the player's records for the given
// period. Unranked and non-positive gains are ignored. Virtual metric
// gains arrive already scaled by entity.VirtualMetricScale and are stored
// as-is; readers remove the scaling.
func (t *Tracker) Track(
	ctx context.Context, playerID string, period entity.PeriodName, delta Delta,
) error {
	for _, gain := range delta.Gains {
		if gain.Gained == nil || *gain.Gained <= 0 {
			continue
		}

		existing, err := t.recordRepo.Get(ctx, playerID, period, gain.Metric)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				xcontext.Logger(ctx).Errorf("Cannot get record of %s: %v", playerID, err)
				return err
			}

			err = t.recordRepo.Create(ctx, &entity.Record{
				PlayerID:  playerID,
				Period:    period,
				Metric:    gain.Metric,
				Value:     *gain.Gained,
				UpdatedAt: time.Now(),
			})
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot create record of %s: %v", playerID, err)
				return err
			}

			continue
		}

		if *gain.Gained <= existing.Value {
			continue
		}

		err = t.recordRepo.UpdateValue(ctx, playerID, period, gain.Metric, *gain.Gained)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update record of %s: %v", playerID, err)
			return err
		}
	}

	return nil
}
