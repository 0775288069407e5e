package achievement

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

// Detector scans a player's snapshot history for newly crossed thresholds.
// Detection is idempotent: achievements are created at most once per
// (player, name), never removed, and crossing dates only ever move earlier
// when backfilled history reveals an older crossing.
type Detector struct {
	definitions     []Definition
	snapshotRepo    repository.SnapshotRepository
	achievementRepo repository.AchievementRepository
}

func NewDetector(
	snapshotRepo repository.SnapshotRepository,
	achievementRepo repository.AchievementRepository,
) *Detector {
	return &Detector{
		definitions:     Definitions(),
		snapshotRepo:    snapshotRepo,
		achievementRepo: achievementRepo,
	}
}

// Detect evaluates every definition against the player's history. For a
// satisfied definition, the crossing date is the creation time of the
// earliest satisfying snapshot; if even the earliest known snapshot
// satisfies it, the real crossing predates tracking and the date is
// flagged imprecise.
func (d *Detector) Detect(ctx context.Context, playerID string) error {
	history, err := d.snapshotRepo.GetBetween(ctx, playerID, time.Time{}, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot load snapshot history of %s: %v", playerID, err)
		return err
	}

	if len(history) == 0 {
		return nil
	}

	latest := &history[len(history)-1]
	for _, def := range d.definitions {
		if !Satisfies(latest, def.Threshold) {
			continue
		}

		crossedAt, imprecise := d.crossingDate(history, def.Threshold)

		err := d.achievementRepo.Create(ctx, &entity.Achievement{
			PlayerID:  playerID,
			Name:      def.Name,
			Metric:    def.Metric,
			Threshold: thresholdValue(def.Threshold),
			CreatedAt: crossedAt,
			Imprecise: imprecise,
		})
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot create achievement %s of %s: %v", def.Name, playerID, err)
			return err
		}

		// The achievement may predate this run with a later estimate; a
		// guarded update moves the date backwards only.
		err = d.achievementRepo.UpdateCrossingDate(ctx, playerID, def.Name, crossedAt, imprecise)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot update crossing date of %s: %v", def.Name, err)
			return err
		}
	}

	return nil
}

func (d *Detector) crossingDate(history []entity.Snapshot, threshold Threshold) (time.Time, bool) {
	for i := range history {
		if Satisfies(&history[i], threshold) {
			return history[i].CreatedAt, i == 0
		}
	}

	// Unreachable while callers only ask about thresholds the latest
	// snapshot satisfies.
	return history[len(history)-1].CreatedAt, true
}

func thresholdValue(threshold Threshold) int64 {
	switch t := threshold.(type) {
	case ExperienceThreshold:
		return t.Value
	case AllSkillsThreshold:
		return t.Value
	case CombatSkillsThreshold:
		return t.Value
	case KillCountThreshold:
		return t.Value
	case ScoreThreshold:
		return t.Value
	}

	return 0
}
