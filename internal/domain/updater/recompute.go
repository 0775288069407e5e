package updater

import (
	"context"
	"encoding/json"
	"time"

	"github.com/xptrack-lab/backend/internal/domain/achievement"
	"github.com/xptrack-lab/backend/internal/domain/competition"
	"github.com/xptrack-lab/backend/internal/domain/gains"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/pubsub"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

// maxRecomputeAttempts bounds the redelivery of one failing event.
const maxRecomputeAttempts = 5

// Recomputer runs the derived-data jobs after a snapshot commits: period
// records, achievement detection, and scoreboards of the player's active
// competitions. Every job is idempotent, so a redelivered event is
// harmless.
type Recomputer struct {
	calculator      *gains.Calculator
	tracker         *gains.Tracker
	detector        *achievement.Detector
	scorer          *competition.Scorer
	competitionRepo repository.CompetitionRepository
	publisher       pubsub.Publisher
}

func NewRecomputer(
	calculator *gains.Calculator,
	tracker *gains.Tracker,
	detector *achievement.Detector,
	scorer *competition.Scorer,
	competitionRepo repository.CompetitionRepository,
	publisher pubsub.Publisher,
) *Recomputer {
	return &Recomputer{
		calculator:      calculator,
		tracker:         tracker,
		detector:        detector,
		scorer:          scorer,
		competitionRepo: competitionRepo,
		publisher:       publisher,
	}
}

// Subscribe handles a PlayerUpdatedEvent. Events are keyed by player id,
// so one player's recomputations run in commit order while independent
// players proceed in parallel.
func (r *Recomputer) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event PlayerUpdatedEvent
	if err := json.Unmarshal(pack.Msg, &event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal player updated event: %v", err)
		return
	}

	if err := r.Recompute(ctx, event.PlayerID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot recompute player %s: %v", event.PlayerID, err)
		r.republish(ctx, pack.Key, event)
	}
}

// republish puts a failed event back on the topic so the recompute is
// retried, up to a bounded number of attempts. The jobs are idempotent,
// so the extra deliveries never double-apply anything.
func (r *Recomputer) republish(ctx context.Context, key []byte, event PlayerUpdatedEvent) {
	if r.publisher == nil {
		return
	}

	event.Attempt++
	if event.Attempt >= maxRecomputeAttempts {
		xcontext.Logger(ctx).Errorf(
			"Dropping recompute of %s after %d attempts", event.PlayerID, event.Attempt)
		return
	}

	msg, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal player updated event: %v", err)
		return
	}

	err = r.publisher.Publish(ctx, PlayerUpdatedTopic, &pubsub.Pack{Key: key, Msg: msg})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot republish recompute of %s: %v", event.PlayerID, err)
	}
}

// Recompute refreshes all derived data of the player from their current
// snapshot history.
func (r *Recomputer) Recompute(ctx context.Context, playerID string) error {
	now := time.Now()
	for _, name := range entity.PeriodNames {
		period, err := entity.NewNamedPeriod(name, now)
		if err != nil {
			return err
		}

		delta, err := r.calculator.ComputeOverPeriod(ctx, playerID, period)
		if err != nil {
			return err
		}

		if err := r.tracker.Track(ctx, playerID, name, delta); err != nil {
			return err
		}
	}

	if err := r.detector.Detect(ctx, playerID); err != nil {
		return err
	}

	return r.refreshCompetitions(ctx, playerID, now)
}

// refreshCompetitions rescores the competitions the player currently
// competes in. Finished competitions are skipped: their scoreboards are
// frozen and the snapshot that just committed cannot change them.
func (r *Recomputer) refreshCompetitions(ctx context.Context, playerID string, now time.Time) error {
	participations, err := r.competitionRepo.GetParticipationsByPlayer(ctx, playerID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get participations of %s: %v", playerID, err)
		return err
	}

	for _, p := range participations {
		if now.After(p.Competition.EndsAt) || now.Before(p.Competition.StartsAt) {
			continue
		}

		if _, err := r.scorer.Score(ctx, p.CompetitionID); err != nil {
			return err
		}
	}

	return nil
}
