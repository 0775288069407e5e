package cron

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/domain/competition"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

// RefreshScoreboardsCronJob rescores every in-window competition so cached
// scoreboards stay current even for players nobody requested recently.
type RefreshScoreboardsCronJob struct {
	competitionRepo repository.CompetitionRepository
	scorer          *competition.Scorer
	interval        time.Duration
}

func NewRefreshScoreboardsCronJob(
	competitionRepo repository.CompetitionRepository,
	scorer *competition.Scorer,
) *RefreshScoreboardsCronJob {
	return &RefreshScoreboardsCronJob{
		competitionRepo: competitionRepo,
		scorer:          scorer,
		interval:        5 * time.Minute,
	}
}

func (job *RefreshScoreboardsCronJob) Do(ctx context.Context) {
	competitions, err := job.competitionRepo.GetActive(ctx, time.Now())
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list active competitions: %v", err)
		return
	}

	for _, c := range competitions {
		if _, err := job.scorer.Score(ctx, c.ID); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot rescore competition %s: %v", c.ID, err)
		}
	}
}

func (job *RefreshScoreboardsCronJob) RunNow() bool {
	return true
}

func (job *RefreshScoreboardsCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
