package cron

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/internal/common"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/dateutil"
	"github.com/xptrack-lab/backend/pkg/xcontext"
	"github.com/xptrack-lab/backend/pkg/xredis"
)

// CleanupScoreboardsCronJob drops the cached scoreboards of competitions
// that finished the previous day. The database rows stay; only the redis
// sorted sets go.
type CleanupScoreboardsCronJob struct {
	competitionRepo repository.CompetitionRepository
	redisClient     xredis.Client
}

func NewCleanupScoreboardsCronJob(
	competitionRepo repository.CompetitionRepository,
	redisClient xredis.Client,
) *CleanupScoreboardsCronJob {
	return &CleanupScoreboardsCronJob{
		competitionRepo: competitionRepo,
		redisClient:     redisClient,
	}
}

func (job *CleanupScoreboardsCronJob) Do(ctx context.Context) {
	today := dateutil.BeginningOfDay(time.Now())
	ended, err := job.competitionRepo.GetEndedBetween(ctx, today.AddDate(0, 0, -1), today)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list ended competitions: %v", err)
		return
	}

	for _, c := range ended {
		key := common.RedisKeyCompetitionScoreboard(c.ID)
		if err := job.redisClient.Del(ctx, key); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot delete scoreboard cache of %s: %v", c.ID, err)
		}
	}
}

func (job *CleanupScoreboardsCronJob) RunNow() bool {
	return false
}

func (job *CleanupScoreboardsCronJob) Next() time.Time {
	return dateutil.NextDay(time.Now())
}
