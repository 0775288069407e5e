package cron

import (
	"context"
	"errors"
	"time"

	"github.com/xptrack-lab/backend/internal/domain/updater"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/xcontext"
)

// refreshBatchSize bounds how many stale players one run enqueues, so a
// backlog drains over several runs instead of flooding the update queue.
const refreshBatchSize = 500

// RefreshPlayersCronJob re-enqueues active players whose latest snapshot
// is older than the staleness window.
type RefreshPlayersCronJob struct {
	playerRepo repository.PlayerRepository
	updater    *updater.Updater
	staleAfter time.Duration
	interval   time.Duration
}

func NewRefreshPlayersCronJob(
	playerRepo repository.PlayerRepository,
	u *updater.Updater,
	staleAfter time.Duration,
) *RefreshPlayersCronJob {
	return &RefreshPlayersCronJob{
		playerRepo: playerRepo,
		updater:    u,
		staleAfter: staleAfter,
		interval:   time.Hour,
	}
}

func (job *RefreshPlayersCronJob) Do(ctx context.Context) {
	players, err := job.playerRepo.GetList(ctx, repository.GetListPlayerFilter{
		Statuses:          []entity.PlayerStatus{entity.PlayerActive, entity.PlayerFlagged},
		LastUpdatedBefore: time.Now().Add(-job.staleAfter),
		Limit:             refreshBatchSize,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot list stale players: %v", err)
		return
	}

	for _, player := range players {
		_, err := job.updater.RequestUpdate(ctx, player.Username)
		if err == nil {
			continue
		}

		var errx errorx.Error
		if errors.As(err, &errx) && errx.Code == errorx.TooManyRequests {
			xcontext.Logger(ctx).Warnf("Update queue is full, stopping refresh run")
			return
		}

		xcontext.Logger(ctx).Warnf("Cannot refresh player %s: %v", player.Username, err)
	}
}

func (job *RefreshPlayersCronJob) RunNow() bool {
	return false
}

func (job *RefreshPlayersCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
