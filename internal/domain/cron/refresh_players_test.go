package cron

import (
	"testing"
	"time"

	"github.com/xptrack-lab/backend/internal/domain/updater"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func Test_RefreshPlayersCronJob_Do(t *testing.T) {
	ctx := testutil.MockContext()
	playerRepo := repository.NewPlayerRepository()

	// Workers never start, so enqueued requests stay visible as in flight.
	u := updater.New(
		playerRepo, repository.NewSnapshotRepository(),
		&testutil.MockHiscoresCaller{}, nil, nil,
		updater.Options{Workers: 1, QueueSize: 64},
	)

	now := time.Now()

	stale, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, playerRepo.SetLastUpdated(ctx, stale.ID, now.Add(-48*time.Hour)))

	// Never updated at all counts as stale.
	neverUpdated, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)

	fresh, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, playerRepo.SetLastUpdated(ctx, fresh.ID, now.Add(-time.Minute)))

	banned, err := testutil.SamplePlayer(ctx, &entity.Player{Status: entity.PlayerBanned})
	require.NoError(t, err)
	require.NoError(t, playerRepo.SetLastUpdated(ctx, banned.ID, now.Add(-48*time.Hour)))

	job := NewRefreshPlayersCronJob(playerRepo, u, 24*time.Hour)
	job.Do(ctx)

	_, inflight := u.State(stale.ID)
	require.True(t, inflight)
	_, inflight = u.State(neverUpdated.ID)
	require.True(t, inflight)
	_, inflight = u.State(fresh.ID)
	require.False(t, inflight)
	_, inflight = u.State(banned.ID)
	require.False(t, inflight)
}

func Test_RefreshPlayersCronJob_Do_stopsWhenQueueFull(t *testing.T) {
	ctx := testutil.MockContext()
	playerRepo := repository.NewPlayerRepository()

	u := updater.New(
		playerRepo, repository.NewSnapshotRepository(),
		&testutil.MockHiscoresCaller{}, nil, nil,
		updater.Options{Workers: 1, QueueSize: 1},
	)

	var stale []entity.Player
	for i := 0; i < 3; i++ {
		player, err := testutil.SamplePlayer(ctx, nil)
		require.NoError(t, err)
		stale = append(stale, player)
	}

	job := NewRefreshPlayersCronJob(playerRepo, u, 24*time.Hour)
	job.Do(ctx)

	// Only one request fits; the run stops instead of hammering the queue.
	var enqueued int
	for _, player := range stale {
		if _, ok := u.State(player.ID); ok {
			enqueued++
		}
	}
	require.Equal(t, 1, enqueued)
}
