package updater

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/xptrack-lab/backend/internal/client"
	"github.com/xptrack-lab/backend/internal/domain/efficiency"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/errorx"
	"github.com/xptrack-lab/backend/pkg/pubsub"
	"github.com/xptrack-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func testCalculator(t *testing.T) *efficiency.Calculator {
	ehp, err := efficiency.New([]efficiency.Entry{{
		Metric:  entity.MetricOverall,
		Methods: []efficiency.Method{{Start: 0, End: 0, Rate: 100_000}},
	}})
	require.NoError(t, err)

	ehb, err := efficiency.New([]efficiency.Entry{{
		Metric:  entity.MetricZulrah,
		Methods: []efficiency.Method{{Start: 0, End: 0, Rate: 100}},
	}})
	require.NoError(t, err)

	return efficiency.NewCalculator(ehp, ehb)
}

func testOptions() Options {
	return Options{
		Workers:           2,
		QueueSize:         16,
		MaxAttempts:       3,
		RetryBackoff:      time.Millisecond,
		MaxBackoff:        10 * time.Millisecond,
		DecreaseTolerance: 0.01,
	}
}

func waitDone(t *testing.T, req *updateRequest) {
	select {
	case <-req.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("update did not finish in time")
	}
}

func Test_Updater_RequestUpdate_commitsSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	playerRepo := repository.NewPlayerRepository()
	snapshotRepo := repository.NewSnapshotRepository()

	fetcher := &testutil.MockHiscoresCaller{
		FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
			return testutil.FullValues(entity.MetricValues{
				entity.MetricOverall: {Rank: 10_000, Value: 200_000},
				entity.MetricZulrah:  {Rank: 5_000, Value: 250},
			}), nil
		},
	}

	var mutex sync.Mutex
	var topics []string
	var published []*pubsub.Pack
	publisher := &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			mutex.Lock()
			topics = append(topics, topic)
			published = append(published, pack)
			mutex.Unlock()
			return nil
		},
	}

	updater := New(playerRepo, snapshotRepo, fetcher, testCalculator(t), publisher, testOptions())
	updater.Start(ctx)

	// The username is unknown, so the request registers the player.
	req, err := updater.RequestUpdate(ctx, "zezima")
	require.NoError(t, err)
	waitDone(t, req)
	require.Equal(t, StateCommitted, req.State())

	player, err := playerRepo.GetByUsername(ctx, "zezima")
	require.NoError(t, err)
	require.Equal(t, entity.PlayerActive, player.Status)
	require.True(t, player.LastUpdatedAt.Valid)
	require.True(t, player.LastChangedAt.Valid)

	snapshot, err := snapshotRepo.GetLatest(ctx, player.ID)
	require.NoError(t, err)
	require.EqualValues(t, 200_000, snapshot.Get(entity.MetricOverall).Value)

	// Derived efficiency values are part of the snapshot, stored scaled.
	require.EqualValues(t, efficiency.ScaledHours(2.0), snapshot.Get(entity.MetricEHP).Value)
	require.EqualValues(t, efficiency.ScaledHours(2.5), snapshot.Get(entity.MetricEHB).Value)

	mutex.Lock()
	defer mutex.Unlock()
	require.Equal(t, []string{PlayerUpdatedTopic}, topics)
	require.Len(t, published, 1)
	require.Equal(t, player.ID, string(published[0].Key))

	var event PlayerUpdatedEvent
	require.NoError(t, json.Unmarshal(published[0].Msg, &event))
	require.Equal(t, player.ID, event.PlayerID)
	require.Equal(t, snapshot.ID, event.SnapshotID)
}

func Test_Updater_RequestUpdate_coalescesConcurrentRequests(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	release := make(chan struct{})
	fetcher := &testutil.MockHiscoresCaller{
		FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
			<-release
			return testutil.FullValues(nil), nil
		},
	}

	snapshotRepo := repository.NewSnapshotRepository()
	updater := New(
		repository.NewPlayerRepository(), snapshotRepo,
		fetcher, nil, nil, testOptions(),
	)
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, "b0aty")
	require.NoError(t, err)

	// A second request while the first is in flight is rejected without
	// touching the active one.
	_, err = updater.RequestUpdate(ctx, "b0aty")
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.UpdateInProgress, errx.Code)

	state, ok := updater.State(req.playerID)
	require.True(t, ok)
	require.NotEqual(t, StateFailed, state)

	close(release)
	waitDone(t, req)
	require.Equal(t, StateCommitted, req.State())

	// The rejected duplicate never produced a second snapshot.
	history, err := snapshotRepo.GetBetween(ctx, req.playerID, time.Time{}, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 1)

	// Once finished, the player accepts new requests again.
	_, ok = updater.State(req.playerID)
	require.False(t, ok)
	req2, err := updater.RequestUpdate(ctx, "b0aty")
	require.NoError(t, err)
	waitDone(t, req2)
}

func Test_Updater_fetch_retriesTransientErrors(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	var calls int
	fetcher := &testutil.MockHiscoresCaller{
		FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
			calls++
			if calls < 3 {
				return nil, &client.TransientError{Err: errors.New("upstream status 503")}
			}

			return testutil.FullValues(nil), nil
		},
	}

	updater := New(
		repository.NewPlayerRepository(), repository.NewSnapshotRepository(),
		fetcher, nil, nil, Options{
			Workers: 1, QueueSize: 4, MaxAttempts: 3,
			RetryBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond,
		},
	)
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, "woox")
	require.NoError(t, err)
	waitDone(t, req)
	require.Equal(t, StateCommitted, req.State())
	require.Equal(t, 3, calls)
}

func Test_Updater_fetch_failsAfterMaxAttempts(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	var calls int
	fetcher := &testutil.MockHiscoresCaller{
		FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
			calls++
			return nil, &client.TransientError{Err: errors.New("connection reset")}
		},
	}

	snapshotRepo := repository.NewSnapshotRepository()
	updater := New(
		repository.NewPlayerRepository(), snapshotRepo,
		fetcher, nil, nil, Options{
			Workers: 1, QueueSize: 4, MaxAttempts: 2,
			RetryBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond,
		},
	)
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, "sick_nerd")
	require.NoError(t, err)
	waitDone(t, req)
	require.Equal(t, StateFailed, req.State())
	require.Equal(t, 2, calls)

	_, err = snapshotRepo.GetLatest(ctx, req.playerID)
	require.Error(t, err)
}

func Test_Updater_fetch_missingPlayerIsBanned(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	playerRepo := repository.NewPlayerRepository()
	updater := New(
		playerRepo, repository.NewSnapshotRepository(),
		&testutil.MockHiscoresCaller{}, nil, nil, testOptions(),
	)
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, "gone_player")
	require.NoError(t, err)
	waitDone(t, req)
	require.Equal(t, StateFailed, req.State())

	player, err := playerRepo.GetByUsername(ctx, "gone_player")
	require.NoError(t, err)
	require.Equal(t, entity.PlayerBanned, player.Status)

	// Banned players are excluded from further updates.
	_, err = updater.RequestUpdate(ctx, "gone_player")
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.PlayerBlocked, errx.Code)
}

func Test_Updater_validate_flagsDecreaseButCommits(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	playerRepo := repository.NewPlayerRepository()
	snapshotRepo := repository.NewSnapshotRepository()

	player, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)
	_, err = testutil.SampleSnapshot(ctx, player.ID, time.Now().Add(-time.Hour), entity.MetricValues{
		entity.MetricOverall: {Rank: 10_000, Value: 1_000_000},
	})
	require.NoError(t, err)

	fetcher := &testutil.MockHiscoresCaller{
		FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
			return testutil.FullValues(entity.MetricValues{
				entity.MetricOverall: {Rank: 50_000, Value: 100_000},
			}), nil
		},
	}

	updater := New(playerRepo, snapshotRepo, fetcher, nil, nil, testOptions())
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, player.Username)
	require.NoError(t, err)
	waitDone(t, req)
	require.Equal(t, StateCommitted, req.State())

	// The decrease flags the player for review, but the snapshot still
	// commits.
	flagged, err := playerRepo.GetByID(ctx, player.ID)
	require.NoError(t, err)
	require.Equal(t, entity.PlayerFlagged, flagged.Status)

	// Nothing was gained, so the last-changed marker stays untouched.
	require.False(t, flagged.LastChangedAt.Valid)

	snapshot, err := snapshotRepo.GetLatest(ctx, player.ID)
	require.NoError(t, err)
	require.EqualValues(t, 100_000, snapshot.Get(entity.MetricOverall).Value)
}

func Test_Updater_RequestUpdate_rejectsWhenQueueFull(t *testing.T) {
	ctx := testutil.MockContext()

	// No workers started: the first request occupies the whole queue.
	updater := New(
		repository.NewPlayerRepository(), repository.NewSnapshotRepository(),
		&testutil.MockHiscoresCaller{}, nil, nil,
		Options{Workers: 1, QueueSize: 1},
	)

	_, err := updater.RequestUpdate(ctx, "first")
	require.NoError(t, err)

	_, err = updater.RequestUpdate(ctx, "second")
	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, errorx.TooManyRequests, errx.Code)

	// The rejected request leaves nothing in flight behind.
	second, err := repository.NewPlayerRepository().GetByUsername(ctx, "second")
	require.NoError(t, err)
	_, ok := updater.State(second.ID)
	require.False(t, ok)
}

func Test_Updater_Cancel_onlyWhileQueued(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	snapshotRepo := repository.NewSnapshotRepository()
	updater := New(
		repository.NewPlayerRepository(), snapshotRepo,
		&testutil.MockHiscoresCaller{
			FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
				return testutil.FullValues(nil), nil
			},
		},
		nil, nil, Options{Workers: 1, QueueSize: 4},
	)

	// Workers are not running yet, so the request stays queued.
	req, err := updater.RequestUpdate(ctx, "afk_player")
	require.NoError(t, err)
	require.True(t, updater.Cancel(req.playerID))
	require.Equal(t, StateCancelled, req.State())
	require.False(t, updater.Cancel(req.playerID))

	updater.Start(ctx)
	waitDone(t, req)

	// The cancelled request never produced a snapshot.
	_, err = snapshotRepo.GetLatest(ctx, req.playerID)
	require.Error(t, err)
	require.Equal(t, StateCancelled, req.State())
}

func Test_Updater_Cancel_startedUpdateRunsToCompletion(t *testing.T) {
	ctx, cancel := context.WithCancel(testutil.MockContext())
	defer cancel()

	fetching := make(chan struct{})
	release := make(chan struct{})
	snapshotRepo := repository.NewSnapshotRepository()
	updater := New(
		repository.NewPlayerRepository(), snapshotRepo,
		&testutil.MockHiscoresCaller{
			FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
				close(fetching)
				<-release
				return testutil.FullValues(nil), nil
			},
		},
		nil, nil, testOptions(),
	)
	updater.Start(ctx)

	req, err := updater.RequestUpdate(ctx, "swampletics")
	require.NoError(t, err)
	<-fetching

	// A worker already claimed the request: Cancel must not report success,
	// because this update will commit a snapshot.
	require.False(t, updater.Cancel(req.playerID))

	close(release)
	waitDone(t, req)
	require.Equal(t, StateCommitted, req.State())
	_, err = snapshotRepo.GetLatest(ctx, req.playerID)
	require.NoError(t, err)
}
