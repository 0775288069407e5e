package gains

import (
	"testing"
	"time"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
)

func gainOf(t *testing.T, delta Delta, metric entity.Metric) Gain {
	t.Helper()
	for _, gain := range delta.Gains {
		if gain.Metric == metric {
			return gain
		}
	}

	t.Fatalf("no gain for metric %s", metric)
	return Gain{}
}

func Test_Compute(t *testing.T) {
	start := &entity.Snapshot{
		PlayerID:  "player1",
		CreatedAt: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC),
		Values: testutil.FullValues(entity.MetricValues{
			entity.MetricAttack: {Rank: 2000, Value: 1000},
			entity.MetricZulrah: {Rank: 9000, Value: 250},
		}),
	}
	end := &entity.Snapshot{
		PlayerID:  "player1",
		CreatedAt: time.Date(2023, 5, 2, 0, 0, 0, 0, time.UTC),
		Values: testutil.FullValues(entity.MetricValues{
			entity.MetricAttack:        {Rank: 1900, Value: 1400},
			entity.MetricZulrah:        {Rank: 9100, Value: 250},
			entity.MetricSoulWarsZeal:  {Rank: 500, Value: 120},
			entity.MetricBarrowsChests: {Rank: 700, Value: 10},
		}),
	}

	delta := Compute(start, end)
	require.Equal(t, "player1", delta.PlayerID)
	require.Equal(t, start.CreatedAt, delta.StartsAt)
	require.Equal(t, end.CreatedAt, delta.EndsAt)

	attack := gainOf(t, delta, entity.MetricAttack)
	require.NotNil(t, attack.Gained)
	require.EqualValues(t, 400, *attack.Gained)
	require.Equal(t, 2000, attack.Start.Rank)
	require.Equal(t, 1900, attack.End.Rank)

	// Measured with no progress is zero, not nil.
	zulrah := gainOf(t, delta, entity.MetricZulrah)
	require.NotNil(t, zulrah.Gained)
	require.EqualValues(t, 0, *zulrah.Gained)

	// A score metric appearing mid-window gains from its zero baseline.
	zeal := gainOf(t, delta, entity.MetricSoulWarsZeal)
	require.NotNil(t, zeal.Gained)
	require.EqualValues(t, 120, *zeal.Gained)

	// A kill count appearing mid-window stays nil: the true start is
	// unknown, not zero.
	barrows := gainOf(t, delta, entity.MetricBarrowsChests)
	require.Nil(t, barrows.Gained)

	// Unranked at both ends stays nil.
	cerberus := gainOf(t, delta, entity.MetricCerberus)
	require.Nil(t, cerberus.Gained)
}

func Test_Compute_negativeGainPreserved(t *testing.T) {
	start := &entity.Snapshot{Values: testutil.FullValues(entity.MetricValues{
		entity.MetricOverall: {Rank: 100, Value: 50_000},
	})}
	end := &entity.Snapshot{Values: testutil.FullValues(entity.MetricValues{
		entity.MetricOverall: {Rank: 120, Value: 40_000},
	})}

	overall := gainOf(t, Compute(start, end), entity.MetricOverall)
	require.NotNil(t, overall.Gained)
	require.EqualValues(t, -10_000, *overall.Gained)
}

func Test_Calculator_ComputeOverPeriod(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)

	now := time.Now()
	_, err = testutil.SampleSnapshot(ctx, player.ID, now.Add(-48*time.Hour), entity.MetricValues{
		entity.MetricOverall: {Rank: 100, Value: 1000},
	})
	require.NoError(t, err)
	_, err = testutil.SampleSnapshot(ctx, player.ID, now.Add(-2*time.Hour), entity.MetricValues{
		entity.MetricOverall: {Rank: 95, Value: 1300},
	})
	require.NoError(t, err)
	_, err = testutil.SampleSnapshot(ctx, player.ID, now.Add(-time.Hour), entity.MetricValues{
		entity.MetricOverall: {Rank: 90, Value: 1400},
	})
	require.NoError(t, err)

	calculator := NewCalculator(repository.NewSnapshotRepository())

	// Both endpoints inside the window.
	period, err := entity.NewNamedPeriod(entity.PeriodDay, now)
	require.NoError(t, err)
	delta, err := calculator.ComputeOverPeriod(ctx, player.ID, period)
	require.NoError(t, err)
	overall := gainOf(t, delta, entity.MetricOverall)
	require.NotNil(t, overall.Gained)
	require.EqualValues(t, 100, *overall.Gained)

	// A window wider than the history falls back to the earliest snapshot.
	period, err = entity.NewNamedPeriod(entity.PeriodYear, now)
	require.NoError(t, err)
	delta, err = calculator.ComputeOverPeriod(ctx, player.ID, period)
	require.NoError(t, err)
	overall = gainOf(t, delta, entity.MetricOverall)
	require.NotNil(t, overall.Gained)
	require.EqualValues(t, 400, *overall.Gained)
}

func Test_Calculator_ComputeOverPeriod_noHistory(t *testing.T) {
	ctx := testutil.MockContext()
	player, err := testutil.SamplePlayer(ctx, nil)
	require.NoError(t, err)

	period, err := entity.NewNamedPeriod(entity.PeriodDay, time.Now())
	require.NoError(t, err)

	calculator := NewCalculator(repository.NewSnapshotRepository())
	delta, err := calculator.ComputeOverPeriod(ctx, player.ID, period)
	require.NoError(t, err)

	for _, gain := range delta.Gains {
		require.Nil(t, gain.Gained)
	}
}
