package updater

import (
	"context"
	"testing"

	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func Test_proxyPool_Fetch_rotatesIdentities(t *testing.T) {
	var calls []string
	caller := func(name string) *testutil.MockHiscoresCaller {
		return &testutil.MockHiscoresCaller{
			FetchFunc: func(ctx context.Context, username string) (entity.MetricValues, error) {
				calls = append(calls, name)
				return testutil.FullValues(nil), nil
			},
		}
	}

	pool := newCallerPool(rate.Inf, caller("a"), caller("b"))
	require.Equal(t, 2, pool.Size())

	for i := 0; i < 4; i++ {
		_, err := pool.Fetch(context.Background(), "somebody")
		require.NoError(t, err)
	}

	require.Equal(t, []string{"a", "b", "a", "b"}, calls)
}

func Test_proxyPool_Fetch_respectsCancellation(t *testing.T) {
	// A zero limit never grants a token, so the wait only ends with the
	// context.
	pool := newCallerPool(0, &testutil.MockHiscoresCaller{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := pool.Fetch(ctx, "somebody")
	require.Error(t, err)
}
