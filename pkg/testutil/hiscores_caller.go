package testutil

import (
	"context"

	"github.com/xptrack-lab/backend/internal/client"
	"github.com/xptrack-lab/backend/internal/entity"
)

type MockHiscoresCaller struct {
	FetchFunc func(ctx context.Context, username string) (entity.MetricValues, error)
}

func (m *MockHiscoresCaller) Fetch(
	ctx context.Context, username string,
) (entity.MetricValues, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, username)
	}

	return nil, client.ErrPlayerNotFound
}
