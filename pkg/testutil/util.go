package testutil

import (
	"context"
	"time"

	"github.com/xptrack-lab/backend/config"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/pkg/logger"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func MockContext() context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	cfg := config.Configs{
		Env: "testing",
		Updater: config.UpdaterConfigs{
			Workers:           2,
			QueueSize:         16,
			MaxAttempts:       3,
			RetryBackoff:      time.Millisecond,
			MaxBackoff:        10 * time.Millisecond,
			DecreaseTolerance: 0.01,
			StaleAfter:        24 * time.Hour,
		},
		Hiscores: config.HiscoresConfigs{
			BaseURL: "http://localhost",
			Timeout: time.Second,
		},
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}
