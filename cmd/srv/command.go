package main

import (
	"context"

	"github.com/xptrack-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) loadApp() {
	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, s.loadConfig())
	s.loadLogger()

	app := cli.NewApp()
	app.Name = "xptrack"
	app.Usage = "Account progress tracking service"
	app.Action = cli.ShowAppHelp
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start the api service",
			Category:    "Api",
			Description: `Serves the read API and accepts update requests.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start the recompute subscriber",
			Category:    "Worker",
			Description: `Consumes player-updated events and refreshes records, achievements, and scoreboards.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start the cron jobs",
			Category:    "Worker",
			Description: `Re-enqueues stale players and keeps competition scoreboards warm.`,
		},
		{
			Action:      s.startMigrate,
			Name:        "migrate",
			Usage:       "Migrate the database schema",
			Category:    "Database",
		},
	}

	s.app = app
}
