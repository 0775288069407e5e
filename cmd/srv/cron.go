package main

import (
	"github.com/xptrack-lab/backend/internal/domain/cron"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadEfficiency()
	s.loadDomains()

	s.updater.Start(s.ctx)

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Start(
		s.ctx,
		cron.NewRefreshPlayersCronJob(
			s.playerRepo, s.updater, xcontext.Configs(s.ctx).Updater.StaleAfter),
		cron.NewRefreshScoreboardsCronJob(s.competitionRepo, s.competitionScorer),
		cron.NewCleanupScoreboardsCronJob(s.competitionRepo, s.redisClient),
	)

	return nil
}
