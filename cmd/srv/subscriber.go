package main

import (
	"github.com/xptrack-lab/backend/internal/domain/updater"
	"github.com/xptrack-lab/backend/pkg/kafka"
	"github.com/xptrack-lab/backend/pkg/xcontext"

	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadPublisher()
	s.loadRepos()
	s.loadEfficiency()
	s.loadDomains()

	s.subscriber = kafka.NewSubscriber(
		"recomputer",
		[]string{xcontext.Configs(s.ctx).Kafka.Addr},
		[]string{updater.PlayerUpdatedTopic},
		s.recomputer.Subscribe,
	)

	xcontext.Logger(s.ctx).Infof("Start subscriber successfully")
	s.subscriber.Subscribe(s.ctx)

	return nil
}
