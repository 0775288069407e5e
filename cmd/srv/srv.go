package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/xptrack-lab/backend/config"
	"github.com/xptrack-lab/backend/internal/domain"
	"github.com/xptrack-lab/backend/internal/domain/achievement"
	"github.com/xptrack-lab/backend/internal/domain/competition"
	"github.com/xptrack-lab/backend/internal/domain/efficiency"
	"github.com/xptrack-lab/backend/internal/domain/gains"
	"github.com/xptrack-lab/backend/internal/domain/updater"
	"github.com/xptrack-lab/backend/internal/entity"
	"github.com/xptrack-lab/backend/internal/repository"
	"github.com/xptrack-lab/backend/pkg/kafka"
	"github.com/xptrack-lab/backend/pkg/logger"
	"github.com/xptrack-lab/backend/pkg/pubsub"
	"github.com/xptrack-lab/backend/pkg/xcontext"
	"github.com/xptrack-lab/backend/pkg/xredis"

	"github.com/urfave/cli/v2"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type srv struct {
	ctx context.Context
	app *cli.App

	playerRepo      repository.PlayerRepository
	snapshotRepo    repository.SnapshotRepository
	recordRepo      repository.RecordRepository
	achievementRepo repository.AchievementRepository
	competitionRepo repository.CompetitionRepository

	gainsCalculator      *gains.Calculator
	recordTracker        *gains.Tracker
	achievementDetector  *achievement.Detector
	competitionScorer    *competition.Scorer
	efficiencyCalculator *efficiency.Calculator
	updater              *updater.Updater
	recomputer           *updater.Recomputer

	playerDomain      domain.PlayerDomain
	statisticDomain   domain.StatisticDomain
	achievementDomain domain.AchievementDomain
	competitionDomain domain.CompetitionDomain

	redisClient xredis.Client
	publisher   pubsub.Publisher
	subscriber  pubsub.Subscriber
}

func (s *srv) loadConfig() config.Configs {
	return config.Configs{
		Env:      getEnv("ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", ""),
		ApiServer: config.ServerConfigs{
			Host: getEnv("API_HOST", ""),
			Port: getEnv("API_PORT", "8080"),
		},
		Database: config.DatabaseConfigs{
			Host:     getEnv("MYSQL_HOST", "localhost"),
			Port:     getEnv("MYSQL_PORT", "3306"),
			User:     getEnv("MYSQL_USER", "xptrack"),
			Password: getEnv("MYSQL_PASSWORD", "xptrack"),
			Database: getEnv("MYSQL_DATABASE", "xptrack"),
		},
		Redis: config.RedisConfigs{
			Addr: getEnv("REDIS_ADDRESS", "localhost:6379"),
		},
		Kafka: config.KafkaConfigs{
			Addr: getEnv("KAFKA_ADDRESS", "localhost:9092"),
		},
		Hiscores: config.HiscoresConfigs{
			BaseURL:           getEnv("HISCORES_BASE_URL", "https://secure.runescape.com/m=hiscore_oldschool"),
			Timeout:           getDuration("HISCORES_TIMEOUT", 10*time.Second),
			Proxies:           getList("HISCORES_PROXIES"),
			MinRequestSpacing: getDuration("HISCORES_MIN_REQUEST_SPACING", 2*time.Second),
		},
		Updater: config.UpdaterConfigs{
			Workers:           getInt("UPDATER_WORKERS", 8),
			QueueSize:         getInt("UPDATER_QUEUE_SIZE", 4096),
			MaxAttempts:       getInt("UPDATER_MAX_ATTEMPTS", 3),
			RetryBackoff:      getDuration("UPDATER_RETRY_BACKOFF", time.Second),
			MaxBackoff:        getDuration("UPDATER_MAX_BACKOFF", 30*time.Second),
			DecreaseTolerance: getFloat("UPDATER_DECREASE_TOLERANCE", 0.01),
			StaleAfter:        getDuration("UPDATER_STALE_AFTER", 24*time.Hour),
		},
		Efficiency: config.EfficiencyConfigs{
			EhpFile: getEnv("EFFICIENCY_EHP_FILE", "./data/ehp.json"),
			EhbFile: getEnv("EFFICIENCY_EHB_FILE", "./data/ehb.json"),
		},
	}
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx)
	db, err := gorm.Open(mysql.Open(cfg.Database.ConnectionString()), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) migrateDB() {
	if err := entity.MigrateTable(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadLogger() {
	cfg := xcontext.Configs(s.ctx)

	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" && cfg.Env == "local" {
		level = logger.DEBUG
	}

	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(level))
}

func (s *srv) loadRedisClient() {
	var err error
	s.redisClient, err = xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}
}

func (s *srv) loadPublisher() {
	s.publisher = kafka.NewPublisher("updater", []string{xcontext.Configs(s.ctx).Kafka.Addr})
}

func (s *srv) loadRepos() {
	s.playerRepo = repository.NewPlayerRepository()
	s.snapshotRepo = repository.NewSnapshotRepository()
	s.recordRepo = repository.NewRecordRepository()
	s.achievementRepo = repository.NewAchievementRepository()
	s.competitionRepo = repository.NewCompetitionRepository()
}

func (s *srv) loadEfficiency() {
	cfg := xcontext.Configs(s.ctx).Efficiency
	ehp, err := efficiency.LoadFile(cfg.EhpFile)
	if err != nil {
		panic(err)
	}

	ehb, err := efficiency.LoadFile(cfg.EhbFile)
	if err != nil {
		panic(err)
	}

	s.efficiencyCalculator = efficiency.NewCalculator(ehp, ehb)
}

func (s *srv) loadDomains() {
	cfg := xcontext.Configs(s.ctx)

	s.gainsCalculator = gains.NewCalculator(s.snapshotRepo)
	s.recordTracker = gains.NewTracker(s.recordRepo)
	s.achievementDetector = achievement.NewDetector(s.snapshotRepo, s.achievementRepo)
	s.competitionScorer = competition.NewScorer(
		s.competitionRepo, s.snapshotRepo, s.redisClient)

	fetcher, err := updater.NewProxyPool(cfg.Hiscores)
	if err != nil {
		panic(err)
	}

	s.updater = updater.New(
		s.playerRepo,
		s.snapshotRepo,
		fetcher,
		s.efficiencyCalculator,
		s.publisher,
		updater.Options{
			Workers:           cfg.Updater.Workers,
			QueueSize:         cfg.Updater.QueueSize,
			MaxAttempts:       cfg.Updater.MaxAttempts,
			RetryBackoff:      cfg.Updater.RetryBackoff,
			MaxBackoff:        cfg.Updater.MaxBackoff,
			DecreaseTolerance: cfg.Updater.DecreaseTolerance,
		},
	)
	s.recomputer = updater.NewRecomputer(
		s.gainsCalculator,
		s.recordTracker,
		s.achievementDetector,
		s.competitionScorer,
		s.competitionRepo,
		s.publisher,
	)

	s.playerDomain = domain.NewPlayerDomain(s.playerRepo, s.updater)
	s.statisticDomain = domain.NewStatisticDomain(
		s.playerRepo, s.recordRepo, s.snapshotRepo,
		s.gainsCalculator, s.efficiencyCalculator)
	s.achievementDomain = domain.NewAchievementDomain(s.playerRepo, s.achievementRepo)
	s.competitionDomain = domain.NewCompetitionDomain(
		s.competitionScorer, s.playerRepo, s.redisClient)
}

func getEnv(key, def string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}

	return def
}

func getInt(key string, def int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		panic(err)
	}

	return n
}

func getFloat(key string, def float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		panic(err)
	}

	return f
}

func getDuration(key string, def time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		panic(err)
	}

	return d
}

func getList(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return nil
	}

	return strings.Split(value, ",")
}
