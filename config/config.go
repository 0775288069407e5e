package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string
	LogLevel string

	ApiServer  ServerConfigs
	Database   DatabaseConfigs
	Redis      RedisConfigs
	Kafka      KafkaConfigs
	Hiscores   HiscoresConfigs
	Updater    UpdaterConfigs
	Efficiency EfficiencyConfigs
}

type ServerConfigs struct {
	Host string
	Port string
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type RedisConfigs struct {
	Addr string
}

type KafkaConfigs struct {
	Addr string
}

// HiscoresConfigs configures the external stats source.
type HiscoresConfigs struct {
	BaseURL string
	Timeout time.Duration

	// Proxies is the pool of egress identities used for outbound fetches.
	// An empty list means direct requests through a single identity.
	Proxies []string

	// MinRequestSpacing is the minimum delay between two requests sent
	// through the same identity.
	MinRequestSpacing time.Duration
}

type UpdaterConfigs struct {
	Workers   int
	QueueSize int

	MaxAttempts    int
	RetryBackoff   time.Duration
	MaxBackoff     time.Duration

	// DecreaseTolerance is the fraction of a metric value that may be lost
	// between two snapshots before the player is flagged for review.
	DecreaseTolerance float64

	// StaleAfter is how long a player may go without an update before the
	// refresh cron job re-enqueues it.
	StaleAfter time.Duration
}

type EfficiencyConfigs struct {
	EhpFile string
	EhbFile string
}
