package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string   `mapstructure:"environment"`
	Port        int      `mapstructure:"port"`
	LogLevel    string   `mapstructure:"log_level"`
	Database    Database `mapstructure:"database"`
	Redis       Redis    `mapstructure:"redis"`
	NATS        NATS     `mapstructure:"nats"`
	Locking     Locking  `mapstructure:"locking"`
	Jobs        Jobs     `mapstructure:"jobs"`
	Sync        Sync     `mapstructure:"sync"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type Redis struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATS struct {
	URL            string `mapstructure:"url"`
	SubjectReady   string `mapstructure:"subject_ready"`
	SubjectWebhook string `mapstructure:"subject_webhook"`
}

// Locking configures the distributed slot lock.
type Locking struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Jobs configures the Redis-backed delay queues: the ready subjects and
// the delayed-set keys. Job bodies are kept in a hash named after the
// delayed-set key with a ":jobs" suffix; the *JobsKey fields are not
// read. DispatchInterval is not read either: the dispatcher polls on a
// fixed 15-second schedule.
type Jobs struct {
	NotificationsReadySubject string        `mapstructure:"notifications_ready_subject"`
	NotificationsDelayedKey   string        `mapstructure:"notifications_delayed_key"`
	NotificationsJobsKey      string        `mapstructure:"notifications_jobs_key"`
	WebhooksReadySubject      string        `mapstructure:"webhooks_ready_subject"`
	WebhooksDelayedKey        string        `mapstructure:"webhooks_delayed_key"`
	WebhooksJobsKey           string        `mapstructure:"webhooks_jobs_key"`
	RemindersReadySubject     string        `mapstructure:"reminders_ready_subject"`
	RemindersDelayedKey       string        `mapstructure:"reminders_delayed_key"`
	RemindersJobsKey          string        `mapstructure:"reminders_jobs_key"`
	DispatchInterval          time.Duration `mapstructure:"dispatch_interval"`
}

// Sync configures the NATS subjects the core listens on to keep its
// local EventType/ScheduleWindow replicas current with the external
// services that own those entities: event-type and schedule CRUD lives
// elsewhere, but the availability/booking hot path needs a fast local
// read path.
type Sync struct {
	EventTypeSubject string `mapstructure:"event_type_subject"`
	ScheduleSubject  string `mapstructure:"schedule_subject"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.name", "DATABASE_NAME")
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("nats.url", "NATS_URL")
	viper.BindEnv("environment", "ENVIRONMENT")
	viper.BindEnv("log_level", "LOG_LEVEL")
	viper.BindEnv("locking.ttl", "LOCKING_TTL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "development")
	viper.SetDefault("port", 8002)
	viper.SetDefault("log_level", "info")

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "slotwise")
	viper.SetDefault("database.password", "slotwise_password")
	viper.SetDefault("database.name", "slotwise_scheduling")
	viper.SetDefault("database.ssl_mode", "disable")

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subject_ready", "slotwise.scheduling.jobs")
	viper.SetDefault("nats.subject_webhook", "slotwise.scheduling.webhooks")

	viper.SetDefault("locking.ttl", "30s")

	viper.SetDefault("jobs.notifications_ready_subject", "slotwise.scheduling.jobs")
	viper.SetDefault("jobs.notifications_delayed_key", "scheduling:jobs:notifications:delayed")
	viper.SetDefault("jobs.notifications_jobs_key", "scheduling:jobs:notifications:body")
	viper.SetDefault("jobs.webhooks_ready_subject", "slotwise.scheduling.webhooks")
	viper.SetDefault("jobs.webhooks_delayed_key", "scheduling:jobs:webhooks:delayed")
	viper.SetDefault("jobs.webhooks_jobs_key", "scheduling:jobs:webhooks:body")
	viper.SetDefault("jobs.reminders_ready_subject", "slotwise.scheduling.reminders")
	viper.SetDefault("jobs.reminders_delayed_key", "scheduling:jobs:reminders:delayed")
	viper.SetDefault("jobs.reminders_jobs_key", "scheduling:jobs:reminders:body")
	viper.SetDefault("jobs.dispatch_interval", "15s")

	viper.SetDefault("sync.event_type_subject", "slotwise.organization.event_type.upserted")
	viper.SetDefault("sync.schedule_subject", "slotwise.organization.schedule.updated")
}

// DSN builds the Postgres connection string gorm's postgres driver
// expects.
func (d Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Addr builds the redis.Options-compatible host:port address.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
