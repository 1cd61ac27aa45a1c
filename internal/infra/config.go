package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"voro"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"voro"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"voro"`

	// API server
	APIPort int `env:"API_PORT" envDefault:"3200"`

	// Kafka
	KafkaBrokers       string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled       bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	NotificationsTopic string `env:"NOTIFICATIONS_TOPIC" envDefault:"voro.notifications"`

	// Notification dispatcher
	OutboxPollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	OutboxBatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`

	// Reminder sweep
	ReminderHourUTC          int `env:"REMINDER_HOUR_UTC" envDefault:"10"`
	ReminderWindowStartHours int `env:"REMINDER_WINDOW_START_HOURS" envDefault:"23"`
	ReminderWindowEndHours   int `env:"REMINDER_WINDOW_END_HOURS" envDefault:"25"`
}

// LoadConfig reads an optional .env file, then parses environment variables
// into a Config struct.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks configuration values that would misbehave silently.
func (c *Config) Validate() error {
	if c.ReminderHourUTC < 0 || c.ReminderHourUTC > 23 {
		return fmt.Errorf("REMINDER_HOUR_UTC must be 0-23, got %d", c.ReminderHourUTC)
	}
	if c.ReminderWindowStartHours <= 0 || c.ReminderWindowEndHours <= c.ReminderWindowStartHours {
		return fmt.Errorf("reminder window [%d, %d] is not a valid lookahead range",
			c.ReminderWindowStartHours, c.ReminderWindowEndHours)
	}
	if c.OutboxBatchSize <= 0 {
		return fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", c.OutboxBatchSize)
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
