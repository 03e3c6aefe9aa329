package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"clubstake"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"clubstake"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"clubstake"`

	// Connection pool sizing
	PGMaxConns     int32         `env:"PG_MAX_CONNS" envDefault:"20"`
	PGMinConns     int32         `env:"PG_MIN_CONNS" envDefault:"2"`
	PGConnLifetime time.Duration `env:"PG_CONN_LIFETIME" envDefault:"30m"`
	PGConnIdleTime time.Duration `env:"PG_CONN_IDLE_TIME" envDefault:"5m"`

	// Server
	HTTPPort int `env:"HTTP_PORT" envDefault:"4100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// Membership fee charged by the payment layer, in cents. Used only for
	// sanity-checking inbound credit events.
	MembershipFee int64 `env:"MEMBERSHIP_FEE" envDefault:"1000"`

	// Rate limiting on the credit-event endpoints.
	CreditRateLimit  int    `env:"CREDIT_RATE_LIMIT" envDefault:"30"`
	CreditRateWindow string `env:"CREDIT_RATE_WINDOW" envDefault:"1m"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks configuration consistency.
func (c *Config) Validate() error {
	if c.MembershipFee <= 0 {
		return fmt.Errorf("MEMBERSHIP_FEE must be positive, got %d", c.MembershipFee)
	}
	if c.CreditRateLimit <= 0 {
		return fmt.Errorf("CREDIT_RATE_LIMIT must be positive, got %d", c.CreditRateLimit)
	}
	if c.PGMaxConns <= 0 || c.PGMinConns > c.PGMaxConns {
		return fmt.Errorf("invalid pool sizing: min %d, max %d", c.PGMinConns, c.PGMaxConns)
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
