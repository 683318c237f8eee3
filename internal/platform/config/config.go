package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"

	"crewshift/internal/domain/payroll"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Addr               string        `env:"APP_ADDR" envDefault:":8080"`
	Environment        string        `env:"APP_ENV" envDefault:"development"`
	StoreDriver        string        `env:"STORE_DRIVER" envDefault:"postgres"`
	DatabaseURL        string        `env:"DATABASE_URL"`
	MigrationsDir      string        `env:"MIGRATIONS_DIR" envDefault:"migrations"`
	JWTSecret          string        `env:"JWT_SECRET" envDefault:"dev-secret"`
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"12h"`
	MaxBodyBytes       int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	RateLimitPerMinute int           `env:"RATE_LIMIT_PER_MINUTE" envDefault:"60"`
	LogLevel           string        `env:"LOG_LEVEL" envDefault:"info"`
	RunMigrations      bool          `env:"RUN_MIGRATIONS" envDefault:"true"`
	RunSeed            bool          `env:"RUN_SEED" envDefault:"true"`
	MetricsEnabled     bool          `env:"METRICS_ENABLED" envDefault:"true"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Seed struct {
		ManagerEmail string `env:"MANAGER_EMAIL"`
		WorkerEmail  string `env:"WORKER_EMAIL"`
		ClientEmail  string `env:"CLIENT_EMAIL"`
		Password     string `env:"PASSWORD"`
	} `envPrefix:"SEED_"`

	Payroll struct {
		FullDayHours decimal.Decimal `env:"FULL_DAY_HOURS" envDefault:"8"`
		FullDayRate  decimal.Decimal `env:"FULL_DAY_RATE" envDefault:"120"`
		Timezone     string          `env:"TIMEZONE" envDefault:"UTC"`
	} `envPrefix:"PAYROLL_"`

	Redis struct {
		Addr     string `env:"ADDR"`
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	} `envPrefix:"REDIS_"`

	RabbitMQ struct {
		URL            string        `env:"URL"`
		Queue          string        `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout time.Duration `env:"PUBLISH_TIMEOUT" envDefault:"10s"`
		MaxAttempts    int           `env:"MAX_ATTEMPTS" envDefault:"5"`
		RetryDelay     time.Duration `env:"RETRY_DELAY" envDefault:"5s"`
	} `envPrefix:"RABBITMQ_"`

	SMTP struct {
		Host     string `env:"HOST"`
		Port     int    `env:"PORT" envDefault:"465"`
		Username string `env:"USERNAME"`
		Password string `env:"PASSWORD"`
		From     string `env:"FROM" envDefault:"no-reply@example.com"`
		UseSSL   bool   `env:"USE_SSL" envDefault:"true"`
	} `envPrefix:"SMTP_"`
}

// Load reads the environment. Only the first parse error is returned.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return Config{}, aggErr.Errors[0]
		}
		return Config{}, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	return cfg, nil
}

func (c Config) Rates() payroll.Rates {
	return payroll.Rates{FullDayHours: c.Payroll.FullDayHours, FullDayRate: c.Payroll.FullDayRate}
}

func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Payroll.Timezone)
}

func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres:
		if strings.TrimSpace(c.DatabaseURL) == "" {
			return fmt.Errorf("DATABASE_URL is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q", DriverPostgres, DriverMemory)
	}
	if strings.TrimSpace(c.JWTSecret) == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" && c.JWTSecret == "dev-secret" {
		return fmt.Errorf("JWT_SECRET must be set to a strong value in production")
	}
	if c.Environment == "production" && c.RunSeed && strings.TrimSpace(c.Seed.Password) == "" {
		return fmt.Errorf("SEED_PASSWORD must be set or RUN_SEED disabled in production")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	if c.MaxBodyBytes < 1024 {
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.RabbitMQ.MaxAttempts < 1 {
		return fmt.Errorf("RABBITMQ_MAX_ATTEMPTS must be at least 1")
	}
	if c.RabbitMQ.RetryDelay < 0 {
		return fmt.Errorf("RABBITMQ_RETRY_DELAY must not be negative")
	}
	if err := c.Rates().Validate(); err != nil {
		return fmt.Errorf("PAYROLL_FULL_DAY_HOURS and PAYROLL_FULL_DAY_RATE: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("PAYROLL_TIMEZONE: %w", err)
	}
	return nil
}
