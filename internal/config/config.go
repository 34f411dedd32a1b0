package config

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ExpertosTI/presta-pro-sub000/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Logging   LoggingConfig   `mapstructure:",squash"`
	Business  BusinessConfig  `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL             string `mapstructure:"DATABASE_URL"`
	MaxOpenConns    int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
	ConnMaxLifetime string `mapstructure:"DATABASE_CONN_MAX_LIFETIME"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	Channel  string `mapstructure:"REDIS_EVENTS_CHANNEL"`
}

type SchedulerConfig struct {
	DelinquencySpec string `mapstructure:"SCHEDULER_DELINQUENCY_SPEC"`
	RouteWarmupSpec string `mapstructure:"SCHEDULER_ROUTE_WARMUP_SPEC"`
	Timezone        string `mapstructure:"SCHEDULER_TIMEZONE"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`
	Format string `mapstructure:"LOG_FORMAT"`
}

type BusinessConfig struct {
	DelinquencyThreshold int    `mapstructure:"DELINQUENCY_THRESHOLD"`
	PenaltyPerDay        string `mapstructure:"PENALTY_PER_DAY"`
	PenaltyGraceDays     int    `mapstructure:"PENALTY_GRACE_DAYS"`
	RoutePolicy          string `mapstructure:"ROUTE_POLICY"`
	PaymentLockTTL       string `mapstructure:"PAYMENT_LOCK_TTL"`
	OutstandingCacheTTL  string `mapstructure:"OUTSTANDING_CACHE_TTL"`
	CompanyName          string `mapstructure:"COMPANY_NAME"`
	CompanyLogoURL       string `mapstructure:"COMPANY_LOGO_URL"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

var defaults = map[string]any{
	"SERVER_PORT":                 "8080",
	"SERVER_HOST":                 "0.0.0.0",
	"ENV":                         "development",
	"SERVER_READ_TIMEOUT":         "15s",
	"SERVER_WRITE_TIMEOUT":        "15s",
	"DATABASE_URL":                "",
	"DATABASE_MAX_OPEN_CONNS":     25,
	"DATABASE_MAX_IDLE_CONNS":     10,
	"DATABASE_CONN_MAX_LIFETIME":  "5m",
	"REDIS_HOST":                  "localhost",
	"REDIS_PORT":                  "6379",
	"REDIS_PASSWORD":              "",
	"REDIS_DB":                    0,
	"REDIS_EVENTS_CHANNEL":        "lending.events",
	"SCHEDULER_DELINQUENCY_SPEC":  "0 0 0 * * *",
	"SCHEDULER_ROUTE_WARMUP_SPEC": "0 0 6 * * *",
	"SCHEDULER_TIMEZONE":          "America/Santo_Domingo",
	"LOG_LEVEL":                   "info",
	"LOG_FORMAT":                  "json",
	"DELINQUENCY_THRESHOLD":       2,
	"PENALTY_PER_DAY":             "0",
	"PENALTY_GRACE_DAYS":          0,
	"ROUTE_POLICY":                string(domain.RoutePolicyDue),
	"PAYMENT_LOCK_TTL":            "30s",
	"OUTSTANDING_CACHE_TTL":       "10m",
	"COMPANY_NAME":                "",
	"COMPANY_LOGO_URL":            "",
	"HEALTH_CHECK_TIMEOUT":        "5s",
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	// Read from environment variables
	v.AutomaticEnv()

	// Try to read from .env file (optional)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = v.ReadInConfig()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Business.DelinquencyThreshold <= 0 {
		return fmt.Errorf("DELINQUENCY_THRESHOLD must be greater than 0")
	}

	if c.Business.PenaltyGraceDays < 0 {
		return fmt.Errorf("PENALTY_GRACE_DAYS must not be negative")
	}

	penalty, err := decimal.NewFromString(c.Business.PenaltyPerDay)
	if err != nil {
		return fmt.Errorf("PENALTY_PER_DAY must be a valid decimal: %w", err)
	}
	if penalty.IsNegative() {
		return fmt.Errorf("PENALTY_PER_DAY must not be negative")
	}

	if !domain.RoutePolicy(c.Business.RoutePolicy).Valid() {
		return fmt.Errorf("ROUTE_POLICY must be %q or %q", domain.RoutePolicyDue, domain.RoutePolicyAll)
	}

	durations := map[string]string{
		"SERVER_READ_TIMEOUT":        c.Server.ReadTimeout,
		"SERVER_WRITE_TIMEOUT":       c.Server.WriteTimeout,
		"DATABASE_CONN_MAX_LIFETIME": c.Database.ConnMaxLifetime,
		"PAYMENT_LOCK_TTL":           c.Business.PaymentLockTTL,
		"OUTSTANDING_CACHE_TTL":      c.Business.OutstandingCacheTTL,
		"HEALTH_CHECK_TIMEOUT":       c.Health.Timeout,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%s must be a valid duration: %w", name, err)
		}
	}

	if _, err := time.LoadLocation(c.Scheduler.Timezone); err != nil {
		return fmt.Errorf("SCHEDULER_TIMEZONE must be a valid location: %w", err)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// DSN returns the Postgres connection string.
func (c DatabaseConfig) DSN() string {
	return c.URL
}

func (c DatabaseConfig) GetConnMaxLifetime() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c ServerConfig) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.ReadTimeout)
	return d
}

func (c ServerConfig) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.WriteTimeout)
	return d
}

// GetPenaltyPerDay returns the daily late fee as decimal
func (c *Config) GetPenaltyPerDay() decimal.Decimal {
	rate, _ := decimal.NewFromString(c.Business.PenaltyPerDay)
	return rate
}

func (c *Config) GetRoutePolicy() domain.RoutePolicy {
	return domain.RoutePolicy(c.Business.RoutePolicy)
}

func (c *Config) GetPaymentLockTTL() time.Duration {
	d, _ := time.ParseDuration(c.Business.PaymentLockTTL)
	return d
}

func (c *Config) GetOutstandingCacheTTL() time.Duration {
	d, _ := time.ParseDuration(c.Business.OutstandingCacheTTL)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	timeout, _ := time.ParseDuration(c.Health.Timeout)
	return timeout
}

// GetLocation returns the scheduler timezone; UTC if it cannot be loaded.
func (c *Config) GetLocation() *time.Location {
	loc, err := time.LoadLocation(c.Scheduler.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) Branding() domain.Branding {
	return domain.Branding{
		CompanyName: c.Business.CompanyName,
		LogoURL:     c.Business.CompanyLogoURL,
	}
}
