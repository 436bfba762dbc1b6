package app

import (
	"errors"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/insightdash/insightdash/internal/dashboard"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RateLimitPerMinute       int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"60"`
	ExportRateLimitPerMinute int `envconfig:"EXPORT_RATE_LIMIT_PER_MINUTE" default:"10"`

	DashboardMountDelay      time.Duration `envconfig:"DASHBOARD_MOUNT_DELAY" default:"1s"`
	DashboardRangeDelay      time.Duration `envconfig:"DASHBOARD_RANGE_DELAY" default:"800ms"`
	DashboardDefaultDays     int           `envconfig:"DASHBOARD_DEFAULT_DAYS" default:"30"`
	DashboardRandomSeed      uint64        `envconfig:"DASHBOARD_RANDOM_SEED" default:"0"`
	DashboardLongPollTimeout time.Duration `envconfig:"DASHBOARD_LONGPOLL_TIMEOUT" default:"5s"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the dashboard cannot run with.
func (c *Config) Validate() error {
	if c.DashboardMountDelay < 0 || c.DashboardRangeDelay < 0 {
		return errors.New("dashboard delays must not be negative")
	}
	if c.DashboardDefaultDays <= 0 {
		return errors.New("dashboard default days must be positive")
	}
	if c.DashboardLongPollTimeout <= 0 {
		return errors.New("long-poll timeout must be positive")
	}
	if c.AppRequestTimeout > 0 && c.DashboardLongPollTimeout >= c.AppRequestTimeout {
		return errors.New("long-poll timeout must be shorter than the request timeout")
	}
	if c.RateLimitPerMinute <= 0 || c.ExportRateLimitPerMinute <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// ControllerConfig maps the dashboard settings onto the refresh controller.
func (c *Config) ControllerConfig() dashboard.ControllerConfig {
	return dashboard.ControllerConfig{
		MountDelay:  c.DashboardMountDelay,
		RangeDelay:  c.DashboardRangeDelay,
		DefaultDays: c.DashboardDefaultDays,
	}
}

const testModeEnv = "INSIGHTDASH_TEST_MODE"

// InTestMode reports whether main should return before loading data or listening.
func InTestMode() bool {
	return os.Getenv(testModeEnv) == "1"
}
