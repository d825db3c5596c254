package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/robfig/cron/v3"

	"github.com/odyssey-erp/prodmon/internal/production/appsheet"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"30s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	CacheTTL  time.Duration `envconfig:"CACHE_TTL" default:"5m"`

	AppSheetAppID     string        `envconfig:"APPSHEET_APP_ID"`
	AppSheetAccessKey string        `envconfig:"APPSHEET_ACCESS_KEY"`
	AppSheetTable     string        `envconfig:"APPSHEET_TABLE" default:"Bảng theo dõi sản xuất"`
	AppSheetBaseURL   string        `envconfig:"APPSHEET_BASE_URL" default:"https://api.appsheet.com/api/v2"`
	AppSheetLocale    string        `envconfig:"APPSHEET_LOCALE" default:"vi-VN"`
	AppSheetTimezone  string        `envconfig:"APPSHEET_TIMEZONE" default:"Asia/Ho_Chi_Minh"`
	AppSheetTimeout   time.Duration `envconfig:"APPSHEET_TIMEOUT" default:"15s"`

	RefreshCron     string `envconfig:"REFRESH_CRON" default:"*/15 * * * *"`
	ExportRateLimit int    `envconfig:"EXPORT_RATE_LIMIT" default:"10"`
	RateLimit       int    `envconfig:"RATE_LIMIT" default:"120"`

	CORSAllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.CacheTTL <= 0 {
		return errors.New("cache ttl must be positive")
	}
	if c.ExportRateLimit <= 0 || c.RateLimit <= 0 {
		return errors.New("rate limits must be positive")
	}
	if (c.AppSheetAppID == "") != (c.AppSheetAccessKey == "") {
		return errors.New("appsheet app id and access key must be set together")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.RefreshCron); err != nil {
		return fmt.Errorf("invalid REFRESH_CRON %q: %w", c.RefreshCron, err)
	}
	return nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// AppSheet returns the backend client settings.
func (c *Config) AppSheet() appsheet.Config {
	return appsheet.Config{
		AppID:     c.AppSheetAppID,
		AccessKey: c.AppSheetAccessKey,
		Table:     c.AppSheetTable,
		BaseURL:   c.AppSheetBaseURL,
		Locale:    c.AppSheetLocale,
		Timezone:  c.AppSheetTimezone,
		Timeout:   c.AppSheetTimeout,
	}
}
