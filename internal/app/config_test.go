package app

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APPSHEET_APP_ID", "")
	t.Setenv("APPSHEET_ACCESS_KEY", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "*/15 * * * *", cfg.RefreshCron)
	assert.Equal(t, 10, cfg.ExportRateLimit)
	assert.False(t, cfg.IsProduction())

	sheet := cfg.AppSheet()
	assert.False(t, sheet.Configured())
	assert.Equal(t, "Bảng theo dõi sản xuất", sheet.Table)
	assert.Equal(t, "Asia/Ho_Chi_Minh", sheet.Timezone)
	assert.Equal(t, 15*time.Second, sheet.Timeout)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("APPSHEET_APP_ID", "app-1")
	t.Setenv("APPSHEET_ACCESS_KEY", "secret")
	t.Setenv("EXPORT_RATE_LIMIT", "3")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.ExportRateLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AppSheet().Configured())
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"zero ttl":       {"CACHE_TTL": "0s"},
		"negative limit": {"EXPORT_RATE_LIMIT": "-1"},
		"half creds":     {"APPSHEET_APP_ID": "app-1", "APPSHEET_ACCESS_KEY": ""},
		"bad duration":   {"APP_READ_TIMEOUT": "soon"},
		"bad cron":       {"REFRESH_CRON": "every morning"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestNewLoggerFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	newLogger(&Config{LogFormat: "json"}, buf).Info("hello", slog.String("k", "v"))
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	newLogger(&Config{AppEnv: "production"}, buf).Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestTestModeFlag(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}
