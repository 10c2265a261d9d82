package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"APP_ENV", "PORT", "DATABASE_URL", "LOG_PATH", "LOG_LEVEL", "POLL_INTERVAL", "POLL_MAX_FAILURES", "POLL_MAX_BACKOFF", "ALLOWED_ORIGINS"} {
		t.Setenv(k, "")
	}
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.True(t, cfg.IsDevelopment())
	assert.Error(t, cfg.RequireDSN())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  env: production
  port: "9000"
db:
  dsn: postgres://file
poll:
  interval: 500ms
  max_failures: 2
`), 0o600))

	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("POLL_MAX_BACKOFF", "1m")
	t.Setenv("ALLOWED_ORIGINS", "localhost:*, viewer.example.com,")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "postgres://env", cfg.DB.DSN)
	assert.Equal(t, 500*time.Millisecond, cfg.Poll.Interval)
	assert.Equal(t, 2, cfg.Poll.MaxFailures)
	assert.Equal(t, time.Minute, cfg.Poll.MaxBackoff)
	assert.Equal(t, "logs/app.log", cfg.Log.Path)
	assert.Equal(t, []string{"localhost:*", "viewer.example.com"}, cfg.App.AllowedOrigins)
	assert.NoError(t, cfg.RequireDSN())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad interval":      {"POLL_INTERVAL": "soon"},
		"zero interval":     {"POLL_INTERVAL": "0s"},
		"bad failures":      {"POLL_MAX_FAILURES": "many"},
		"negative failures": {"POLL_MAX_FAILURES": "-1"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
