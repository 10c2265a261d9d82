package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App  AppConfig  `yaml:"app"`
	DB   DBConfig   `yaml:"db"`
	Log  LogConfig  `yaml:"log"`
	Poll PollConfig `yaml:"poll"`
}

type AppConfig struct {
	Env  string `yaml:"env"`
	Port string `yaml:"port"`
	// AllowedOrigins are host patterns, such as "localhost:*", that may open
	// cross-origin WebSocket streams.
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DBConfig struct {
	DSN string `yaml:"dsn"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// PollConfig drives the snapshot poll loop of every viewer connection.
type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxFailures int           `yaml:"max_failures"`
	MaxBackoff  time.Duration `yaml:"max_backoff"`
}

func Default() Config {
	return Config{
		App:  AppConfig{Env: "development", Port: "8080"},
		Log:  LogConfig{Path: "logs/app.log", Level: "info"},
		Poll: PollConfig{Interval: 2 * time.Second, MaxFailures: 5, MaxBackoff: 30 * time.Second},
	}
}

// Load reads filename if it exists, then .env, then the environment.
// Later sources win.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	// .env is optional; variables already set in the environment are kept
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.App.Env = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.App.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.App.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DB.DSN = v
	}
	if v := os.Getenv("LOG_PATH"); v != "" {
		c.Log.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}

	var err error
	if c.Poll.Interval, err = envDuration("POLL_INTERVAL", c.Poll.Interval); err != nil {
		return err
	}
	if c.Poll.MaxBackoff, err = envDuration("POLL_MAX_BACKOFF", c.Poll.MaxBackoff); err != nil {
		return err
	}
	if v := os.Getenv("POLL_MAX_FAILURES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env var POLL_MAX_FAILURES: expected integer, got '%s'", v)
		}
		c.Poll.MaxFailures = n
	}
	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.App.Port == "":
		return errors.New("config: port is required")
	case c.Poll.Interval <= 0:
		return fmt.Errorf("config: poll interval must be positive, got %s", c.Poll.Interval)
	case c.Poll.MaxFailures < 0:
		return fmt.Errorf("config: poll max failures must not be negative, got %d", c.Poll.MaxFailures)
	}
	return nil
}

// RequireDSN is checked by commands that open the database.
func (c *Config) RequireDSN() error {
	if c.DB.DSN == "" {
		return errors.New("config: DATABASE_URL is required")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.App.Env == "development" }

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected duration, got '%s'", key, v)
	}
	return d, nil
}
