package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Name        string `envconfig:"APP_NAME" default:"EasySplit"`
		Port        int    `envconfig:"PORT" default:"8080"`
		Environment string `envconfig:"APP_ENV" default:"development"`
	}

	DB struct {
		Driver   string `envconfig:"DB_DRIVER" default:"postgres"`
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"easysplit"`
		Path     string `envconfig:"DB_PATH" default:"data/easysplit.db"`
	}

	Server struct {
		ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
		WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
		IdleTimeout     time.Duration `envconfig:"SERVER_IDLE_TIMEOUT" default:"60s"`
		ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
	}

	// RateLimit applies to code lookups only.
	RateLimit struct {
		Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
		Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	Client struct {
		BaseURL      string        `envconfig:"EASYSPLIT_API_URL" default:"http://localhost:8080/api/v1"`
		PollInterval time.Duration `envconfig:"EASYSPLIT_POLL_INTERVAL" default:"3s"`
		SaveDebounce time.Duration `envconfig:"EASYSPLIT_SAVE_DEBOUNCE" default:"1s"`
		StatePath    string        `envconfig:"EASYSPLIT_STATE_PATH" default:""`
		LogFile      string        `envconfig:"EASYSPLIT_LOG_FILE" default:""`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(c.DB.User), url.QueryEscape(c.DB.Password), c.DB.Host, c.DB.Port, c.DB.Name)
}

func (c *Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", c.DB.Path)
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DB.Driver == DriverSQLite {
		return c.SQLiteDSN()
	}

	return c.ConnectionString()
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	switch cfg.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DB.Driver)
	}

	return &cfg, nil
}
