package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/veranstalter/pkg/auth"
	"github.com/JaimeStill/veranstalter/pkg/database"
	"github.com/JaimeStill/veranstalter/pkg/mail"
	"github.com/JaimeStill/veranstalter/pkg/queue"
	"github.com/JaimeStill/veranstalter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"
	DotEnvFile           = ".env"

	EnvVeranstalterEnv             = "VERANSTALTER_ENV"
	EnvVeranstalterShutdownTimeout = "VERANSTALTER_SHUTDOWN_TIMEOUT"
	EnvVeranstalterVersion         = "VERANSTALTER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "VERANSTALTER_DB_HOST",
	Port:            "VERANSTALTER_DB_PORT",
	Name:            "VERANSTALTER_DB_NAME",
	User:            "VERANSTALTER_DB_USER",
	Password:        "VERANSTALTER_DB_PASSWORD",
	SSLMode:         "VERANSTALTER_DB_SSL_MODE",
	ApplicationName: "VERANSTALTER_DB_APPLICATION_NAME",
	MaxOpenConns:    "VERANSTALTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "VERANSTALTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "VERANSTALTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "VERANSTALTER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "VERANSTALTER_STORAGE_CONTAINER_NAME",
	ConnectionString: "VERANSTALTER_STORAGE_CONNECTION_STRING",
	AccountURL:       "VERANSTALTER_STORAGE_ACCOUNT_URL",
}

var authEnv = &auth.Env{
	Mode:     "VERANSTALTER_AUTH_MODE",
	Secret:   "VERANSTALTER_AUTH_SECRET",
	Issuer:   "VERANSTALTER_AUTH_ISSUER",
	ClientID: "VERANSTALTER_AUTH_CLIENT_ID",
	TokenTTL: "VERANSTALTER_AUTH_TOKEN_TTL",
}

var redisEnv = &queue.Env{
	Addr:        "VERANSTALTER_REDIS_ADDR",
	Password:    "VERANSTALTER_REDIS_PASSWORD",
	DB:          "VERANSTALTER_REDIS_DB",
	Key:         "VERANSTALTER_REDIS_KEY",
	DeadLetter:  "VERANSTALTER_REDIS_DEAD_LETTER",
	MaxRetries:  "VERANSTALTER_REDIS_MAX_RETRIES",
	PollTimeout: "VERANSTALTER_REDIS_POLL_TIMEOUT",
}

var mailEnv = &mail.Env{
	Enabled:  "VERANSTALTER_MAIL_ENABLED",
	Host:     "VERANSTALTER_MAIL_HOST",
	Port:     "VERANSTALTER_MAIL_PORT",
	Username: "VERANSTALTER_MAIL_USERNAME",
	Password: "VERANSTALTER_MAIL_PASSWORD",
	TLS:      "VERANSTALTER_MAIL_TLS",
	From:     "VERANSTALTER_MAIL_FROM",
	To:       "VERANSTALTER_MAIL_TO",
	Timeout:  "VERANSTALTER_MAIL_TIMEOUT",
}

// Config is the root configuration for the Veranstalter service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Redis           queue.Config    `toml:"redis"`
	Mail            mail.Config     `toml:"mail"`
	Log             LogConfig       `toml:"log"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the VERANSTALTER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvVeranstalterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads .env and the base config (if present), applies any environment
// overlay, and finalizes all values. If no config.toml exists, defaults and
// environment variables provide all configuration.
// Variables already set in the process environment take precedence over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}

	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Redis.Merge(&overlay.Redis)
	c.Mail.Merge(&overlay.Mail)
	c.Log.Merge(&overlay.Log)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Redis.Finalize(redisEnv); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Mail.Finalize(mailEnv); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	if err := c.Log.Finalize(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvVeranstalterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvVeranstalterVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvVeranstalterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
