package queue

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds Redis connection and job queue settings.
type Config struct {
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	Key         string `toml:"key"`
	DeadLetter  string `toml:"dead_letter"`
	MaxRetries  int    `toml:"max_retries"`
	PollTimeout string `toml:"poll_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Addr        string
	Password    string
	DB          string
	Key         string
	DeadLetter  string
	MaxRetries  string
	PollTimeout string
}

// PollTimeoutDuration returns PollTimeout as a time.Duration.
func (c *Config) PollTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PollTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.Key != "" {
		c.Key = overlay.Key
	}
	if overlay.DeadLetter != "" {
		c.DeadLetter = overlay.DeadLetter
	}
	if overlay.MaxRetries != 0 {
		c.MaxRetries = overlay.MaxRetries
	}
	if overlay.PollTimeout != "" {
		c.PollTimeout = overlay.PollTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Key == "" {
		c.Key = "veranstalter:mail"
	}
	if c.DeadLetter == "" {
		c.DeadLetter = c.Key + ":dlq"
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.PollTimeout == "" {
		c.PollTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Addr != "" {
		if v := os.Getenv(env.Addr); v != "" {
			c.Addr = v
		}
	}
	if env.Password != "" {
		if v := os.Getenv(env.Password); v != "" {
			c.Password = v
		}
	}
	if env.DB != "" {
		if v := os.Getenv(env.DB); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.DB = n
			}
		}
	}
	if env.Key != "" {
		if v := os.Getenv(env.Key); v != "" {
			c.Key = v
		}
	}
	if env.DeadLetter != "" {
		if v := os.Getenv(env.DeadLetter); v != "" {
			c.DeadLetter = v
		}
	}
	if env.MaxRetries != "" {
		if v := os.Getenv(env.MaxRetries); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.MaxRetries = n
			}
		}
	}
	if env.PollTimeout != "" {
		if v := os.Getenv(env.PollTimeout); v != "" {
			c.PollTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	if c.Key == c.DeadLetter {
		return fmt.Errorf("dead_letter must differ from key")
	}
	d, err := time.ParseDuration(c.PollTimeout)
	if err != nil {
		return fmt.Errorf("invalid poll_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("poll_timeout must be positive")
	}
	return nil
}
