package mail

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// TLS policies accepted in Config.TLS.
const (
	TLSNone          = "none"
	TLSOpportunistic = "opportunistic"
	TLSMandatory     = "mandatory"
)

// Config holds SMTP delivery settings and notification recipients.
type Config struct {
	Enabled  bool     `toml:"enabled"`
	Host     string   `toml:"host"`
	Port     int      `toml:"port"`
	Username string   `toml:"username"`
	Password string   `toml:"password"`
	TLS      string   `toml:"tls"`
	From     string   `toml:"from"`
	To       []string `toml:"to"`
	Timeout  string   `toml:"timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Enabled  string
	Host     string
	Port     string
	Username string
	Password string
	TLS      string
	From     string
	To       string
	Timeout  string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
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

// Merge overwrites fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	if overlay.Username != "" {
		c.Username = overlay.Username
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.TLS != "" {
		c.TLS = overlay.TLS
	}
	if overlay.From != "" {
		c.From = overlay.From
	}
	if overlay.To != nil {
		c.To = overlay.To
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
}

func (c *Config) loadDefaults() {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 25
	}
	if c.TLS == "" {
		c.TLS = TLSNone
	}
	if c.From == "" {
		c.From = "veranstalter@acme.com"
	}
	if len(c.To) == 0 {
		c.To = []string{"admin@acme.com"}
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	get := func(name string) string {
		if name == "" {
			return ""
		}
		return os.Getenv(name)
	}

	if v := get(env.Enabled); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v := get(env.Host); v != "" {
		c.Host = v
	}
	if v := get(env.Port); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := get(env.Username); v != "" {
		c.Username = v
	}
	if v := get(env.Password); v != "" {
		c.Password = v
	}
	if v := get(env.TLS); v != "" {
		c.TLS = v
	}
	if v := get(env.From); v != "" {
		c.From = v
	}
	if v := get(env.To); v != "" {
		c.To = nil
		for _, addr := range strings.Split(v, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				c.To = append(c.To, addr)
			}
		}
	}
	if v := get(env.Timeout); v != "" {
		c.Timeout = v
	}
}

func (c *Config) validate() error {
	switch c.TLS {
	case TLSNone, TLSOpportunistic, TLSMandatory:
	default:
		return fmt.Errorf("unknown tls policy %q", c.TLS)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	return nil
}
