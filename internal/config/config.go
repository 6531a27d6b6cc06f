// Package config loads the bot configuration: the core Telegram and logging
// settings plus database, session and ops sections.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/gamebot/core/config"
	coredatabase "github.com/m3rciful/gamebot/core/database"
	"github.com/m3rciful/gamebot/core/telegram/state"
)

// Session backends.
const (
	SessionMemory   = "memory"
	SessionPostgres = "postgres"
)

// SessionConfig selects where conversation state lives.
type SessionConfig struct {
	Backend       string        `yaml:"backend" envconfig:"SESSION_BACKEND"`
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// OpsConfig configures the operational HTTP server. An empty Listen disables it.
type OpsConfig struct {
	Listen      string   `yaml:"listen" envconfig:"OPS_LISTEN"`
	CORSOrigins []string `yaml:"cors_origins" envconfig:"OPS_CORS_ORIGINS"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Session  SessionConfig       `yaml:"session"`
	Ops      OpsConfig           `yaml:"ops"`
}

// CoreConfig exposes the embedded core section.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}

	c.Session.Backend = strings.ToLower(strings.TrimSpace(c.Session.Backend))
	switch c.Session.Backend {
	case "":
		c.Session.Backend = SessionMemory
	case SessionMemory, SessionPostgres:
	default:
		return fmt.Errorf("invalid session.backend %q; allowed: memory, postgres", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		c.Session.TTL = state.DefaultTTL
	}
	if c.Session.SweepInterval <= 0 {
		c.Session.SweepInterval = time.Minute
	}

	c.Ops.Listen = strings.TrimSpace(c.Ops.Listen)
	origins := c.Ops.CORSOrigins[:0]
	for _, o := range c.Ops.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Ops.CORSOrigins = origins
	return nil
}
