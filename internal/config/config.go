package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Archive backends for finished matches.
const (
	ArchiveStorage = "storage"
	ArchiveSQLite  = "sqlite"
)

// Config is the module configuration read from the Nakama runtime env
// (the runtime.env section of the server config).
type Config struct {
	Archive    string `env:"darts_archive"     envDefault:"storage"`
	SQLitePath string `env:"darts_sqlite_path" envDefault:"data/darts.db"`
	ListLimit  int    `env:"darts_list_limit"  envDefault:"100"`

	VivoxIssuer   string        `env:"vivox_issuer"`
	VivoxSecret   string        `env:"vivox_secret"`
	VivoxDomain   string        `env:"vivox_domain"`
	VivoxTokenTTL time.Duration `env:"vivox_token_ttl" envDefault:"1h"`
}

// Load parses vars into a Config and validates it. A nil map yields the
// defaults.
func Load(vars map[string]string) (Config, error) {
	var cfg Config
	if vars == nil {
		vars = map[string]string{}
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Archive {
	case ArchiveStorage:
	case ArchiveSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("darts_sqlite_path is required for the sqlite archive")
		}
	default:
		return fmt.Errorf("unsupported darts_archive %q", c.Archive)
	}
	if c.ListLimit <= 0 {
		return fmt.Errorf("darts_list_limit must be positive, got %d", c.ListLimit)
	}
	if c.VivoxTokenTTL <= 0 {
		return fmt.Errorf("vivox_token_ttl must be positive, got %s", c.VivoxTokenTTL)
	}
	return nil
}

// VoiceConfigured reports whether all Vivox settings are present.
func (c Config) VoiceConfigured() bool {
	return c.VivoxIssuer != "" && c.VivoxSecret != "" && c.VivoxDomain != ""
}
