// Package config reads pagesum settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/render"
	"github.com/vinayprograms/pagesum/state"
)

// Prefix is prepended to every variable name.
const Prefix = "PAGESUM_"

// Config holds every setting read from PAGESUM_* variables. Command-line
// flags override individual fields through Load's override functions.
type Config struct {
	// StatePath is the bbolt file holding preferences and the cache.
	// Empty means state.DefaultPath().
	StatePath string `env:"STATE_PATH"`
	// CredentialsPath overrides the credentials.toml search.
	CredentialsPath string        `env:"CREDENTIALS"`
	OutputFormat    string        `env:"OUTPUT_FORMAT" envDefault:"html"`
	ListenAddr      string        `env:"LISTEN_ADDR"   envDefault:":8088"`
	LogLevel        string        `env:"LOG_LEVEL"     envDefault:"INFO"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT"  envDefault:"0"`
	UserAgent       string        `env:"USER_AGENT"    envDefault:"pagesum/1.0"`
}

// Override changes a parsed Config before it is validated.
type Override func(*Config)

// Load parses the process environment, applies overrides in order and
// validates the result.
func Load(overrides ...Override) (Config, error) {
	return parse(env.Options{Prefix: Prefix}, overrides)
}

// LoadFrom parses vars instead of the process environment. Keys carry the
// PAGESUM_ prefix.
func LoadFrom(vars map[string]string, overrides ...Override) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars}, overrides)
}

func parse(opts env.Options, overrides []Override) (Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	for _, o := range overrides {
		o(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the format, log level and timeout.
func (c Config) Validate() error {
	if _, err := c.Format(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("config: %sHTTP_TIMEOUT must not be negative", Prefix)
	}
	return nil
}

// Format returns the parsed output format.
func (c Config) Format() (render.Format, error) {
	return render.ParseFormat(c.OutputFormat)
}

// Level returns the parsed log level.
func (c Config) Level() (logging.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}

// StateFile returns StatePath or the default location.
func (c Config) StateFile() string {
	if c.StatePath != "" {
		return c.StatePath
	}
	return state.DefaultPath()
}
