package main

import (
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/vinayprograms/pagesum/cache"
	"github.com/vinayprograms/pagesum/config"
	"github.com/vinayprograms/pagesum/credentials"
	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/llm"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/pagetext"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/state"
	"github.com/vinayprograms/pagesum/summarize"
)

// env holds the wired collaborators for one command.
type env struct {
	cfg    config.Config
	logger *logging.Logger
	kv     state.Store
	prefs  *preferences.Store
	creds  *credentials.Credentials
	cache  *cache.Cache
	orch   *summarize.Orchestrator
}

// loadConfig reads the environment, then lets set flags win before the
// result is validated.
func loadConfig(c *cli.Context) (config.Config, error) {
	return config.Load(func(cfg *config.Config) {
		if c.IsSet("state") {
			cfg.StatePath = c.String("state")
		}
		if c.IsSet("credentials") {
			cfg.CredentialsPath = c.String("credentials")
		}
		if c.IsSet("format") {
			cfg.OutputFormat = c.String("format")
		}
		if c.IsSet("log-level") {
			cfg.LogLevel = c.String("log-level")
		}
		if c.IsSet("timeout") {
			cfg.HTTPTimeout = c.Duration("timeout")
		}
	})
}

func openEnv(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	format, err := cfg.Format()
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	level, err := cfg.Level()
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	logger := logging.New()
	logger.SetLevel(level)

	var creds *credentials.Credentials
	if cfg.CredentialsPath != "" {
		creds, err = credentials.LoadFile(cfg.CredentialsPath)
	} else {
		creds, _, err = credentials.Load()
	}
	if err != nil {
		return nil, errors.Wrap(err, "load credentials")
	}

	kv, err := state.NewBoltStore(state.BoltConfig{Path: cfg.StateFile()})
	if err != nil {
		return nil, errors.Wrap(err, "open state")
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		kv:     kv,
		prefs:  preferences.NewStore(kv),
		creds:  creds,
		cache:  cache.New(kv),
	}

	e.orch, err = summarize.New(summarize.Config{
		Preferences: e.prefs,
		Credentials: creds,
		Cache:       e.cache,
		Source:      pagetext.NewFetcher(pagetext.FetcherConfig{UserAgent: cfg.UserAgent}),
		Invoker: llm.NewHTTPInvoker(llm.HTTPInvokerConfig{
			Client:    &http.Client{Timeout: cfg.HTTPTimeout},
			UserAgent: cfg.UserAgent,
			Logger:    logger,
		}),
		Format: format,
		Logger: logger,
	})
	if err != nil {
		kv.Close()
		return nil, err
	}
	return e, nil
}

func (e *env) Close() error {
	return e.kv.Close()
}

// withEnv runs fn with a freshly opened env and closes it afterwards.
func withEnv(fn func(c *cli.Context, e *env) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		e, err := openEnv(c)
		if err != nil {
			return err
		}
		defer e.Close()
		return fn(c, e)
	}
}
