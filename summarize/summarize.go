package summarize

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/pagesum/cache"
	"github.com/vinayprograms/pagesum/credentials"
	"github.com/vinayprograms/pagesum/errors"
	"github.com/vinayprograms/pagesum/llm"
	"github.com/vinayprograms/pagesum/logging"
	"github.com/vinayprograms/pagesum/metrics"
	"github.com/vinayprograms/pagesum/preferences"
	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/render"
)

// PageSource returns the visible text of a page.
type PageSource interface {
	Text(ctx context.Context, pageURL string) (string, error)
}

// Config configures an Orchestrator.
type Config struct {
	Preferences *preferences.Store
	// Credentials supplies keys for providers with no stored secret. May be nil.
	Credentials *credentials.Credentials
	Cache       *cache.Cache
	Source      PageSource
	Invoker     llm.Invoker

	// Format is the output form requested from providers. Empty means HTML.
	Format       render.Format
	BuildOptions llm.BuildOptions

	Logger   *logging.Logger
	Observer Observer
}

// Validate checks required fields.
func (c Config) Validate() error {
	switch {
	case c.Preferences == nil:
		return errors.InvalidInput("summarize: preferences store is required")
	case c.Cache == nil:
		return errors.InvalidInput("summarize: cache is required")
	case c.Invoker == nil:
		return errors.InvalidInput("summarize: invoker is required")
	}
	return nil
}

// Options adjust a single Summarize run.
type Options struct {
	// Selection is a "provider:model" override. Empty uses the stored preference.
	Selection string
	// Prompt replaces the instruction for this run only.
	Prompt string
	// Source replaces the configured page source for this run only.
	Source PageSource
}

// Orchestrator runs summarize actions. At most one Summarize is outstanding.
type Orchestrator struct {
	prefs     *preferences.Store
	creds     *credentials.Credentials
	cache     *cache.Cache
	source    PageSource
	invoker   llm.Invoker
	format    render.Format
	buildOpts llm.BuildOptions
	logger    *logging.Logger
	observer  Observer

	busy  atomic.Bool
	mu    sync.Mutex
	state State
}

// New creates an Orchestrator.
func New(cfg Config) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format := cfg.Format
	if format == "" {
		format = render.FormatHTML
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.New()
	}

	return &Orchestrator{
		prefs:     cfg.Preferences,
		creds:     cfg.Credentials,
		cache:     cfg.Cache,
		source:    cfg.Source,
		invoker:   cfg.Invoker,
		format:    format,
		buildOpts: cfg.BuildOptions,
		logger:    logger.WithComponent("summarize"),
		observer:  cfg.Observer,
	}, nil
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Format returns the output format requested from providers.
func (o *Orchestrator) Format() render.Format {
	return o.format
}

func (o *Orchestrator) transition(log *logging.Logger, to State) {
	o.mu.Lock()
	from := o.state
	o.state = to
	o.mu.Unlock()

	log.StateTransition(from.String(), to.String())
	if o.observer != nil {
		o.observer(from, to)
	}
}

// Open is the page-load path: show the cached summary for pageURL, if any.
// It never calls a provider. A corrupt cache reads as a miss.
func (o *Orchestrator) Open(ctx context.Context, pageURL string, view View) (bool, error) {
	if !o.busy.CompareAndSwap(false, true) {
		// A running Summarize owns the view.
		return false, errors.Busy()
	}
	defer o.busy.Store(false)

	log := o.logger
	o.transition(log, CacheCheck)

	entry, hit, err := o.cache.Lookup(pageURL)
	if err != nil {
		log.Warn("cache_unreadable", map[string]interface{}{"error": err.Error()})
		hit = false
	}
	log.CacheHit(pageURL, hit)
	metrics.CacheLookups.WithLabelValues(metrics.CacheResult(hit)).Inc()

	if !hit {
		view.Status(StatusNoCache)
		o.transition(log, Idle)
		return false, nil
	}

	o.transition(log, CachedDisplay)
	view.Banner(BannerCached)
	view.Summary(render.Render(entry.Summary, o.format))
	o.transition(log, Idle)
	return true, nil
}

// Summarize is the click path. It always calls the provider, even when a
// cached summary exists, and replaces the cache entry on success. A failure
// is shown on view and returned; the cache is left untouched.
func (o *Orchestrator) Summarize(ctx context.Context, pageURL string, view View, opts Options) (*llm.Result, error) {
	if !o.busy.CompareAndSwap(false, true) {
		return nil, errors.Busy()
	}
	defer o.busy.Store(false)
	metrics.Busy.Set(1)
	defer metrics.Busy.Set(0)

	log := o.logger.WithTraceID(uuid.NewString())
	start := time.Now()

	o.transition(log, Invoking)
	view.Status(StatusSummarizing)
	view.Banner("")

	sel, result, err := o.invoke(ctx, pageURL, opts, log)
	elapsed := time.Since(start)
	providerLabel := string(sel.Provider)

	metrics.SummarizeDuration.WithLabelValues(providerLabel).Observe(elapsed.Seconds())

	if err != nil {
		metrics.SummarizeTotal.WithLabelValues(providerLabel, string(errors.Code(err))).Inc()
		log.SummarizeComplete(pageURL, elapsed, string(errors.Code(err)))
		o.transition(log, Failed)
		view.Error(ErrorPrefix + errors.Display(err))
		o.transition(log, Idle)
		return nil, err
	}

	outcome := "ok"
	if result.Empty {
		outcome = "empty"
	}
	metrics.SummarizeTotal.WithLabelValues(providerLabel, outcome).Inc()
	log.SummarizeComplete(pageURL, elapsed, "success")

	o.transition(log, Success)
	view.Summary(render.Render(result.Text, result.Format))
	if err := o.cache.Record(pageURL, result.Text); err != nil {
		// The summary is already on screen; only persistence failed.
		log.Error("cache_record_failed", map[string]interface{}{"url": pageURL, "error": err.Error()})
	}
	o.transition(log, Idle)
	return result, nil
}

func (o *Orchestrator) invoke(ctx context.Context, pageURL string, opts Options, log *logging.Logger) (preferences.Selection, *llm.Result, error) {
	prefs, err := o.prefs.Load()
	if err != nil {
		return preferences.Selection{}, nil, errors.Wrap(err, "load preferences")
	}
	prefs = preferences.MergeCredentials(prefs, o.creds)

	if opts.Selection != "" {
		id, model, err := provider.ParseSelection(opts.Selection)
		if err != nil {
			return preferences.Selection{}, nil, err
		}
		prefs = prefs.Override(id, model)
	}
	if strings.TrimSpace(opts.Prompt) != "" {
		prefs = prefs.WithInstruction(opts.Prompt)
	}

	sel, err := preferences.Resolve(prefs)
	if err != nil {
		return sel, nil, err
	}
	log.SummarizeStart(pageURL, string(sel.Provider), sel.Model)

	if sel.Secret == "" {
		return sel, nil, errors.Configuration(provider.Name(sel.Provider))
	}

	source := o.source
	if opts.Source != nil {
		source = opts.Source
	}
	if source == nil {
		return sel, nil, errors.Internal("no page source configured")
	}

	text, err := source.Text(ctx, pageURL)
	if err != nil {
		return sel, nil, errors.Wrap(err, "read page text")
	}
	metrics.PageChars.Observe(float64(len(text)))

	req, err := llm.Build(sel, text, o.format, o.buildOpts)
	if err != nil {
		return sel, nil, err
	}

	result, err := o.invoker.Invoke(ctx, req)
	if err != nil {
		return sel, nil, err
	}
	return sel, result, nil
}

// ReadinessWarning returns a warning when no provider has a key, or "".
func ReadinessWarning(p preferences.Preferences) string {
	if p.AnySecret() {
		return ""
	}
	return WarningNoKeys
}

// Readiness loads the stored preferences, merges credentials, and returns
// ReadinessWarning for them.
func (o *Orchestrator) Readiness() (string, error) {
	prefs, err := o.prefs.Load()
	if err != nil {
		return "", errors.Wrap(err, "load preferences")
	}
	return ReadinessWarning(preferences.MergeCredentials(prefs, o.creds)), nil
}
