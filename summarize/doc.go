// Package summarize ties preferences, the page text, the provider call and
// the result cache together for the two user actions.
//
// # Overview
//
// Open is the page-load path: it shows the cached summary for a URL, if
// one exists, and never calls a provider. Summarize is the click path: it
// always calls the selected provider, renders the reply, and replaces the
// cache entry on success. Both drive a View (status line, banner, summary
// pane, error line) and move the Orchestrator through its states:
//
//	Open:       Idle → CacheCheck → CachedDisplay → Idle
//	                              ↘ Idle (miss)
//	Summarize:  Idle → Invoking → Success → Idle
//	                            ↘ Failed  → Idle
//
// Only one run holds the Orchestrator at a time. A second Open or
// Summarize while one is outstanding returns RESOURCE_BUSY and leaves the
// view alone.
//
// # Usage
//
//	orch, err := summarize.New(summarize.Config{
//	    Preferences: prefs,
//	    Cache:       c,
//	    Source:      pagetext.NewFetcher(pagetext.FetcherConfig{}),
//	    Invoker:     llm.NewHTTPInvoker(llm.HTTPInvokerConfig{}),
//	})
//	if err != nil {
//	    return err
//	}
//
//	view := &summarize.Recorder{}
//	if _, err := orch.Summarize(ctx, pageURL, view, summarize.Options{}); err != nil {
//	    // view already shows "Error: ..."
//	}
//
// A missing API key short-circuits before any request is sent. Failures
// never touch the cache.
package summarize
