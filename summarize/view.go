package summarize

import "sync"

// User-facing messages.
const (
	StatusSummarizing = "Summarizing..."
	StatusNoCache     = "No cached summary for this page."
	BannerCached      = "Showing previously generated summary"
	WarningNoKeys     = "Please set at least one API key in options first"
	ErrorPrefix       = "Error: "
)

// View is the presentation surface a run writes to.
type View interface {
	// Status shows a transient status line.
	Status(msg string)
	// Banner shows or, with "", clears the cached-summary banner.
	Banner(msg string)
	// Summary shows rendered HTML.
	Summary(html string)
	// Error shows a failure message.
	Error(msg string)
}

// Recorder is a View that keeps everything it is shown.
type Recorder struct {
	mu      sync.Mutex
	Events  []Event
	status  string
	banner  string
	summary string
	err     string
}

// Event is one call made on a Recorder.
type Event struct {
	Kind string
	Text string
}

var _ View = (*Recorder)(nil)

func (r *Recorder) record(kind, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, Event{Kind: kind, Text: text})
	switch kind {
	case "status":
		r.status = text
	case "banner":
		r.banner = text
	case "summary":
		r.summary = text
		r.err = ""
	case "error":
		r.err = text
	}
}

func (r *Recorder) Status(msg string)   { r.record("status", msg) }
func (r *Recorder) Banner(msg string)   { r.record("banner", msg) }
func (r *Recorder) Summary(html string) { r.record("summary", html) }
func (r *Recorder) Error(msg string)    { r.record("error", msg) }

// Last returns the latest status, banner, summary and error.
func (r *Recorder) Last() (status, banner, summary, err string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status, r.banner, r.summary, r.err
}
