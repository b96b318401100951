package summarize

// State is a step of a run.
//
//	Idle → CacheCheck → CachedDisplay → Idle        (Open)
//	Idle → Invoking → (Success | Failed) → Idle     (Summarize)
type State int

const (
	Idle State = iota
	CacheCheck
	CachedDisplay
	Invoking
	Success
	Failed
)

var stateNames = [...]string{
	Idle:          "idle",
	CacheCheck:    "cache_check",
	CachedDisplay: "cached_display",
	Invoking:      "invoking",
	Success:       "success",
	Failed:        "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Observer is notified of every state change.
type Observer func(from, to State)
