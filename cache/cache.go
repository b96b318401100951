package cache

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/vinayprograms/pagesum/state"
)

const (
	// MaxEntries is the size of the recency window.
	MaxEntries = 10

	// Key is the storage key of the list.
	Key = "summaries"
)

// ErrCorrupt is returned when the stored list cannot be decoded.
var ErrCorrupt = stderrors.New("cache: stored summaries are corrupt")

// Entry is one cached summary.
type Entry struct {
	URL       string    `json:"url"`
	Summary   string    `json:"summary"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache is the summary cache. It is the only writer of Key.
type Cache struct {
	kv  state.Store
	mu  sync.Mutex
	now func() time.Time
}

// New creates a cache over kv.
func New(kv state.Store) *Cache {
	return &Cache{kv: kv, now: time.Now}
}

// Lookup returns the entry for url, if any.
func (c *Cache) Lookup(url string) (Entry, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read()
	if err != nil {
		return Entry{}, false, err
	}
	for _, e := range entries {
		if e.URL == url {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

// Record stores text as the summary for url. Any previous entry for url is
// dropped, the new one goes to the end, and the oldest entries are evicted
// beyond MaxEntries. A corrupt stored list is replaced.
func (c *Cache) Record(url, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, err := c.read()
	if err != nil && !stderrors.Is(err, ErrCorrupt) {
		return err
	}

	kept := make([]Entry, 0, len(entries)+1)
	for _, e := range entries {
		if e.URL != url {
			kept = append(kept, e)
		}
	}
	kept = append(kept, Entry{URL: url, Summary: text, Timestamp: c.now()})
	for len(kept) > MaxEntries {
		kept = kept[1:]
	}

	return c.write(kept)
}

// Entries returns all cached entries, oldest first.
func (c *Cache) Entries() ([]Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read()
}

// Clear removes every entry.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Delete(Key)
}

func (c *Cache) read() ([]Entry, error) {
	raw, err := c.kv.Get(Key)
	if stderrors.Is(err, state.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache: read: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return entries, nil
}

func (c *Cache) write(entries []Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := c.kv.Put(Key, raw); err != nil {
		return fmt.Errorf("cache: write: %w", err)
	}
	return nil
}
