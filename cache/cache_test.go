package cache

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/vinayprograms/pagesum/state"
)

func newTestCache() (*Cache, *state.MemoryStore) {
	kv := state.NewMemoryStore()
	c := New(kv)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	c.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
	return c, kv
}

func TestLookup_Empty(t *testing.T) {
	c, _ := newTestCache()
	_, ok, err := c.Lookup("https://example.com")
	if err != nil || ok {
		t.Errorf("Lookup on empty cache = %v, %v", ok, err)
	}
}

func TestRecord_ThenLookup(t *testing.T) {
	c, _ := newTestCache()
	if err := c.Record("https://example.com", "<p>hi</p>"); err != nil {
		t.Fatal(err)
	}
	e, ok, err := c.Lookup("https://example.com")
	if err != nil || !ok {
		t.Fatalf("Lookup = %v, %v", ok, err)
	}
	if e.Summary != "<p>hi</p>" || e.Timestamp.IsZero() {
		t.Errorf("entry = %+v", e)
	}
}

func TestRecord_ReplacesSameURL(t *testing.T) {
	c, _ := newTestCache()
	c.Record("u", "a")
	c.Record("other", "x")
	c.Record("u", "b")

	entries, _ := c.Entries()
	count := 0
	for _, e := range entries {
		if e.URL == "u" {
			count++
			if e.Summary != "b" {
				t.Errorf("summary = %q, want b", e.Summary)
			}
		}
	}
	if count != 1 {
		t.Errorf("found %d entries for u, want 1", count)
	}
	if entries[len(entries)-1].URL != "u" {
		t.Error("re-recorded URL should move to the end")
	}
}

func TestRecord_EvictsOldest(t *testing.T) {
	for _, n := range []int{11, 15, 25} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			c, _ := newTestCache()
			for i := 0; i < n; i++ {
				if err := c.Record(fmt.Sprintf("https://site/%d", i), fmt.Sprintf("s%d", i)); err != nil {
					t.Fatal(err)
				}
			}
			for i := 0; i < n; i++ {
				_, ok, _ := c.Lookup(fmt.Sprintf("https://site/%d", i))
				want := i >= n-MaxEntries
				if ok != want {
					t.Errorf("Lookup(%d) = %v, want %v", i, ok, want)
				}
			}
			entries, _ := c.Entries()
			if len(entries) != MaxEntries {
				t.Errorf("len = %d, want %d", len(entries), MaxEntries)
			}
			if entries[0].URL != fmt.Sprintf("https://site/%d", n-MaxEntries) {
				t.Errorf("oldest = %s", entries[0].URL)
			}
		})
	}
}

func TestRecord_ReplacementDoesNotEvict(t *testing.T) {
	c, _ := newTestCache()
	for i := 0; i < MaxEntries; i++ {
		c.Record(fmt.Sprintf("u%d", i), "x")
	}
	c.Record("u0", "again")
	entries, _ := c.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("len = %d", len(entries))
	}
	if _, ok, _ := c.Lookup("u1"); !ok {
		t.Error("u1 should survive a replacement of u0")
	}
}

func TestPersistedFormat(t *testing.T) {
	c, kv := newTestCache()
	c.Record("https://a", "A")

	raw, err := kv.Get(Key)
	if err != nil {
		t.Fatal(err)
	}
	want := `[{"url":"https://a","summary":"A","timestamp":"2025-06-01T12:00:01Z"}]`
	if string(raw) != want {
		t.Errorf("stored = %s\nwant     %s", raw, want)
	}

	again := New(kv)
	e, ok, _ := again.Lookup("https://a")
	if !ok || e.Summary != "A" {
		t.Error("a second cache over the same store should see the entry")
	}
}

func TestCorruptList(t *testing.T) {
	c, kv := newTestCache()
	kv.Put(Key, []byte("{not json"))

	if _, _, err := c.Lookup("u"); !errors.Is(err, ErrCorrupt) {
		t.Errorf("Lookup err = %v, want ErrCorrupt", err)
	}
	if err := c.Record("u", "fresh"); err != nil {
		t.Fatalf("Record should replace a corrupt list: %v", err)
	}
	e, ok, err := c.Lookup("u")
	if err != nil || !ok || e.Summary != "fresh" {
		t.Errorf("after repair: %+v %v %v", e, ok, err)
	}
}

func TestStoreFailure(t *testing.T) {
	kv := state.NewMemoryStore()
	c := New(kv)
	kv.Close()
	if err := c.Record("u", "x"); !errors.Is(err, state.ErrClosed) {
		t.Errorf("Record err = %v, want ErrClosed", err)
	}
}

func TestClear(t *testing.T) {
	c, _ := newTestCache()
	c.Record("u", "x")
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ := c.Entries()
	if len(entries) != 0 {
		t.Errorf("entries after Clear = %v", entries)
	}
}
