// Package cache keeps the most recent summaries, one per page URL.
//
// The whole list is stored under a single state key as a JSON array,
// oldest first, and rewritten on every Record. Recording a URL again
// replaces its entry and moves it to the end. At most MaxEntries are kept.
//
// # Usage
//
//	c := cache.New(store)
//	if err := c.Record(pageURL, summary); err != nil {
//	    return err
//	}
//	entry, ok, err := c.Lookup(pageURL)
//
// Search runs a full-text query over the kept summaries with an in-memory
// bleve index built per call; an empty query lists entries newest first.
package cache
