// Package state provides the key-value store behind preferences and the
// summary cache.
//
// Two backends implement Store:
//
//   - BoltStore: a bbolt file, the default for the CLI and server
//   - MemoryStore: in-process map, for tests and ephemeral runs
//
// # Usage
//
//	store, err := state.NewBoltStore(state.BoltConfig{Path: state.DefaultPath()})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	store.Put("pref.provider", []byte("claude"))
//	val, _ := store.Get("pref.provider")
//	keys, _ := store.Keys("pref.secret.*")
package state
