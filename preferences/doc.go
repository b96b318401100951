// Package preferences holds the user's provider choice, per-provider API
// keys and custom instruction, and resolves them into the concrete
// selection a summarize run uses.
//
// Resolve never fails for a missing key: the Selection carries an empty
// Secret and the caller decides. Keys from credentials.toml and the
// environment fill in only where nothing is stored.
package preferences
