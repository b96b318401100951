// Package provider is the built-in registry of LLM services pagesum can
// summarize with. The set is closed: OpenAI, Claude and DeepSeek, each
// with an ordered model list and a default model.
//
//	p, err := provider.Lookup(provider.Claude)
//	id, model, err := provider.ParseSelection("claude:claude-opus-4-20250514")
//
// An id outside the registry fails with UNKNOWN_PROVIDER.
package provider
