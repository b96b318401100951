package provider

import (
	"strings"

	"github.com/vinayprograms/pagesum/errors"
)

// ID identifies a provider. Only the constants below are valid.
type ID string

const (
	OpenAI   ID = "openai"
	Claude   ID = "claude"
	DeepSeek ID = "deepseek"
)

// String returns the id as stored in preferences.
func (id ID) String() string {
	return string(id)
}

// Model describes one selectable model of a provider.
type Model struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Provider is an immutable registry entry.
type Provider struct {
	ID      ID      `json:"id"`
	Name    string  `json:"name"`
	Models  []Model `json:"models"`
	Default string  `json:"default"`
}

// Registry order is significant: the first entry is the fallback.
var registry = []Provider{
	{
		ID:   OpenAI,
		Name: "OpenAI",
		Models: []Model{
			{ID: "gpt-4o-mini", Label: "GPT-4o mini"},
			{ID: "gpt-4.1-mini", Label: "GPT-4.1 mini"},
			{ID: "gpt-4.1-nano", Label: "GPT-4.1 nano"},
			{ID: "gpt-4o", Label: "GPT-4o"},
			{ID: "gpt-4.1", Label: "GPT-4.1"},
			{ID: "o3", Label: "o3"},
			{ID: "o3-mini", Label: "o3-mini"},
			{ID: "o4-mini", Label: "o4-mini"},
		},
		Default: "gpt-4o-mini",
	},
	{
		ID:   Claude,
		Name: "Claude",
		Models: []Model{
			{ID: "claude-3-5-haiku-latest", Label: "Haiku 3.5"},
			{ID: "claude-3-7-sonnet-latest", Label: "Sonnet 3.7"},
			{ID: "claude-sonnet-4-20250514", Label: "Sonnet 4"},
			{ID: "claude-opus-4-20250514", Label: "Opus 4"},
		},
		Default: "claude-3-5-haiku-latest",
	},
	{
		ID:   DeepSeek,
		Name: "DeepSeek",
		Models: []Model{
			{ID: "deepseek-chat", Label: "V3"},
			{ID: "deepseek-reasoner", Label: "R1"},
		},
		Default: "deepseek-chat",
	},
}

// List returns all providers in registry order.
func List() []Provider {
	out := make([]Provider, len(registry))
	for i, p := range registry {
		out[i] = p.clone()
	}
	return out
}

// IDs returns the provider ids in registry order.
func IDs() []ID {
	ids := make([]ID, len(registry))
	for i, p := range registry {
		ids[i] = p.ID
	}
	return ids
}

// Lookup returns the registry entry for id.
func Lookup(id ID) (Provider, error) {
	for _, p := range registry {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Provider{}, errors.UnknownProvider(string(id))
}

// Known reports whether id is in the registry.
func Known(id ID) bool {
	_, err := Lookup(id)
	return err == nil
}

// Models returns the ordered model list for id.
func Models(id ID) ([]Model, error) {
	p, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return p.Models, nil
}

// DefaultModel returns the model used when none is selected.
func DefaultModel(id ID) (Model, error) {
	p, err := Lookup(id)
	if err != nil {
		return Model{}, err
	}
	for _, m := range p.Models {
		if m.ID == p.Default {
			return m, nil
		}
	}
	// unreachable while every Default is listed
	return Model{ID: p.Default, Label: p.Default}, nil
}

// Fallback is the provider used when the stored choice is missing or unknown.
func Fallback() Provider {
	return registry[0].clone()
}

// Name returns the display name for id, or the raw id if unknown.
func Name(id ID) string {
	if p, err := Lookup(id); err == nil {
		return p.Name
	}
	return string(id)
}

// ParseID normalizes s (trimmed, case-insensitive) into a registry id.
// Display names are accepted too.
func ParseID(s string) (ID, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, p := range registry {
		if string(p.ID) == norm || strings.ToLower(p.Name) == norm {
			return p.ID, nil
		}
	}
	return "", errors.UnknownProvider(s)
}

// ParseSelection splits a "provider:model" override such as
// "claude:claude-opus-4-20250514". The model part may be empty, meaning the
// provider default. Model ids are not checked against the list so that new
// models can be used before the registry knows them.
func ParseSelection(s string) (ID, string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", "", errors.InvalidInput("empty model selection")
	}
	prov, model, _ := strings.Cut(s, ":")
	id, err := ParseID(prov)
	if err != nil {
		return "", "", err
	}
	return id, strings.TrimSpace(model), nil
}

// HasModel reports whether model is one of p's listed models.
func (p Provider) HasModel(model string) bool {
	for _, m := range p.Models {
		if m.ID == model {
			return true
		}
	}
	return false
}

func (p Provider) clone() Provider {
	models := make([]Model, len(p.Models))
	copy(models, p.Models)
	p.Models = models
	return p
}
