package preferences

import (
	"strings"

	"github.com/vinayprograms/pagesum/credentials"
	"github.com/vinayprograms/pagesum/provider"
)

// DefaultInstruction is used when no custom instruction is set.
const DefaultInstruction = "Summarize the following text by first telling me what this text is about and then bullet points of the key points."

// Preferences is the stored configuration. Zero values mean "not set".
type Preferences struct {
	Provider          provider.ID            `json:"provider"`
	Model             string                 `json:"model"`
	Secrets           map[provider.ID]string `json:"-"`
	CustomInstruction string                 `json:"instruction"`
}

// Selection is the fully resolved choice for one run.
type Selection struct {
	Provider    provider.ID
	Model       string
	Secret      string
	Instruction string
}

// Resolve fills every gap in p with a default:
//   - an empty or unknown provider becomes provider.Fallback()
//   - an empty model becomes the provider's default model
//   - a blank instruction becomes DefaultInstruction
//
// A missing secret is not an error here; the caller decides.
func Resolve(p Preferences) (Selection, error) {
	id := p.Provider
	if !provider.Known(id) {
		id = provider.Fallback().ID
	}

	model := strings.TrimSpace(p.Model)
	if model == "" {
		m, err := provider.DefaultModel(id)
		if err != nil {
			return Selection{}, err
		}
		model = m.ID
	}

	instruction := p.CustomInstruction
	if strings.TrimSpace(instruction) == "" {
		instruction = DefaultInstruction
	}

	return Selection{
		Provider:    id,
		Model:       model,
		Secret:      p.Secrets[id],
		Instruction: instruction,
	}, nil
}

// Override switches provider and model for a single run. An empty model
// selects the new provider's default. A model stored for a different
// provider is never carried over.
func (p Preferences) Override(id provider.ID, model string) Preferences {
	out := p.clone()
	out.Provider = id
	out.Model = model
	return out
}

// WithInstruction replaces the custom instruction for a single run.
func (p Preferences) WithInstruction(instruction string) Preferences {
	out := p.clone()
	out.CustomInstruction = instruction
	return out
}

// Secret returns the configured key for id, or "".
func (p Preferences) Secret(id provider.ID) string {
	return p.Secrets[id]
}

// AnySecret reports whether at least one provider has a key.
func (p Preferences) AnySecret() bool {
	for _, s := range p.Secrets {
		if s != "" {
			return true
		}
	}
	return false
}

// MergeCredentials fills providers that have no stored key from creds
// (credentials.toml or environment). Stored keys always win.
func MergeCredentials(p Preferences, creds *credentials.Credentials) Preferences {
	out := p.clone()
	for _, id := range provider.IDs() {
		if out.Secrets[id] != "" {
			continue
		}
		if key := creds.GetAPIKey(id); key != "" {
			out.Secrets[id] = key
		}
	}
	return out
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

func (p Preferences) clone() Preferences {
	secrets := make(map[provider.ID]string, len(p.Secrets))
	for k, v := range p.Secrets {
		secrets[k] = v
	}
	p.Secrets = secrets
	return p
}
