// Package credentials loads provider API keys from a credentials.toml file
// or the environment.
//
//	[openai]
//	api_key = "sk-..."
//
//	[claude]          # [anthropic] is accepted too
//	api_key = "sk-ant-..."
//
//	[deepseek]
//	api_key = "sk-..."
package credentials

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vinayprograms/pagesum/provider"
)

// ErrInsecurePermissions is returned when credentials file has overly permissive permissions.
var ErrInsecurePermissions = fmt.Errorf("credentials file has insecure permissions")

// Credentials holds API keys keyed by provider.
type Credentials struct {
	keys map[provider.ID]string
}

// ProviderCreds is one [section] of the file.
type ProviderCreds struct {
	APIKey string `toml:"api_key"`
}

type file struct {
	OpenAI    *ProviderCreds `toml:"openai"`
	Claude    *ProviderCreds `toml:"claude"`
	Anthropic *ProviderCreds `toml:"anthropic"`
	DeepSeek  *ProviderCreds `toml:"deepseek"`
}

// StandardPaths returns the standard credential file locations in order of priority.
func StandardPaths() []string {
	paths := []string{"credentials.toml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "pagesum", "credentials.toml"))
	}
	return paths
}

// Load loads credentials from the first available standard location.
// A missing file is not an error; the returned Credentials then only
// consults the environment.
func Load() (*Credentials, string, error) {
	for _, path := range StandardPaths() {
		if _, err := os.Stat(path); err == nil {
			creds, err := LoadFile(path)
			if err != nil {
				return nil, path, err
			}
			return creds, path, nil
		}
	}
	return &Credentials{}, "", nil
}

// LoadFile loads credentials from a specific file.
// Returns ErrInsecurePermissions if the file is not 0400.
func LoadFile(path string) (*Credentials, error) {
	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		mode := info.Mode().Perm()
		if mode != 0400 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must be 0400)",
				ErrInsecurePermissions, path, mode)
		}
	}

	var f file
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	creds := &Credentials{keys: make(map[provider.ID]string)}
	set := func(id provider.ID, pc *ProviderCreds) {
		if pc != nil && strings.TrimSpace(pc.APIKey) != "" {
			creds.keys[id] = strings.TrimSpace(pc.APIKey)
		}
	}
	set(provider.OpenAI, f.OpenAI)
	set(provider.Claude, f.Anthropic)
	set(provider.Claude, f.Claude) // [claude] wins over [anthropic]
	set(provider.DeepSeek, f.DeepSeek)
	return creds, nil
}

// GetAPIKey returns the API key for a provider.
// Priority: file section > environment variable.
func (c *Credentials) GetAPIKey(id provider.ID) string {
	if c != nil {
		if key, ok := c.keys[id]; ok {
			return key
		}
	}
	for _, name := range EnvVars(id) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// EnvVars returns the environment variables consulted for a provider, in order.
func EnvVars(id provider.ID) []string {
	switch id {
	case provider.OpenAI:
		return []string{"OPENAI_API_KEY"}
	case provider.Claude:
		return []string{"ANTHROPIC_API_KEY", "CLAUDE_API_KEY"}
	case provider.DeepSeek:
		return []string{"DEEPSEEK_API_KEY"}
	default:
		return []string{strings.ToUpper(strings.ReplaceAll(string(id), "-", "_")) + "_API_KEY"}
	}
}
