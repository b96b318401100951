package preferences

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vinayprograms/pagesum/provider"
	"github.com/vinayprograms/pagesum/state"
)

// Storage keys.
const (
	KeyProvider     = "pref.provider"
	KeyModel        = "pref.model"
	KeyInstruction  = "pref.instruction"
	KeySecretPrefix = "pref.secret."
)

// Store persists Preferences in a state.Store.
type Store struct {
	kv state.Store
}

// NewStore wraps kv.
func NewStore(kv state.Store) *Store {
	return &Store{kv: kv}
}

// Load reads the stored preferences. Missing keys stay zero.
// A stored provider id is kept verbatim even if unknown; Resolve decides.
func (s *Store) Load() (Preferences, error) {
	p := Preferences{Secrets: make(map[provider.ID]string)}

	prov, err := s.get(KeyProvider)
	if err != nil {
		return p, err
	}
	p.Provider = provider.ID(prov)

	if p.Model, err = s.get(KeyModel); err != nil {
		return p, err
	}
	if p.CustomInstruction, err = s.get(KeyInstruction); err != nil {
		return p, err
	}

	keys, err := s.kv.Keys(KeySecretPrefix + "*")
	if err != nil {
		return p, fmt.Errorf("list secrets: %w", err)
	}
	for _, k := range keys {
		v, err := s.get(k)
		if err != nil {
			return p, err
		}
		if v != "" {
			p.Secrets[provider.ID(strings.TrimPrefix(k, KeySecretPrefix))] = v
		}
	}
	return p, nil
}

// Save writes every field of p. Empty fields are deleted so that Load
// reports them as unset.
func (s *Store) Save(p Preferences) error {
	if err := s.set(KeyProvider, string(p.Provider)); err != nil {
		return err
	}
	if err := s.set(KeyModel, p.Model); err != nil {
		return err
	}
	if err := s.set(KeyInstruction, p.CustomInstruction); err != nil {
		return err
	}
	for id, secret := range p.Secrets {
		if err := s.SetSecret(id, secret); err != nil {
			return err
		}
	}
	return nil
}

// SetSecret stores (or with "" clears) the key for one provider.
func (s *Store) SetSecret(id provider.ID, secret string) error {
	if _, err := provider.Lookup(id); err != nil {
		return err
	}
	return s.set(KeySecretPrefix+string(id), strings.TrimSpace(secret))
}

func (s *Store) get(key string) (string, error) {
	v, err := s.kv.Get(key)
	if errors.Is(err, state.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return string(v), nil
}

func (s *Store) set(key, value string) error {
	var err error
	if value == "" {
		err = s.kv.Delete(key)
	} else {
		err = s.kv.Put(key, []byte(value))
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
