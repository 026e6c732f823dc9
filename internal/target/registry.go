package target

import (
	"encoding/json"
	"fmt"
	"os"
)

// Target is one deployment destination: a named (account, region) pair.
// Targets are immutable for the duration of a reconciliation run.
type Target struct {
	Name    string `json:"name"`
	Account string `json:"account"`
	Region  string `json:"region"`
}

// Registry holds the declared deployment targets, keyed by name.
type Registry struct {
	targets []Target
	byName  map[string]Target
}

// Load reads the target registry document (a JSON array) from path.
// A missing file yields an empty registry.
func Load(path string) (*Registry, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Registry{byName: map[string]Target{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read target registry %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse builds a registry from the raw registry document.
func Parse(raw []byte) (*Registry, error) {
	var targets []Target
	if err := json.Unmarshal(raw, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse target registry: %w", err)
	}

	reg := &Registry{
		targets: targets,
		byName:  make(map[string]Target, len(targets)),
	}
	for _, t := range targets {
		if err := t.validate(); err != nil {
			return nil, err
		}
		if _, exists := reg.byName[t.Name]; exists {
			return nil, fmt.Errorf("duplicate target name %q in registry", t.Name)
		}
		reg.byName[t.Name] = t
	}
	return reg, nil
}

func (t Target) validate() error {
	if t.Name == "" {
		return fmt.Errorf("target with empty name in registry")
	}
	if len(t.Account) != 12 {
		return fmt.Errorf("target %q: account must be a 12-digit account ID, got %q", t.Name, t.Account)
	}
	for _, c := range t.Account {
		if c < '0' || c > '9' {
			return fmt.Errorf("target %q: account must be a 12-digit account ID, got %q", t.Name, t.Account)
		}
	}
	if t.Region == "" {
		return fmt.Errorf("target %q: region is required", t.Name)
	}
	return nil
}

// Lookup returns the target with the given name.
func (r *Registry) Lookup(name string) (Target, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// All returns the registered targets in document order.
func (r *Registry) All() []Target {
	return r.targets
}
