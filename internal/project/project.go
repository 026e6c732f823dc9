package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ConfigFileName is the project manifest read from the project root.
const ConfigFileName = "agentctl.json"

// Agent declares one agent application in the project.
type Agent struct {
	Name      string `json:"name"`
	Entry     string `json:"entry"`
	Framework string `json:"framework,omitempty"`
}

// Package is the synthesized-input view of a project: the manifest plus the
// root directory the toolchain synthesizes from. Scaffolding and packaging
// happen upstream; the reconciler only carries this through to the toolchain.
type Package struct {
	Name   string  `json:"name"`
	Agents []Agent `json:"agents"`

	Root string `json:"-"`
}

// Load reads the project manifest from root.
func Load(root string) (*Package, error) {
	path := filepath.Join(root, ConfigFileName)
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project manifest %s: %w", path, err)
	}

	var pkg Package
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse project manifest %s: %w", path, err)
	}
	pkg.Root = root
	return &pkg, nil
}

// AgentNames returns the declared agent names in manifest order.
func (p *Package) AgentNames() []string {
	names := make([]string, 0, len(p.Agents))
	for _, a := range p.Agents {
		names = append(names, a.Name)
	}
	return names
}

// Validator is the preflight seam run before synthesis. Full schema and
// resource-graph validation happens upstream; implementations here only
// sanity-check what a deploy cannot proceed without.
type Validator interface {
	Validate(ctx context.Context, pkg *Package) error
}

// Preflight is the default Validator: project name present, agent names
// unique, entry files on disk.
type Preflight struct{}

func (Preflight) Validate(ctx context.Context, pkg *Package) error {
	if pkg.Name == "" {
		return fmt.Errorf("project manifest has no name")
	}
	if len(pkg.Agents) == 0 {
		return fmt.Errorf("project %q declares no agents", pkg.Name)
	}

	seen := make(map[string]bool, len(pkg.Agents))
	for _, a := range pkg.Agents {
		if a.Name == "" {
			return fmt.Errorf("project %q declares an agent with no name", pkg.Name)
		}
		if seen[a.Name] {
			return fmt.Errorf("project %q declares agent %q twice", pkg.Name, a.Name)
		}
		seen[a.Name] = true

		if a.Entry == "" {
			continue
		}
		entry := filepath.Join(pkg.Root, a.Entry)
		if _, err := os.Stat(entry); err != nil {
			return fmt.Errorf("agent %q entry point %s: %w", a.Name, entry, err)
		}
	}
	return nil
}
