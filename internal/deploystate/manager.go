package deploystate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Manager handles reading and writing of the deployed-state document on the
// local filesystem.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Read loads the deployed-state document from the configured path. If no
// document exists yet, an empty one is returned (first deploy ever). If the
// document is encrypted, it is transparently decrypted before parsing.
func (m *Manager) Read(ctx context.Context) (*Document, error) {
	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		return NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read deployed state %s: %w", m.path, err)
	}

	if IsEncrypted(raw) {
		raw, err = DecryptState(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt deployed state: %w", err)
		}
	}

	return ParseDocument(raw)
}

// Write persists the document, replacing the file as a whole. The document
// serial is compared against the serial currently on disk so a concurrent
// writer's update is not silently overwritten, then bumped. The write goes
// through a temp file and rename so a killed run never leaves a half-written
// document behind.
func (m *Manager) Write(ctx context.Context, doc *Document) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	current, err := m.Read(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-read deployed state before write: %w", err)
	}
	if current.Serial != doc.Serial {
		return fmt.Errorf("deployed state changed since it was read (serial %d on disk, %d in memory); re-run to pick up the latest state", current.Serial, doc.Serial)
	}

	out := *doc
	out.Serial = doc.Serial + 1

	content, err := EncodeDocument(&out)
	if err != nil {
		return err
	}

	encrypted, err := EncryptState(content)
	if err != nil {
		return fmt.Errorf("failed to encrypt deployed state: %w", err)
	}

	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, encrypted, 0644); err != nil {
		return fmt.Errorf("failed to write deployed state %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace deployed state %s: %w", m.path, err)
	}

	return nil
}
