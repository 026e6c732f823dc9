package deploystate

import (
	"context"
	"fmt"
)

// Backend defines the interface for deployed-state storage backends.
type Backend interface {
	// Read loads the deployed-state document from the backend.
	Read(ctx context.Context) (*Document, error)

	// Write saves the deployed-state document to the backend.
	Write(ctx context.Context, doc *Document) error

	// Lock acquires an exclusive lock on the deployed state.
	Lock() error

	// Unlock releases the lock on the deployed state.
	Unlock() error
}

// BackendConfig holds configuration for a deployed-state backend.
type BackendConfig struct {
	Type   string            `json:"type"` // "local", "s3"
	Config map[string]string `json:"config"`
}

// NewBackend creates a deployed-state backend from configuration. The path
// argument is the local document path, used by the default local backend.
func NewBackend(cfg *BackendConfig, path string) (Backend, error) {
	if cfg == nil {
		return NewManager(path), nil
	}

	switch cfg.Type {
	case "local", "":
		return NewManager(path), nil
	case "s3":
		return newS3Backend(cfg.Config)
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Type)
	}
}
