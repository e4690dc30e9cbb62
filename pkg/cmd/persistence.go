// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/persistence/file"
	"github.com/dukex/flowcanvas/pkg/persistence/memory"
)

// DefaultDatabaseURL keeps everything in memory.
const DefaultDatabaseURL = "memory://"

var supportedPersistenceProviders = []string{"memory", "file"}

// ErrUnsupportedProvider is returned for database URLs with an unknown scheme.
var ErrUnsupportedProvider = errors.New("unsupported persistence provider")

// NewPersistence opens the persistence layer named by databaseURL: memory:// or file://<dir>.
func NewPersistence(databaseURL string) (persistence.Persistence, error) {
	provider, err := parsePersistenceProvider(databaseURL)
	if err != nil {
		return nil, err
	}

	switch provider {
	case "file":
		root := strings.TrimPrefix(databaseURL, "file://")
		if root == "" {
			return nil, fmt.Errorf("%w: file:// needs a directory", ErrUnsupportedProvider)
		}

		if err := os.MkdirAll(root, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		return file.NewPersistence(root), nil
	default:
		return memory.NewPersistence(), nil
	}
}

func parsePersistenceProvider(databaseURL string) (string, error) {
	if databaseURL == "" {
		return "memory", nil
	}

	parts := strings.SplitN(databaseURL, "://", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, databaseURL)
	}

	for _, supported := range supportedPersistenceProviders {
		if parts[0] == supported {
			return supported, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedProvider, parts[0])
}
