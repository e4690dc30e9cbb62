package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/dukex/flowcanvas/pkg/seed"
)

// seedWorkflows fills an empty store with the workflows of seedFile, or with the built-in mock
// workflows when seedFile is empty. Stores that already hold workflows are left alone.
func seedWorkflows(ctx context.Context, logger *slog.Logger, p persistence.Persistence, seedFile string) error {
	existing, err := p.WorkflowRepository().List(ctx, persistence.ListOptions{})
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	if len(existing) > 0 {
		logger.InfoContext(ctx, "Skipping seed, store is not empty", "workflows", len(existing))

		return nil
	}

	workflows, err := loadSeed(seedFile)
	if err != nil {
		return err
	}

	if err := seed.Into(ctx, p.WorkflowRepository(), workflows); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Seeded workflows", "workflows", len(workflows), "source", seedSource(seedFile))

	return nil
}

func loadSeed(seedFile string) ([]*models.Workflow, error) {
	if seedFile == "" {
		return seed.Default()
	}

	f, err := os.Open(seedFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	return seed.Load(f)
}

func seedSource(seedFile string) string {
	if seedFile == "" {
		return "builtin"
	}

	return seedFile
}
