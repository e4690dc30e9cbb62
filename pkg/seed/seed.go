// Package seed loads workflows from a YAML document. The editor's mock workflows are embedded
// and loaded through the same path.
package seed

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dukex/flowcanvas/pkg/graph"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed workflows.yaml
var defaultWorkflows []byte

//go:embed schema.json
var schema []byte

// ErrInvalidSeed is returned for seed documents that fail schema or graph validation.
var ErrInvalidSeed = errors.New("invalid seed")

type document struct {
	Workflows []workflow `yaml:"workflows"`
}

type workflow struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Status      string  `yaml:"status"`
	LastRun     *string `yaml:"last_run"`
	CreatedAt   string  `yaml:"created_at"`
	UpdatedAt   string  `yaml:"updated_at"`
	Nodes       []node  `yaml:"nodes"`
}

type node struct {
	ID          string          `yaml:"id"`
	Type        string          `yaml:"type"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Position    models.Position `yaml:"position"`
	Data        map[string]any  `yaml:"data"`
	Connections []string        `yaml:"connections"`
}

// Default returns the embedded mock workflows.
func Default() ([]*models.Workflow, error) {
	return Load(bytes.NewReader(defaultWorkflows))
}

// Load parses a seed document. The document is checked against the seed schema and every
// workflow must satisfy the graph invariants.
func Load(r io.Reader) ([]*models.Workflow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	if err := validateSchema(generic); err != nil {
		return nil, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	workflows := make([]*models.Workflow, 0, len(doc.Workflows))
	seen := make(map[string]bool, len(doc.Workflows))

	for _, w := range doc.Workflows {
		if seen[w.ID] {
			return nil, fmt.Errorf("%w: duplicate workflow id %q", ErrInvalidSeed, w.ID)
		}

		seen[w.ID] = true

		workflow, err := w.model()
		if err != nil {
			return nil, fmt.Errorf("%w: workflow %q: %w", ErrInvalidSeed, w.ID, err)
		}

		if err := graph.Validate(workflow); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSeed, err)
		}

		workflows = append(workflows, workflow)
	}

	return workflows, nil
}

// Into saves workflows to repo.
func Into(ctx context.Context, repo persistence.WorkflowRepository, workflows []*models.Workflow) error {
	for _, workflow := range workflows {
		if err := repo.Save(ctx, workflow); err != nil {
			return fmt.Errorf("failed to seed workflow %s: %w", workflow.ID, err)
		}
	}

	return nil
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSeed, err)
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}

		return fmt.Errorf("%w: %s", ErrInvalidSeed, strings.Join(errs, "; "))
	}

	return nil
}

func (w workflow) model() (*models.Workflow, error) {
	createdAt, err := time.Parse(time.RFC3339, w.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}

	updatedAt, err := time.Parse(time.RFC3339, w.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("updated_at: %w", err)
	}

	var lastRun *time.Time

	if w.LastRun != nil {
		t, err := time.Parse(time.RFC3339, *w.LastRun)
		if err != nil {
			return nil, fmt.Errorf("last_run: %w", err)
		}

		lastRun = &t
	}

	nodes := make([]*models.Node, 0, len(w.Nodes))
	for _, n := range w.Nodes {
		nodes = append(nodes, n.model())
	}

	return &models.Workflow{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Status:      models.WorkflowStatus(w.Status),
		LastRun:     lastRun,
		Nodes:       nodes,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}

func (n node) model() *models.Node {
	data := n.Data
	if data == nil {
		data = map[string]any{}
	}

	connections := n.Connections
	if connections == nil {
		connections = []string{}
	}

	return &models.Node{
		ID:          n.ID,
		Type:        models.NodeType(n.Type),
		Name:        n.Name,
		Description: n.Description,
		Position:    n.Position,
		Data:        data,
		Connections: connections,
	}
}
