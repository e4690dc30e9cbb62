// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/google/uuid"
)

// FixedTime is the creation time used by the builders.
var FixedTime = time.Date(2025, 3, 15, 10, 20, 0, 0, time.UTC)

// CreateTestNode creates a test Node with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.Node)) *models.Node {
	node := &models.Node{
		ID:          uuid.New().String(),
		Type:        models.NodeTypeAction,
		Name:        "Test Node",
		Description: "A node used in tests",
		Position:    models.Position{X: 100, Y: 200},
		Data:        map[string]any{},
		Connections: []string{},
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node id.
func WithID(id string) func(*models.Node) {
	return func(n *models.Node) {
		n.ID = id
	}
}

// WithType sets the node type.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
	}
}

// WithPosition sets the node position.
func WithPosition(x, y float64) func(*models.Node) {
	return func(n *models.Node) {
		n.Position = models.Position{X: x, Y: y}
	}
}

// WithConnections sets the node's outgoing connections.
func WithConnections(targets ...string) func(*models.Node) {
	return func(n *models.Node) {
		n.Connections = append([]string{}, targets...)
	}
}

// CreateTestWorkflow creates an inactive test Workflow holding the given nodes.
func CreateTestWorkflow(id string, nodes ...*models.Node) *models.Workflow {
	if nodes == nil {
		nodes = []*models.Node{}
	}

	return &models.Workflow{
		ID:          id,
		Name:        "Test Workflow",
		Description: "A workflow used in tests",
		Status:      models.WorkflowStatusInactive,
		Nodes:       nodes,
		CreatedAt:   FixedTime,
		UpdatedAt:   FixedTime,
	}
}

// CreateLinearWorkflow creates node1 (trigger) -> node2 (action) -> node3 (action),
// laid out left to right 300 units apart.
func CreateLinearWorkflow(id string) *models.Workflow {
	return CreateTestWorkflow(id,
		CreateTestNode(WithID("node1"), WithType(models.NodeTypeTrigger), WithPosition(100, 100), WithConnections("node2")),
		CreateTestNode(WithID("node2"), WithPosition(400, 100), WithConnections("node3")),
		CreateTestNode(WithID("node3"), WithPosition(700, 100)),
	)
}
