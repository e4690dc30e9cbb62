package services

import (
	"context"

	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/forms"
	"github.com/dukex/flowcanvas/pkg/models"
	"github.com/dukex/flowcanvas/pkg/otelhelper"
	"github.com/dukex/flowcanvas/pkg/persistence"
	"go.opentelemetry.io/otel/attribute"
)

// Node handles graph edits on a workflow: nodes, connections and positions.
type Node struct {
	base
}

// NewNode creates a new node service.
func NewNode(persistence persistence.Persistence, publisher eventbus.EventPublisher, opts ...Option) *Node {
	return &Node{
		base: newBase("node-service", persistence, publisher, opts),
	}
}

// AddNode validates the form and adds a new unconnected node to the workflow.
func (n *Node) AddNode(ctx context.Context, workflowID string, form forms.NodeForm) (*models.Node, error) {
	ctx, span := n.span(ctx, "node.add", workflowID)
	defer span.End()

	node, err := form.Build(n.rand)
	if err != nil {
		return nil, n.fail(span, "AddNode", err)
	}

	span.SetAttributes(attribute.String(otelhelper.NodeIDKey, node.ID))

	workflow, err := n.mutate(ctx, workflowID, graphEdit(func(w *models.Workflow) error {
		return n.store.AddNode(w, node)
	}))
	if err != nil {
		return nil, n.fail(span, "AddNode", err)
	}

	n.publish(ctx, workflowID, events.NodeAdded{
		BaseEvent: n.event(events.NodeAddedEvent, workflow),
		NodeID:    node.ID,
		NodeName:  node.Name,
		NodeType:  node.Type,
	})

	return node, nil
}

// RemoveNode deletes a node and every connection into it.
func (n *Node) RemoveNode(ctx context.Context, workflowID, nodeID string) error {
	ctx, span := n.span(ctx, "node.remove", workflowID, attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	var name string

	workflow, err := n.mutate(ctx, workflowID, graphEdit(func(w *models.Workflow) error {
		if node, _ := w.NodeByID(nodeID); node != nil {
			name = node.Name
		}

		return n.store.RemoveNode(w, nodeID)
	}))
	if err != nil {
		return n.fail(span, "RemoveNode", err)
	}

	n.publish(ctx, workflowID, events.NodeRemoved{
		BaseEvent: n.event(events.NodeRemovedEvent, workflow),
		NodeID:    nodeID,
		NodeName:  name,
	})

	return nil
}

// Connect adds the edge source -> target. Connecting an existing edge changes nothing.
func (n *Node) Connect(ctx context.Context, workflowID, sourceID, targetID string) (*models.Workflow, error) {
	return n.setConnection(ctx, "Connect", workflowID, sourceID, targetID, true)
}

// Disconnect removes the edge source -> target. Removing a missing edge changes nothing.
func (n *Node) Disconnect(ctx context.Context, workflowID, sourceID, targetID string) (*models.Workflow, error) {
	return n.setConnection(ctx, "Disconnect", workflowID, sourceID, targetID, false)
}

func (n *Node) setConnection(ctx context.Context, op, workflowID, sourceID, targetID string, connect bool) (*models.Workflow, error) {
	ctx, span := n.span(ctx, "node.connection", workflowID,
		attribute.String(otelhelper.NodeIDKey, sourceID),
		attribute.String(otelhelper.TargetNodeIDKey, targetID),
	)
	defer span.End()

	changed := false

	workflow, err := n.mutate(ctx, workflowID, func(w *models.Workflow) (bool, error) {
		source, _ := w.NodeByID(sourceID)
		had := source != nil && source.HasConnection(targetID)

		var err error
		if connect {
			err = n.store.Connect(w, sourceID, targetID)
		} else {
			err = n.store.Disconnect(w, sourceID, targetID)
		}

		if err != nil {
			return false, err
		}

		changed = had != connect

		return changed, nil
	})
	if err != nil {
		return nil, n.fail(span, op, err)
	}

	if changed {
		n.publish(ctx, workflowID, events.ConnectionToggled{
			BaseEvent: n.event(events.ConnectionToggledEvent, workflow),
			SourceID:  sourceID,
			TargetID:  targetID,
			Connected: connect,
		})
	}

	return workflow, nil
}

// ToggleConnection removes the edge source -> target if it exists and adds it otherwise. It
// reports whether the edge exists afterwards.
func (n *Node) ToggleConnection(ctx context.Context, workflowID, sourceID, targetID string) (bool, error) {
	ctx, span := n.span(ctx, "node.toggle_connection", workflowID,
		attribute.String(otelhelper.NodeIDKey, sourceID),
		attribute.String(otelhelper.TargetNodeIDKey, targetID),
	)
	defer span.End()

	var connected bool

	workflow, err := n.mutate(ctx, workflowID, graphEdit(func(w *models.Workflow) error {
		var err error
		connected, err = n.store.ToggleConnection(w, sourceID, targetID)

		return err
	}))
	if err != nil {
		return false, n.fail(span, "ToggleConnection", err)
	}

	n.publish(ctx, workflowID, events.ConnectionToggled{
		BaseEvent: n.event(events.ConnectionToggledEvent, workflow),
		SourceID:  sourceID,
		TargetID:  targetID,
		Connected: connected,
	})

	return connected, nil
}

// MoveNode sets a node's position. Moving a node to where it already is changes nothing.
func (n *Node) MoveNode(ctx context.Context, workflowID, nodeID string, position models.Position) (*models.Node, error) {
	ctx, span := n.span(ctx, "node.move", workflowID, attribute.String(otelhelper.NodeIDKey, nodeID))
	defer span.End()

	moved := false

	workflow, err := n.mutate(ctx, workflowID, func(w *models.Workflow) (bool, error) {
		node, _ := w.NodeByID(nodeID)
		if node != nil && node.Position == position {
			return false, nil
		}

		if err := n.store.MoveNode(w, nodeID, position); err != nil {
			return false, err
		}

		moved = true

		return true, nil
	})
	if err != nil {
		return nil, n.fail(span, "MoveNode", err)
	}

	node, _ := workflow.NodeByID(nodeID)

	if moved {
		n.publish(ctx, workflowID, events.NodeMoved{
			BaseEvent: n.event(events.NodeMovedEvent, workflow),
			NodeID:    nodeID,
			Position:  position,
		})
	}

	return node, nil
}
