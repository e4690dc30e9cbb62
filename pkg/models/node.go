// Package models defines core node models for the workflow graph
package models

import (
	"maps"
	"slices"
)

// NodeType represents the kind of node placed on the canvas.
type NodeType string

const (
	NodeTypeTrigger   NodeType = "trigger"   // Starts a workflow
	NodeTypeAction    NodeType = "action"    // Does something
	NodeTypeCondition NodeType = "condition" // Branches
)

// NodeTypes lists every supported node type in display order.
var NodeTypes = []NodeType{NodeTypeTrigger, NodeTypeAction, NodeTypeCondition}

// IsValid reports whether t is a supported node type.
func (t NodeType) IsValid() bool {
	return slices.Contains(NodeTypes, t)
}

// Position is a point in canvas (world) coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns the position translated by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Sub returns the offset from other to p.
func (p Position) Sub(other Position) Position {
	return Position{X: p.X - other.X, Y: p.Y - other.Y}
}

// Node represents a node instance in a workflow.
type Node struct {
	ID          string         `json:"id"          validate:"required"`
	Type        NodeType       `json:"type"        validate:"required,oneof=trigger action condition"`
	Name        string         `json:"name"        validate:"required,min=2"`
	Description string         `json:"description" validate:"required,min=2"`
	Position    Position       `json:"position"`
	Data        map[string]any `json:"data"`
	// Connections holds the ids of the nodes this node points to. It behaves as a set.
	Connections []string `json:"connections"`
}

// HasConnection reports whether the node has an outgoing edge to target.
func (n *Node) HasConnection(target string) bool {
	return slices.Contains(n.Connections, target)
}

// Clone returns a deep copy of the node. Data values are copied shallowly.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}

	clone := *n
	clone.Data = maps.Clone(n.Data)
	clone.Connections = slices.Clone(n.Connections)

	if clone.Data == nil {
		clone.Data = make(map[string]any)
	}

	if clone.Connections == nil {
		clone.Connections = make([]string, 0)
	}

	return &clone
}

// Edge is a directed link between two nodes. Edges are derived from Node.Connections.
type Edge struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}
