// Package models defines the core domain models for the visual workflow editor
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"   // Executable
	WorkflowStatusInactive WorkflowStatus = "inactive" // Paused by the user, not executable
	WorkflowStatusError    WorkflowStatus = "error"    // Last run failed, not executable
)

// IsValid reports whether s is a known workflow status.
func (s WorkflowStatus) IsValid() bool {
	switch s {
	case WorkflowStatusActive, WorkflowStatusInactive, WorkflowStatusError:
		return true
	default:
		return false
	}
}

// Workflow is a named graph of typed nodes. Edges live on the nodes as outgoing connections.
type Workflow struct {
	ID          string         `json:"id"          validate:"required"`
	Name        string         `json:"name"        validate:"required,min=2"`
	Description string         `json:"description" validate:"required,min=2"`
	Status      WorkflowStatus `json:"status"      validate:"required,oneof=active inactive error"`
	LastRun     *time.Time     `json:"last_run"`
	Nodes       []*Node        `json:"nodes"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NodeByID returns the node with the given id and its index, or nil and -1.
func (w *Workflow) NodeByID(id string) (*Node, int) {
	for i, node := range w.Nodes {
		if node.ID == id {
			return node, i
		}
	}

	return nil, -1
}

// HasNode reports whether a node with the given id exists in the workflow.
func (w *Workflow) HasNode(id string) bool {
	node, _ := w.NodeByID(id)

	return node != nil
}

// IsActive reports whether the workflow can be executed.
func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowStatusActive
}

// Edges returns every edge of the workflow in node order, then connection order.
// Connections pointing at unknown nodes are skipped.
func (w *Workflow) Edges() []Edge {
	edges := make([]Edge, 0)

	for _, node := range w.Nodes {
		for _, target := range node.Connections {
			if !w.HasNode(target) {
				continue
			}

			edges = append(edges, Edge{SourceID: node.ID, TargetID: target})
		}
	}

	return edges
}

// Clone returns a deep copy of the workflow.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w

	if w.LastRun != nil {
		lastRun := *w.LastRun
		clone.LastRun = &lastRun
	}

	clone.Nodes = make([]*Node, len(w.Nodes))
	for i, node := range w.Nodes {
		clone.Nodes[i] = node.Clone()
	}

	return &clone
}

// Summary builds the read-only card view of the workflow.
func (w *Workflow) Summary() WorkflowSummary {
	counts := map[NodeType]int{
		NodeTypeTrigger:   0,
		NodeTypeAction:    0,
		NodeTypeCondition: 0,
	}

	for _, node := range w.Nodes {
		counts[node.Type]++
	}

	var lastRun *time.Time
	if w.LastRun != nil {
		t := *w.LastRun
		lastRun = &t
	}

	return WorkflowSummary{
		ID:          w.ID,
		Name:        w.Name,
		Description: w.Description,
		Status:      w.Status,
		LastRun:     lastRun,
		NodeCount:   len(w.Nodes),
		NodeCounts:  counts,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

// WorkflowSummary is what the workflow list renders on each card.
type WorkflowSummary struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      WorkflowStatus   `json:"status"`
	LastRun     *time.Time       `json:"last_run"`
	NodeCount   int              `json:"node_count"`
	NodeCounts  map[NodeType]int `json:"node_counts"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}
