// Package graph owns every mutation of a workflow's node/edge graph and enforces its invariants:
// unique node ids, no self-loops, no dangling edges and no duplicate edges.
package graph

import (
	"slices"
	"time"

	"github.com/dukex/flowcanvas/pkg/models"
)

// Store applies graph mutations to workflows. It holds no workflow state of its own.
type Store struct {
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new graph store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		now: func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Now returns the store's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

func (s *Store) touch(w *models.Workflow) {
	w.UpdatedAt = s.now()
}

// AddNode appends node to the workflow. The node id must be new and its connections must
// point at existing nodes other than itself.
func (s *Store) AddNode(w *models.Workflow, node *models.Node) error {
	if w == nil {
		return ErrNilWorkflow
	}

	if node == nil || node.ID == "" {
		return &Error{Op: "AddNode", WorkflowID: w.ID, Err: ErrInvariantViolation}
	}

	if w.HasNode(node.ID) {
		return &Error{Op: "AddNode", WorkflowID: w.ID, NodeID: node.ID, Err: ErrDuplicateNode}
	}

	connections := make([]string, 0, len(node.Connections))

	for _, target := range node.Connections {
		if target == node.ID || !w.HasNode(target) {
			return &Error{Op: "AddNode", WorkflowID: w.ID, NodeID: node.ID, TargetID: target, Err: ErrInvalidEdge}
		}

		if !slices.Contains(connections, target) {
			connections = append(connections, target)
		}
	}

	node.Connections = connections

	if node.Data == nil {
		node.Data = make(map[string]any)
	}

	w.Nodes = append(w.Nodes, node)
	s.touch(w)

	return nil
}

// RemoveNode deletes the node and every edge that references it.
func (s *Store) RemoveNode(w *models.Workflow, nodeID string) error {
	if w == nil {
		return ErrNilWorkflow
	}

	_, idx := w.NodeByID(nodeID)
	if idx < 0 {
		return &Error{Op: "RemoveNode", WorkflowID: w.ID, NodeID: nodeID, Err: ErrNodeNotFound}
	}

	w.Nodes = slices.Delete(w.Nodes, idx, idx+1)

	for _, node := range w.Nodes {
		node.Connections = slices.DeleteFunc(node.Connections, func(target string) bool {
			return target == nodeID
		})
	}

	s.touch(w)

	return nil
}

// Connect adds the edge source->target. Connecting an existing edge is a no-op.
func (s *Store) Connect(w *models.Workflow, sourceID, targetID string) error {
	if w == nil {
		return ErrNilWorkflow
	}

	if sourceID == targetID {
		return &Error{Op: "Connect", WorkflowID: w.ID, NodeID: sourceID, TargetID: targetID, Err: ErrInvalidEdge}
	}

	source, _ := w.NodeByID(sourceID)
	if source == nil {
		return &Error{Op: "Connect", WorkflowID: w.ID, NodeID: sourceID, TargetID: targetID, Err: ErrNodeNotFound}
	}

	if !w.HasNode(targetID) {
		return &Error{Op: "Connect", WorkflowID: w.ID, NodeID: targetID, Err: ErrNodeNotFound}
	}

	if source.HasConnection(targetID) {
		return nil
	}

	source.Connections = append(source.Connections, targetID)
	s.touch(w)

	return nil
}

// Disconnect removes the edge source->target if it exists.
func (s *Store) Disconnect(w *models.Workflow, sourceID, targetID string) error {
	if w == nil {
		return ErrNilWorkflow
	}

	source, _ := w.NodeByID(sourceID)
	if source == nil || !source.HasConnection(targetID) {
		return nil
	}

	source.Connections = slices.DeleteFunc(source.Connections, func(target string) bool {
		return target == targetID
	})
	s.touch(w)

	return nil
}

// ToggleConnection removes the edge if present, otherwise adds it.
// It reports whether the edge exists afterwards.
func (s *Store) ToggleConnection(w *models.Workflow, sourceID, targetID string) (bool, error) {
	if w == nil {
		return false, ErrNilWorkflow
	}

	source, _ := w.NodeByID(sourceID)
	if source != nil && source.HasConnection(targetID) {
		return false, s.Disconnect(w, sourceID, targetID)
	}

	if err := s.Connect(w, sourceID, targetID); err != nil {
		return false, err
	}

	return true, nil
}

// MoveNode commits a node position. Moving a node onto its current position changes nothing.
func (s *Store) MoveNode(w *models.Workflow, nodeID string, position models.Position) error {
	if w == nil {
		return ErrNilWorkflow
	}

	node, _ := w.NodeByID(nodeID)
	if node == nil {
		return &Error{Op: "MoveNode", WorkflowID: w.ID, NodeID: nodeID, Err: ErrNodeNotFound}
	}

	if node.Position == position {
		return nil
	}

	node.Position = position
	s.touch(w)

	return nil
}

// Validate checks every graph invariant of w, returning the first violation found.
func Validate(w *models.Workflow) error {
	if w == nil {
		return ErrNilWorkflow
	}

	seen := make(map[string]bool, len(w.Nodes))

	for _, node := range w.Nodes {
		if node == nil || node.ID == "" {
			return &Error{Op: "Validate", WorkflowID: w.ID, Err: ErrInvariantViolation}
		}

		if seen[node.ID] {
			return &Error{Op: "Validate", WorkflowID: w.ID, NodeID: node.ID, Err: ErrDuplicateNode}
		}

		seen[node.ID] = true
	}

	for _, node := range w.Nodes {
		targets := make(map[string]bool, len(node.Connections))

		for _, target := range node.Connections {
			if target == node.ID || !seen[target] || targets[target] {
				return &Error{Op: "Validate", WorkflowID: w.ID, NodeID: node.ID, TargetID: target, Err: ErrInvalidEdge}
			}

			targets[target] = true
		}
	}

	return nil
}
