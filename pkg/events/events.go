// Package events defines the notifications published when workflows and their graphs change.
package events

import (
	"time"

	"github.com/dukex/flowcanvas/pkg/models"
)

type EventType string

// Topic carries every flowcanvas event.
const Topic = "flowcanvas.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Workflow lifecycle events.
	WorkflowCreatedEvent          EventType = "workflow.created"
	WorkflowUpdatedEvent          EventType = "workflow.updated"
	WorkflowDeletedEvent          EventType = "workflow.deleted"
	WorkflowStatusToggledEvent    EventType = "workflow.status_toggled"
	WorkflowExecutedEvent         EventType = "workflow.executed"
	WorkflowExecutionRefusedEvent EventType = "workflow.execution_refused"
	WorkflowsExecutedAllEvent     EventType = "workflows.executed_all"

	// Graph edit events.
	NodeAddedEvent         EventType = "node.added"
	NodeRemovedEvent       EventType = "node.removed"
	NodeMovedEvent         EventType = "node.moved"
	ConnectionToggledEvent EventType = "connection.toggled"
)

// EventTypes lists every event type, in a stable order.
var EventTypes = []EventType{
	WorkflowCreatedEvent,
	WorkflowUpdatedEvent,
	WorkflowDeletedEvent,
	WorkflowStatusToggledEvent,
	WorkflowExecutedEvent,
	WorkflowExecutionRefusedEvent,
	WorkflowsExecutedAllEvent,
	NodeAddedEvent,
	NodeRemovedEvent,
	NodeMovedEvent,
	ConnectionToggledEvent,
}

type BaseEvent struct {
	ID           string    `json:"id"`
	Type         EventType `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	WorkflowID   string    `json:"workflow_id,omitempty"`
	WorkflowName string    `json:"workflow_name,omitempty"`
}

// NewBaseEvent stamps a base event for workflow.
func NewBaseEvent(id string, eventType EventType, at time.Time, workflow *models.Workflow) BaseEvent {
	base := BaseEvent{ID: id, Type: eventType, Timestamp: at}
	if workflow != nil {
		base.WorkflowID = workflow.ID
		base.WorkflowName = workflow.Name
	}

	return base
}

type WorkflowCreated struct {
	BaseEvent
}

func (e WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

type WorkflowUpdated struct {
	BaseEvent

	Fields []string `json:"fields"`
}

func (e WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (e WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type WorkflowStatusToggled struct {
	BaseEvent

	Status models.WorkflowStatus `json:"status"`
}

func (e WorkflowStatusToggled) GetType() EventType {
	return WorkflowStatusToggledEvent
}

type WorkflowExecuted struct {
	BaseEvent

	ExecutionID string `json:"execution_id"`
}

func (e WorkflowExecuted) GetType() EventType {
	return WorkflowExecutedEvent
}

// RefusalReason explains why an execution request was turned down.
type RefusalReason string

const (
	RefusalInactive          RefusalReason = "inactive"
	RefusalNoActiveWorkflows RefusalReason = "no_active_workflows"
)

type WorkflowExecutionRefused struct {
	BaseEvent

	Reason RefusalReason `json:"reason"`
}

func (e WorkflowExecutionRefused) GetType() EventType {
	return WorkflowExecutionRefusedEvent
}

type WorkflowsExecutedAll struct {
	BaseEvent

	WorkflowIDs []string `json:"workflow_ids"`
}

func (e WorkflowsExecutedAll) GetType() EventType {
	return WorkflowsExecutedAllEvent
}

type NodeAdded struct {
	BaseEvent

	NodeID   string          `json:"node_id"`
	NodeName string          `json:"node_name"`
	NodeType models.NodeType `json:"node_type"`
}

func (e NodeAdded) GetType() EventType {
	return NodeAddedEvent
}

type NodeRemoved struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeName string `json:"node_name"`
}

func (e NodeRemoved) GetType() EventType {
	return NodeRemovedEvent
}

type NodeMoved struct {
	BaseEvent

	NodeID   string          `json:"node_id"`
	Position models.Position `json:"position"`
}

func (e NodeMoved) GetType() EventType {
	return NodeMovedEvent
}

type ConnectionToggled struct {
	BaseEvent

	SourceID  string `json:"source_id"`
	TargetID  string `json:"target_id"`
	Connected bool   `json:"connected"`
}

func (e ConnectionToggled) GetType() EventType {
	return ConnectionToggledEvent
}

// New returns an empty event of the given type for decoding, or nil for unknown types.
func New(eventType EventType) any {
	switch eventType {
	case WorkflowCreatedEvent:
		return &WorkflowCreated{}
	case WorkflowUpdatedEvent:
		return &WorkflowUpdated{}
	case WorkflowDeletedEvent:
		return &WorkflowDeleted{}
	case WorkflowStatusToggledEvent:
		return &WorkflowStatusToggled{}
	case WorkflowExecutedEvent:
		return &WorkflowExecuted{}
	case WorkflowExecutionRefusedEvent:
		return &WorkflowExecutionRefused{}
	case WorkflowsExecutedAllEvent:
		return &WorkflowsExecutedAll{}
	case NodeAddedEvent:
		return &NodeAdded{}
	case NodeRemovedEvent:
		return &NodeRemoved{}
	case NodeMovedEvent:
		return &NodeMoved{}
	case ConnectionToggledEvent:
		return &ConnectionToggled{}
	default:
		return nil
	}
}
