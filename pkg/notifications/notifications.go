// Package notifications turns events into short user-facing messages and delivers them to a sink.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dukex/flowcanvas/pkg/eventbus"
	"github.com/dukex/flowcanvas/pkg/events"
	"github.com/dukex/flowcanvas/pkg/models"
)

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a toast-style message.
type Notification struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Variant     Variant `json:"variant"`
}

// FromEvent builds the notification for an event. It reports false for values that are not
// known events.
func FromEvent(event any) (Notification, bool) {
	switch e := event.(type) {
	case *events.WorkflowCreated:
		return info("Workflow created", fmt.Sprintf("Workflow %q was created.", e.WorkflowName)), true
	case *events.WorkflowUpdated:
		return info("Workflow updated", fmt.Sprintf("Workflow %q was updated.", e.WorkflowName)), true
	case *events.WorkflowDeleted:
		return info("Workflow deleted", fmt.Sprintf("Workflow %q was deleted.", e.WorkflowName)), true
	case *events.WorkflowStatusToggled:
		verb := "deactivated"
		if e.Status == models.WorkflowStatusActive {
			verb = "activated"
		}

		return info("Status changed", fmt.Sprintf("Workflow %q was %s.", e.WorkflowName, verb)), true
	case *events.WorkflowExecuted:
		return info("Workflow running", fmt.Sprintf("Workflow %q was executed.", e.WorkflowName)), true
	case *events.WorkflowExecutionRefused:
		if e.Reason == events.RefusalNoActiveWorkflows {
			return destructive("Cannot execute", "There are no active workflows."), true
		}

		return destructive("Cannot execute", "Inactive workflows cannot be executed."), true
	case *events.WorkflowsExecutedAll:
		return info("All workflows executed", fmt.Sprintf("%d workflows were executed.", len(e.WorkflowIDs))), true
	case *events.NodeAdded:
		return info("Node added", fmt.Sprintf("Node %q was added to %q.", e.NodeName, e.WorkflowName)), true
	case *events.NodeRemoved:
		return info("Node removed", fmt.Sprintf("Node %q was removed from %q.", e.NodeName, e.WorkflowName)), true
	case *events.NodeMoved:
		return info("Node moved", fmt.Sprintf("Node moved to (%g, %g).", e.Position.X, e.Position.Y)), true
	case *events.ConnectionToggled:
		if e.Connected {
			return info("Connected", fmt.Sprintf("%s now feeds %s.", e.SourceID, e.TargetID)), true
		}

		return info("Disconnected", fmt.Sprintf("%s no longer feeds %s.", e.SourceID, e.TargetID)), true
	default:
		return Notification{}, false
	}
}

func info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

func destructive(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Sink receives notifications.
type Sink interface {
	Notify(ctx context.Context, n Notification)
}

// Subscribe routes every event type on the bus to sink. The caller still starts the subscription.
func Subscribe(bus eventbus.EventSubscriber, sink Sink) error {
	for _, eventType := range events.EventTypes {
		err := bus.Handle(eventType, func(ctx context.Context, event any) error {
			if n, ok := FromEvent(event); ok {
				sink.Notify(ctx, n)
			}

			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to handle %s: %w", eventType, err)
		}
	}

	return nil
}

// LogSink writes notifications to a logger.
type LogSink struct {
	Logger *slog.Logger
}

func (s LogSink) Notify(ctx context.Context, n Notification) {
	level := slog.LevelInfo
	if n.Variant == VariantDestructive {
		level = slog.LevelWarn
	}

	s.Logger.Log(ctx, level, n.Title, "description", n.Description, "variant", n.Variant)
}

// RecorderSink keeps every notification it receives.
type RecorderSink struct {
	mu            sync.Mutex
	notifications []Notification
}

func (s *RecorderSink) Notify(_ context.Context, n Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifications = append(s.notifications, n)
}

// All returns a copy of the recorded notifications, oldest first.
func (s *RecorderSink) All() []Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Notification(nil), s.notifications...)
}
