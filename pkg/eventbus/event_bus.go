// Package eventbus carries flowcanvas events from the services that produce them to whoever
// wants to hear about them.
package eventbus

import (
	"context"

	"github.com/dukex/flowcanvas/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
	GenerateID() string
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event any) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
}
