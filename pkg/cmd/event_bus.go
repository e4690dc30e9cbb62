package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/flowcanvas/pkg/channels/gochannel"
	"github.com/dukex/flowcanvas/pkg/eventbus"
)

// DefaultEventBus is the only event bus provider: an in-process watermill GoChannel.
const DefaultEventBus = "gochannel"

// NewEventBus creates the event bus for provider.
func NewEventBus(provider string, logger *slog.Logger) (*eventbus.WatermillEventBus, error) {
	switch provider {
	case "", DefaultEventBus:
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("failed to create GoChannel pub/sub: %w", err)
		}

		return eventbus.NewWatermillEventBus(pub, sub), nil
	default:
		return nil, fmt.Errorf("unsupported event bus provider: %s", provider)
	}
}
