package service

import (
	"context"
	"log/slog"
)

// Subscriber receives domain events published by the core services.
type Subscriber func(ctx context.Context, event any)

// Notifier fans domain events out to in-process subscribers. Publish never
// blocks the publishing request: when the buffer is full the event is
// dropped with a warning. Delivery is advisory, not part of the ledger's
// consistency story.
type Notifier struct {
	events      chan any
	subscribers []Subscriber
	logger      *slog.Logger
}

func NewNotifier(buffer int, logger *slog.Logger) *Notifier {
	return &Notifier{
		events: make(chan any, buffer),
		logger: logger,
	}
}

// Subscribe registers a subscriber. Not safe to call after Start.
func (n *Notifier) Subscribe(s Subscriber) {
	n.subscribers = append(n.subscribers, s)
}

func (n *Notifier) Publish(_ context.Context, event any) {
	select {
	case n.events <- event:
	default:
		n.logger.Warn("event buffer full, dropping event", "event", event)
	}
}

func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info("event notifier started", "subscribers", len(n.subscribers))

	for {
		select {
		case <-ctx.Done():
			n.logger.Info("event notifier stopped")
			return
		case event := <-n.events:
			for _, s := range n.subscribers {
				s(ctx, event)
			}
		}
	}
}
