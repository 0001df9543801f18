package testutil

import (
	"context"
	"sync"

	"github.com/alanyang/agentpages/internal/domain/event"
	porteventbus "github.com/alanyang/agentpages/internal/port/eventbus"
)

// CaptureBus is a test double for port/eventbus.EventBus that records every
// published event. It is safe for concurrent use.
type CaptureBus struct {
	mu     sync.Mutex
	Events []event.Event
	// Err, when set, is returned from Publish after recording.
	Err error
}

func (c *CaptureBus) Publish(_ context.Context, e event.Event) error {
	c.mu.Lock()
	c.Events = append(c.Events, e)
	c.mu.Unlock()
	return c.Err
}

func (c *CaptureBus) Subscribe(_ context.Context, _ event.Channel, _ porteventbus.Handler) (porteventbus.Subscription, error) {
	return noopSubscription{}, nil
}

// Types returns the recorded event types in publish order.
func (c *CaptureBus) Types() []event.Type {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]event.Type, len(c.Events))
	for i, e := range c.Events {
		out[i] = e.Type
	}
	return out
}

type noopSubscription struct{}

func (noopSubscription) Unsubscribe() {}
